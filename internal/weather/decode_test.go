package weather

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func parse(t *testing.T, body string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("invalid test JSON %q: %v", body, err)
	}
	return v
}

func TestDecode(t *testing.T) {
	body := `{
		"location": {"name": "London", "country": "United Kingdom"},
		"current": {
			"temp_c": 20.0,
			"feelslike_c": 14.5,
			"humidity": 72,
			"condition": {"text": "Partly cloudy", "code": 1003}
		}
	}`

	got, err := Decode(parse(t, body))
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	want := Reading{TemperatureC: 20, FeelsLikeC: 14.5, Condition: Condition{Text: "Partly cloudy"}}
	if got != want {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestDecode_Negative(t *testing.T) {
	got, err := Decode(parse(t, `{"current":{"temp_c":-5.2,"feelslike_c":-9.8,"condition":{"text":"Snow"}}}`))
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if got.TemperatureC != -5.2 || got.FeelsLikeC != -9.8 {
		t.Errorf("Decode() = %+v, want -5.2/-9.8", got)
	}
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "missing current", body: `{"error":{"code":1006,"message":"No matching location found."}}`, wantMsg: "null"},
		{name: "null current", body: `{"current":null}`, wantMsg: "null"},
		{name: "top-level array", body: `[1,2,3]`, wantMsg: "null"},
		{name: "top-level string", body: `"current"`, wantMsg: "null"},
		{name: "current is a number", body: `{"current":5}`, wantMsg: "cannot unmarshal"},
		{name: "missing temp_c", body: `{"current":{"feelslike_c":1,"condition":{"text":"x"}}}`, wantMsg: "missing field `temp_c`"},
		{name: "null temp_c", body: `{"current":{"temp_c":null,"feelslike_c":1,"condition":{"text":"x"}}}`, wantMsg: "missing field `temp_c`"},
		{name: "missing feelslike_c", body: `{"current":{"temp_c":1,"condition":{"text":"x"}}}`, wantMsg: "missing field `feelslike_c`"},
		{name: "missing condition", body: `{"current":{"temp_c":1,"feelslike_c":1}}`, wantMsg: "missing field `condition`"},
		{name: "missing condition text", body: `{"current":{"temp_c":1,"feelslike_c":1,"condition":{}}}`, wantMsg: "missing field `condition.text`"},
		{name: "temp_c is a string", body: `{"current":{"temp_c":"20","feelslike_c":1,"condition":{"text":"x"}}}`, wantMsg: "cannot unmarshal"},
		{name: "condition text is a number", body: `{"current":{"temp_c":1,"feelslike_c":1,"condition":{"text":7}}}`, wantMsg: "cannot unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(parse(t, tt.body))
			if err == nil {
				t.Fatalf("Decode() = %+v, want error", got)
			}
			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("error = %T %v, want *DecodeError", err, err)
			}
			var opErr OperationError
			if !errors.As(err, &opErr) {
				t.Fatalf("error = %T, want OperationError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
			if got != (Reading{}) {
				t.Errorf("Decode() returned partial reading %+v", got)
			}
		})
	}
}
