package weather

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Decode extracts the "current" object from a generic JSON value and converts it
// into a Reading. A body that is not an object, or that has no "current" key,
// is treated as if "current" were null.
func Decode(v any) (Reading, error) {
	var current any
	if obj, ok := v.(map[string]any); ok {
		current = obj["current"]
	}
	if current == nil {
		return Reading{}, &DecodeError{Err: errors.New(`invalid type: null, expected an object for "current"`)}
	}

	// Round-trip the sub-value so the typed decoder reports mismatched JSON types.
	raw, err := json.Marshal(current)
	if err != nil {
		return Reading{}, &DecodeError{Err: err}
	}

	var w wireReading
	if err := json.Unmarshal(raw, &w); err != nil {
		return Reading{}, &DecodeError{Err: err}
	}

	switch {
	case w.TempC == nil:
		return Reading{}, missingField("temp_c")
	case w.FeelsLikeC == nil:
		return Reading{}, missingField("feelslike_c")
	case w.Condition == nil:
		return Reading{}, missingField("condition")
	case w.Condition.Text == nil:
		return Reading{}, missingField("condition.text")
	}

	return Reading{
		TemperatureC: *w.TempC,
		FeelsLikeC:   *w.FeelsLikeC,
		Condition:    Condition{Text: *w.Condition.Text},
	}, nil
}

func missingField(name string) error {
	return &DecodeError{Err: fmt.Errorf("missing field `%s`", name)}
}
