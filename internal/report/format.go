// Package report turns a weather reading into the sentence printed to the user.
package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/gospodinfran/weather-cli/internal/weather"
)

// FeelsLikeThreshold is the temperature gap in °C, inclusive, from which the
// feels-like warning is appended.
const FeelsLikeThreshold = 5.0

// Format builds the summary for location. The location is used verbatim.
func Format(location string, r weather.Reading) string {
	var b strings.Builder
	b.WriteString("The current temperature in ")
	b.WriteString(location)
	b.WriteString(" is ")
	b.WriteString(formatFloat(r.TemperatureC))
	b.WriteString("°C and the weather is ")
	b.WriteString(strings.ToLower(r.Condition.Text))
	b.WriteString(".")

	if math.Abs(r.TemperatureC-r.FeelsLikeC) >= FeelsLikeThreshold {
		b.WriteString(" But be warned that it feels more like ")
		b.WriteString(formatFloat(r.FeelsLikeC))
		b.WriteString(".")
	}
	return b.String()
}

// formatFloat prints the shortest decimal that round-trips, never in exponent form.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
