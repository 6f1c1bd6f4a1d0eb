package weather

import "time"

// Reading is the present-moment weather taken from the API's "current" object.
type Reading struct {
	TemperatureC float64
	FeelsLikeC   float64
	Condition    Condition
}

// Condition is the human-readable phrase describing the weather, e.g. "Partly cloudy".
type Condition struct {
	Text string
}

// Report is a successfully produced summary, handed to the report sinks.
type Report struct {
	Location  string
	Reading   Reading
	Message   string
	FetchedAt time.Time
}

// wireReading mirrors the "current" object. Pointers allow missing and null
// fields to be told apart from zero values.
type wireReading struct {
	TempC      *float64       `json:"temp_c"`
	FeelsLikeC *float64       `json:"feelslike_c"`
	Condition  *wireCondition `json:"condition"`
}

type wireCondition struct {
	Text *string `json:"text"`
}
