package types

import "strconv"

// Weather summary buckets derived from the peak precipitation probability over
// the forecast window.
const (
	WeatherClear        = "clear"
	WeatherPartlyCloudy = "partly_cloudy"
	WeatherRainy        = "rainy"
)

// WeatherSnapshot condenses the current hour plus a 12-hour forecast window.
// Immutable once produced.
type WeatherSnapshot struct {
	Summary           string  `json:"summary"`
	TempF             float64 `json:"temp_f"`
	AvgTempF          float64 `json:"avg_temp_f"`
	PrecipProbability float64 `json:"precip"`
	AvgPrecipProb     float64 `json:"avg_precip"`
	MaxPrecipProb     float64 `json:"max_precip"`
	HasPoorWeather    bool    `json:"has_poor_weather"`
}

// Fingerprint is the compact weather discriminator used in scoring cache keys.
func (w WeatherSnapshot) Fingerprint() string {
	if w.Summary == "" {
		return "none"
	}
	return w.Summary + "|" + strconv.Itoa(int(w.MaxPrecipProb))
}

// DefaultWeather is the substitute snapshot used when the weather provider is
// unreachable. Planning must not block on weather.
func DefaultWeather() *WeatherSnapshot {
	return &WeatherSnapshot{
		Summary:  WeatherClear,
		TempF:    65,
		AvgTempF: 65,
	}
}
