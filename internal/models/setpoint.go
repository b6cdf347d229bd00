package models

// Setpoint holds the operator targets. A zero temperature means "not set yet".
type Setpoint struct {
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
}

// IsZero reports whether the setpoint carries the uninitialized sentinel.
func (s Setpoint) IsZero() bool {
	return s.TemperatureC == 0
}
