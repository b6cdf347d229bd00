package models

import "time"

// Reading is one timestamped sample of the enclosure.
type Reading struct {
	Time         time.Time `json:"time"`
	TemperatureC float64   `json:"temperature_c"` // °C
	HumidityPct  float64   `json:"humidity_pct"`  // %
	PressureMbar float64   `json:"pressure_mbar"` // mbar
}

// Control is the actuator state derived for the current cycle.
type Control struct {
	HeaterOn     bool `json:"heater_on"`
	HumidifierOn bool `json:"humidifier_on"`
}
