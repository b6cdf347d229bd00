package service

import (
	"time"

	"greenhouse_controller/internal/models"
)

// AlarmFilter supports history filtering by time range and code.
type AlarmFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Code string    // "", "HIGH_TEMP", "LOW_TEMP", ...
}

// CycleResult is everything one sampling cycle produced. Display and
// actuation hardware consume it; LogErr and ActuatorErr record degraded
// steps that did not abort the cycle.
type CycleResult struct {
	Reading     models.Reading
	Setpoint    models.Setpoint
	Control     models.Control
	Alarms      []models.AlarmEvent
	LogErr      error
	ActuatorErr error
}
