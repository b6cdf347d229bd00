// Package alarm classifies readings against alarm limits and keeps a bounded
// history of the resulting events.
package alarm

import (
	"greenhouse_controller/internal/models"
)

// Classify returns one event per dimension outside its band, in the order
// temperature, humidity, pressure. Values on a bound are in band.
func Classify(limits models.AlarmLimits, current models.Reading) []models.AlarmEvent {
	events := make([]models.AlarmEvent, 0, 3)

	add := func(code models.AlarmCode, value float64) {
		if code == models.AlarmNone {
			return
		}
		events = append(events, models.AlarmEvent{
			Code:       code,
			OccurredAt: current.Time,
			Value:      value,
		})
	}

	add(band(current.TemperatureC, limits.LowTempC, limits.HighTempC, models.AlarmLowTemp, models.AlarmHighTemp), current.TemperatureC)
	add(band(current.HumidityPct, limits.LowHumidPct, limits.HighHumidPct, models.AlarmLowHumid, models.AlarmHighHumid), current.HumidityPct)
	add(band(current.PressureMbar, limits.LowPressMbar, limits.HighPressMbar, models.AlarmLowPress, models.AlarmHighPress), current.PressureMbar)

	return events
}

func band(v, low, high float64, lowCode, highCode models.AlarmCode) models.AlarmCode {
	switch {
	case v > high:
		return highCode
	case v < low:
		return lowCode
	default:
		return models.AlarmNone
	}
}

// Classifier owns the limits and the history for the process lifetime.
type Classifier struct {
	limits  models.AlarmLimits
	history *History
}

// NewClassifier validates limits and allocates a history of the given capacity.
func NewClassifier(limits models.AlarmLimits, capacity int) (*Classifier, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	h, err := NewHistory(capacity)
	if err != nil {
		return nil, err
	}
	return &Classifier{limits: limits, history: h}, nil
}

// Evaluate classifies the reading and records every emitted event.
func (c *Classifier) Evaluate(current models.Reading) []models.AlarmEvent {
	events := Classify(c.limits, current)
	for _, ev := range events {
		c.history.Record(ev)
	}
	return events
}

// Limits returns the limits in effect.
func (c *Classifier) Limits() models.AlarmLimits { return c.limits }

// History exposes the event ring for read access.
func (c *Classifier) History() *History { return c.history }
