package sensor

import (
	"context"
	"math/rand"
	"time"

	"greenhouse_controller/internal/models"
)

// Simulator draws each field independently and uniformly from its range.
type Simulator struct {
	bounds Bounds
	rng    *rand.Rand
	clock  Clock
}

// NewSimulator seeds its own generator once.
func NewSimulator(bounds Bounds, seed int64) (*Simulator, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		bounds: bounds,
		rng:    rand.New(rand.NewSource(seed)),
		clock:  time.Now,
	}, nil
}

// Acquire never fails; the error is part of the Source contract.
func (s *Simulator) Acquire(ctx context.Context) (models.Reading, error) {
	now := s.clock()
	return models.Reading{
		Time:         now,
		TemperatureC: s.draw(s.bounds.Temperature),
		HumidityPct:  s.draw(s.bounds.Humidity),
		PressureMbar: s.draw(s.bounds.Pressure),
	}, nil
}

// draw returns a value in [Lower, Upper).
func (s *Simulator) draw(r Range) float64 {
	v := r.Lower + s.rng.Float64()*(r.Upper-r.Lower)
	// Float rounding can land exactly on Upper for wide ranges.
	if v >= r.Upper {
		return r.Lower
	}
	return v
}
