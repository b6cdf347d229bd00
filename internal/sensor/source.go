// Package sensor produces readings from either real hardware or a bounded
// pseudo-random simulator. The mode is fixed when the source is built.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenhouse_controller/internal/models"
)

// Mode names accepted in configuration.
const (
	ModeSimulated = "simulated"
	ModeHardware  = "hardware"
)

var (
	// ErrSensorUnavailable wraps any driver failure in hardware mode.
	ErrSensorUnavailable = errors.New("sensor unavailable")
	// ErrInvalidBounds is returned for a simulated range with upper <= lower.
	ErrInvalidBounds = errors.New("invalid simulation bounds")
	errUnknownMode   = errors.New("unknown sensor mode")
)

// Source yields one reading per call.
type Source interface {
	Acquire(ctx context.Context) (models.Reading, error)
}

// Clock returns the capture instant of a reading.
type Clock func() time.Time

// Range is a half-open interval [Lower, Upper).
type Range struct {
	Lower float64 `mapstructure:"lower"`
	Upper float64 `mapstructure:"upper"`
}

func (r Range) validate(name string) error {
	if r.Upper <= r.Lower {
		return fmt.Errorf("%w: %s upper %.1f <= lower %.1f", ErrInvalidBounds, name, r.Upper, r.Lower)
	}
	return nil
}

// Bounds are the simulated ranges per quantity.
type Bounds struct {
	Temperature Range `mapstructure:"temperature"`
	Humidity    Range `mapstructure:"humidity"`
	Pressure    Range `mapstructure:"pressure"`
}

// Validate rejects any empty or inverted range.
func (b Bounds) Validate() error {
	if err := b.Temperature.validate("temperature"); err != nil {
		return err
	}
	if err := b.Humidity.validate("humidity"); err != nil {
		return err
	}
	return b.Pressure.validate("pressure")
}

// Options select and parameterize a source.
type Options struct {
	Mode   string
	Bounds Bounds
	Seed   int64 // 0 means seed from wall-clock
	Driver Driver
	Clock  Clock
}

// New builds the source for the configured mode.
func New(opts Options) (Source, error) {
	switch opts.Mode {
	case ModeSimulated, "":
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		sim, err := NewSimulator(opts.Bounds, seed)
		if err != nil {
			return nil, err
		}
		if opts.Clock != nil {
			sim.clock = opts.Clock
		}
		return sim, nil
	case ModeHardware:
		if opts.Driver == nil {
			return nil, fmt.Errorf("%w: hardware mode requires a driver", ErrSensorUnavailable)
		}
		hw := NewHardware(opts.Driver)
		if opts.Clock != nil {
			hw.clock = opts.Clock
		}
		return hw, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownMode, opts.Mode)
	}
}
