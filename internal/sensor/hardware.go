package sensor

import (
	"context"
	"fmt"
	"time"

	"greenhouse_controller/internal/models"
)

// Driver exposes one blocking read per physical quantity.
type Driver interface {
	Temperature() (float64, error) // °C
	Humidity() (float64, error)    // %
	Pressure() (float64, error)    // mbar
}

// Hardware reads through a Driver without retrying.
type Hardware struct {
	driver Driver
	clock  Clock
}

func NewHardware(driver Driver) *Hardware {
	return &Hardware{driver: driver, clock: time.Now}
}

// Acquire stamps the reading once, then reads each quantity. The first
// driver error aborts the reading so no partial sample is returned.
func (h *Hardware) Acquire(ctx context.Context) (models.Reading, error) {
	now := h.clock()

	if err := ctx.Err(); err != nil {
		return models.Reading{}, err
	}

	temp, err := h.driver.Temperature()
	if err != nil {
		return models.Reading{}, fmt.Errorf("%w: temperature: %v", ErrSensorUnavailable, err)
	}
	hum, err := h.driver.Humidity()
	if err != nil {
		return models.Reading{}, fmt.Errorf("%w: humidity: %v", ErrSensorUnavailable, err)
	}
	press, err := h.driver.Pressure()
	if err != nil {
		return models.Reading{}, fmt.Errorf("%w: pressure: %v", ErrSensorUnavailable, err)
	}

	return models.Reading{
		Time:         now,
		TemperatureC: temp,
		HumidityPct:  hum,
		PressureMbar: press,
	}, nil
}
