package sensor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IIO unit conversions: the kernel ABI reports temperature in milli °C,
// relative humidity in milli percent and pressure in kPa.
const (
	milliToUnit = 1e-3
	kPaToMbar   = 10.0
)

// IIOConfig points at the sysfs device directories of the Sense HAT sensors,
// e.g. /sys/bus/iio/devices/iio:device0.
type IIOConfig struct {
	HumidityDevice string `mapstructure:"humidity_device"` // HTS221: temperature + humidity
	PressureDevice string `mapstructure:"pressure_device"` // LPS25H
}

// IIODriver reads Linux Industrial I/O channels from sysfs.
type IIODriver struct {
	cfg IIOConfig
}

func NewIIODriver(cfg IIOConfig) (*IIODriver, error) {
	if cfg.HumidityDevice == "" || cfg.PressureDevice == "" {
		return nil, errors.New("iio: humidity_device and pressure_device are required")
	}
	return &IIODriver{cfg: cfg}, nil
}

func (d *IIODriver) Temperature() (float64, error) {
	v, err := readChannel(d.cfg.HumidityDevice, "in_temp")
	return v * milliToUnit, err
}

func (d *IIODriver) Humidity() (float64, error) {
	v, err := readChannel(d.cfg.HumidityDevice, "in_humidityrelative")
	return v * milliToUnit, err
}

func (d *IIODriver) Pressure() (float64, error) {
	v, err := readChannel(d.cfg.PressureDevice, "in_pressure")
	return v * kPaToMbar, err
}

// readChannel prefers the processed <chan>_input attribute and otherwise
// computes (raw + offset) * scale. Missing offset is 0, missing scale is 1.
func readChannel(dir, channel string) (float64, error) {
	if v, err := readFloat(filepath.Join(dir, channel+"_input")); err == nil {
		return v, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}

	raw, err := readFloat(filepath.Join(dir, channel+"_raw"))
	if err != nil {
		return 0, err
	}
	offset, err := readOptional(filepath.Join(dir, channel+"_offset"), 0)
	if err != nil {
		return 0, err
	}
	scale, err := readOptional(filepath.Join(dir, channel+"_scale"), 1)
	if err != nil {
		return 0, err
	}
	return (raw + offset) * scale, nil
}

func readOptional(path string, def float64) (float64, error) {
	v, err := readFloat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return def, nil
	}
	return v, err
}

func readFloat(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
