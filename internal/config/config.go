// Package config loads controller settings from configs/config.yml with
// GH_-prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"greenhouse_controller/internal/models"
	"greenhouse_controller/internal/repository"
	"greenhouse_controller/internal/sensor"

	"github.com/spf13/viper"
)

const envPrefix = "GH"

type Config struct {
	Log        LogConfig      `mapstructure:"log"`
	Sensor     SensorConfig   `mapstructure:"sensor"`
	Simulation sensor.Bounds  `mapstructure:"simulation"`
	Setpoints  SetpointConfig `mapstructure:"setpoints"`
	Alarms     AlarmConfig    `mapstructure:"alarms"`
	DataLog    DataLogConfig  `mapstructure:"datalog"`
	DB         DBConfig       `mapstructure:"db"`
	Cycle      CycleConfig    `mapstructure:"cycle"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type SensorConfig struct {
	Mode string           `mapstructure:"mode"` // simulated | hardware
	Seed int64            `mapstructure:"seed"` // 0: wall-clock
	IIO  sensor.IIOConfig `mapstructure:"iio"`
}

type SetpointConfig struct {
	Path               string  `mapstructure:"path"`
	DefaultTemperature float64 `mapstructure:"default_temperature"`
	DefaultHumidity    float64 `mapstructure:"default_humidity"`
}

// Defaults returns the compiled-in target used on first run.
func (s SetpointConfig) Defaults() models.Setpoint {
	return models.Setpoint{TemperatureC: s.DefaultTemperature, HumidityPct: s.DefaultHumidity}
}

type AlarmConfig struct {
	Limits      models.AlarmLimits `mapstructure:",squash"`
	HistorySize int                `mapstructure:"history_size"`
}

type DataLogConfig struct {
	Path     string `mapstructure:"path"`
	Format   string `mapstructure:"format"`   // ctime | iso8601
	Location string `mapstructure:"location"` // IANA name, "Local" or "UTC"
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type CycleConfig struct {
	DelayMs int `mapstructure:"delay_ms"`
}

// Delay is the pause between two sampling cycles.
func (c CycleConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("sensor.mode", sensor.ModeSimulated)
	v.SetDefault("sensor.seed", 0)
	v.SetDefault("sensor.iio.humidity_device", "/sys/bus/iio/devices/iio:device0")
	v.SetDefault("sensor.iio.pressure_device", "/sys/bus/iio/devices/iio:device1")

	v.SetDefault("simulation.temperature.lower", -50.0)
	v.SetDefault("simulation.temperature.upper", 50.0)
	v.SetDefault("simulation.humidity.lower", 0.0)
	v.SetDefault("simulation.humidity.upper", 100.0)
	v.SetDefault("simulation.pressure.lower", 975.0)
	v.SetDefault("simulation.pressure.upper", 1016.0)

	v.SetDefault("setpoints.path", "setpoints.dat")
	v.SetDefault("setpoints.default_temperature", 25.0)
	v.SetDefault("setpoints.default_humidity", 55.0)

	v.SetDefault("alarms.high_temp", 30.0)
	v.SetDefault("alarms.low_temp", 10.0)
	v.SetDefault("alarms.high_humid", 70.0)
	v.SetDefault("alarms.low_humid", 25.0)
	v.SetDefault("alarms.high_press", 1016.0)
	v.SetDefault("alarms.low_press", 985.0)
	v.SetDefault("alarms.history_size", 7)

	v.SetDefault("datalog.path", "ghdata.txt")
	v.SetDefault("datalog.format", repository.FormatCtime)
	v.SetDefault("datalog.location", "Local")

	v.SetDefault("db.path", "greenhouse.db")

	v.SetDefault("cycle.delay_ms", 2000)
}

// Load reads config.yml from the given search paths (defaults to "configs").
// A missing file is not an error: defaults and environment apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the controller cannot start with.
func (c *Config) Validate() error {
	switch c.Sensor.Mode {
	case sensor.ModeSimulated:
		if err := c.Simulation.Validate(); err != nil {
			return err
		}
	case sensor.ModeHardware:
	default:
		return fmt.Errorf("sensor.mode must be %q or %q, got %q", sensor.ModeSimulated, sensor.ModeHardware, c.Sensor.Mode)
	}
	if c.Setpoints.Defaults().IsZero() {
		return errors.New("setpoints.default_temperature must be non-zero")
	}
	if err := c.Alarms.Limits.Validate(); err != nil {
		return err
	}
	if c.Alarms.HistorySize <= 0 {
		return fmt.Errorf("alarms.history_size must be > 0, got %d", c.Alarms.HistorySize)
	}
	if c.Cycle.DelayMs <= 0 {
		return fmt.Errorf("cycle.delay_ms must be > 0, got %d", c.Cycle.DelayMs)
	}
	if _, err := c.DataLog.TZ(); err != nil {
		return err
	}
	return nil
}

// TZ resolves the data log location.
func (d DataLogConfig) TZ() (*time.Location, error) {
	switch d.Location {
	case "", "Local":
		return time.Local, nil
	default:
		loc, err := time.LoadLocation(d.Location)
		if err != nil {
			return nil, fmt.Errorf("datalog.location: %w", err)
		}
		return loc, nil
	}
}
