package service

import (
	"context"
	"fmt"
	"time"

	"greenhouse_controller/internal/control"
	"greenhouse_controller/internal/logger"
	"greenhouse_controller/internal/models"
	"greenhouse_controller/internal/repository"
	"greenhouse_controller/internal/sensor"
)

// ControllerService runs the sampling cycle.
type ControllerService struct {
	source  sensor.Source
	targets Targets
	alarms  Alarms
	act     Actuator
	dataLog repository.ReadingLog
	log     *logger.Logger
}

func NewControllerService(src sensor.Source, targets Targets, alarms Alarms, act Actuator, dataLog repository.ReadingLog, log *logger.Logger) *ControllerService {
	if log == nil {
		log = logger.Nop()
	}
	return &ControllerService{
		source:  src,
		targets: targets,
		alarms:  alarms,
		act:     act,
		dataLog: dataLog,
		log:     log,
	}
}

// Cycle performs one acquire, decide, actuate, classify and log pass.
// Only an acquisition failure aborts the cycle.
func (s *ControllerService) Cycle(ctx context.Context) (CycleResult, error) {
	var res CycleResult
	res.Setpoint = s.targets.LoadOrDefault(ctx)

	r, err := s.source.Acquire(ctx)
	if err != nil {
		return res, fmt.Errorf("acquire: %w", err)
	}
	res.Reading = r
	res.Control = control.Decide(res.Setpoint, r)

	if s.act != nil {
		if err := s.act.Apply(ctx, res.Control); err != nil {
			res.ActuatorErr = err
			s.log.Errorw("actuator_apply_failed", "err", err)
		}
	}

	res.Alarms = s.alarms.Evaluate(ctx, r)
	for _, ev := range res.Alarms {
		s.log.Warnw("alarm", "code", ev.Code.String(), "value", ev.Value, "at", ev.OccurredAt)
	}

	if err := s.dataLog.Append(ctx, r); err != nil {
		res.LogErr = err
		s.log.Errorw("datalog_append_failed", "err", err)
	}

	s.report(res)
	return res, nil
}

func (s *ControllerService) report(res CycleResult) {
	s.log.Infow("cycle",
		"temperature_c", res.Reading.TemperatureC,
		"humidity_pct", res.Reading.HumidityPct,
		"pressure_mbar", res.Reading.PressureMbar,
		"target_temperature_c", res.Setpoint.TemperatureC,
		"target_humidity_pct", res.Setpoint.HumidityPct,
		"heater", onOff(res.Control.HeaterOn),
		"humidifier", onOff(res.Control.HumidifierOn),
	)
}

// Run executes cycles separated by delay until ctx is canceled. The delay is
// measured from the end of one cycle to the start of the next.
func (s *ControllerService) Run(ctx context.Context, delay time.Duration) {
	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Cycle(ctx); err != nil {
				s.log.Errorw("cycle_failed", "err", err)
			}
			t.Reset(delay)
		}
	}
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// Actuator drives the heater and humidifier outputs.
type Actuator interface {
	Apply(ctx context.Context, c models.Control) error
}

// LogActuator reports output changes through the logger instead of driving
// relays.
type LogActuator struct {
	log  *logger.Logger
	last *models.Control
}

func NewLogActuator(log *logger.Logger) *LogActuator {
	if log == nil {
		log = logger.Nop()
	}
	return &LogActuator{log: log}
}

// Apply logs c when it differs from the previously applied state.
func (a *LogActuator) Apply(_ context.Context, c models.Control) error {
	if a.last != nil && *a.last == c {
		return nil
	}
	a.log.Infow("outputs_changed", "heater", onOff(c.HeaterOn), "humidifier", onOff(c.HumidifierOn))
	a.last = &c
	return nil
}
