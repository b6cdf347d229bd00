package service

import (
	"context"
	"time"

	"greenhouse_controller/internal/logger"
	"greenhouse_controller/internal/models"
	"greenhouse_controller/internal/repository"
	"greenhouse_controller/internal/sensor"
)

// Targets owns the operator setpoint for the process lifetime.
type Targets interface {
	LoadOrDefault(ctx context.Context) models.Setpoint
	Reload(ctx context.Context) (models.Setpoint, error)
}

// Alarms classifies readings and exposes in-memory and persisted history.
type Alarms interface {
	Evaluate(ctx context.Context, r models.Reading) []models.AlarmEvent
	Recent() []models.AlarmEvent
	List(ctx context.Context, f AlarmFilter) ([]models.AlarmEvent, error)
}

// Controller runs sampling cycles. Stop Run via context cancellation.
type Controller interface {
	Cycle(ctx context.Context) (CycleResult, error)
	Run(ctx context.Context, delay time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Targets
	Alarms
	Controller
}

// Options carries the compiled or configured fallbacks.
type Options struct {
	DefaultSetpoint models.Setpoint
	DefaultLimits   models.AlarmLimits
	HistorySize     int
}

// NewService wires the repository layer, the reading source and the actuator
// into concrete services.
func NewService(repos *repository.Repository, src sensor.Source, act Actuator, opts Options, log *logger.Logger) (*Service, error) {
	targets := NewTargetService(repos.Setpoints, opts.DefaultSetpoint, log)
	alarms, err := NewAlarmService(repos.Limits, repos.Alarms, opts.DefaultLimits, opts.HistorySize, log)
	if err != nil {
		return nil, err
	}
	return &Service{
		Targets:    targets,
		Alarms:     alarms,
		Controller: NewControllerService(src, targets, alarms, act, repos.DataLog, log),
	}, nil
}
