package service

import (
	"context"
	"errors"
	"sync"

	"greenhouse_controller/internal/logger"
	"greenhouse_controller/internal/models"
	"greenhouse_controller/internal/repository"
)

var errNoStoredSetpoint = errors.New("no valid setpoint stored")

type TargetService struct {
	repo     repository.SetpointRepo
	defaults models.Setpoint
	log      *logger.Logger

	mu     sync.Mutex
	cached *models.Setpoint
}

func NewTargetService(repo repository.SetpointRepo, defaults models.Setpoint, log *logger.Logger) *TargetService {
	if log == nil {
		log = logger.Nop()
	}
	return &TargetService{repo: repo, defaults: defaults, log: log}
}

// LoadOrDefault returns the setpoint for this run. The first call loads the
// store; a missing, corrupt or unreadable record is replaced by the defaults,
// which are saved immediately. Later calls return the cached value.
func (s *TargetService) LoadOrDefault(ctx context.Context) models.Setpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return *s.cached
	}

	sp, err := s.repo.Load(ctx)
	if err != nil {
		s.log.Warnw("setpoint_load_failed", "err", err)
		sp = models.Setpoint{}
	}

	if sp.IsZero() {
		sp = s.defaults
		if err := s.repo.Save(ctx, sp); err != nil {
			s.log.Errorw("setpoint_default_save_failed", "err", err)
		} else {
			s.log.Infow("setpoint_defaults_saved", "temperature_c", sp.TemperatureC, "humidity_pct", sp.HumidityPct)
		}
	}

	s.cached = &sp
	return sp
}

// Reload re-reads the store and replaces the cached setpoint. It never writes
// defaults; an empty or unreadable store leaves the current value in place.
func (s *TargetService) Reload(ctx context.Context) (models.Setpoint, error) {
	sp, err := s.repo.Load(ctx)
	if err == nil && sp.IsZero() {
		err = errNoStoredSetpoint
	}
	if err != nil {
		return s.LoadOrDefault(ctx), err
	}

	s.mu.Lock()
	s.cached = &sp
	s.mu.Unlock()

	s.log.Infow("setpoint_reloaded", "temperature_c", sp.TemperatureC, "humidity_pct", sp.HumidityPct)
	return sp, nil
}
