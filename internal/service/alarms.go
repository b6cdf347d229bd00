package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"greenhouse_controller/internal/alarm"
	"greenhouse_controller/internal/logger"
	"greenhouse_controller/internal/models"
	"greenhouse_controller/internal/repository"

	"github.com/google/uuid"
)

type AlarmService struct {
	limitsRepo repository.AlarmLimitsRepo
	eventRepo  repository.AlarmEventRepo
	defaults   models.AlarmLimits
	capacity   int
	log        *logger.Logger

	mu         sync.Mutex
	classifier *alarm.Classifier
}

// NewAlarmService rejects invalid default limits so the fallback path in
// ensureClassifier cannot fail.
func NewAlarmService(limitsRepo repository.AlarmLimitsRepo, eventRepo repository.AlarmEventRepo, defaults models.AlarmLimits, capacity int, log *logger.Logger) (*AlarmService, error) {
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	if capacity <= 0 {
		capacity = alarm.DefaultHistoryCapacity
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AlarmService{
		limitsRepo: limitsRepo,
		eventRepo:  eventRepo,
		defaults:   defaults,
		capacity:   capacity,
		log:        log,
	}, nil
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// Limits returns the limits in effect, loading them on first use.
func (s *AlarmService) Limits(ctx context.Context) models.AlarmLimits {
	return s.ensureClassifier(ctx).Limits()
}

// ensureClassifier loads stored limits once. Missing or invalid limits are
// replaced by the defaults and persisted, mirroring the setpoint store.
func (s *AlarmService) ensureClassifier(ctx context.Context) *alarm.Classifier {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.classifier != nil {
		return s.classifier
	}

	limits, err := s.limitsRepo.Load(ctx)
	if err != nil {
		s.log.Warnw("alarm_limits_load_failed", "err", err)
		limits = models.AlarmLimits{}
	}

	c, cerr := alarm.NewClassifier(limits, s.capacity)
	if cerr != nil {
		if !limits.IsZero() {
			s.log.Warnw("alarm_limits_invalid", "err", cerr, "limits", limits)
		}
		limits = s.defaults
		if err := s.limitsRepo.Save(ctx, limits); err != nil {
			s.log.Errorw("alarm_limits_default_save_failed", "err", err)
		}
		c, _ = alarm.NewClassifier(limits, s.capacity)
	}

	s.classifier = c
	return c
}

// Evaluate classifies r, records the events in the in-memory history and
// appends them to the persistent store. Store failures are logged only.
func (s *AlarmService) Evaluate(ctx context.Context, r models.Reading) []models.AlarmEvent {
	events := s.ensureClassifier(ctx).Evaluate(r)
	for i := range events {
		events[i].ID = uuid.NewString()
		if err := s.eventRepo.Append(ctx, events[i]); err != nil {
			s.log.Errorw("alarm_event_append_failed", "err", err, "code", events[i].Code.String())
		}
	}
	return events
}

// Recent returns the in-memory history, oldest first.
func (s *AlarmService) Recent() []models.AlarmEvent {
	s.mu.Lock()
	c := s.classifier
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.History().Events()
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates the
// time range and code.
func normalizeAndValidateFilter(f AlarmFilter) (time.Time, time.Time, models.AlarmCode, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, models.AlarmNone, errInvalidTimeRange
	}

	code := models.AlarmNone
	if s := strings.TrimSpace(f.Code); s != "" {
		c, err := models.ParseAlarmCode(s)
		if err != nil {
			return time.Time{}, time.Time{}, models.AlarmNone, err
		}
		code = c
	}
	return from, to, code, nil
}

// List reads persisted alarm events.
func (s *AlarmService) List(ctx context.Context, f AlarmFilter) ([]models.AlarmEvent, error) {
	from, to, code, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, code)
}
