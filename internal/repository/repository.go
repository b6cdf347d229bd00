package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"greenhouse_controller/internal/models"
)

// ErrPersistenceUnavailable is returned when a backing file cannot be opened
// or written.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

type SetpointRepo interface {
	Load(ctx context.Context) (models.Setpoint, error)
	Save(ctx context.Context, s models.Setpoint) error
}

type AlarmLimitsRepo interface {
	Load(ctx context.Context) (models.AlarmLimits, error)
	Save(ctx context.Context, l models.AlarmLimits) error
}

type AlarmEventRepo interface {
	Append(ctx context.Context, e models.AlarmEvent) error
	List(ctx context.Context, from, to time.Time, code models.AlarmCode) ([]models.AlarmEvent, error)
}

// ReadingLog is the append-only time-series log of readings.
type ReadingLog interface {
	Append(ctx context.Context, r models.Reading) error
}

type Repository struct {
	Setpoints SetpointRepo
	Limits    AlarmLimitsRepo
	Alarms    AlarmEventRepo
	DataLog   ReadingLog
}

// Options locates the file-backed stores.
type Options struct {
	SetpointPath  string
	DataLogPath   string
	DataLogFormat string
	DataLogTZ     *time.Location
}

func NewRepository(db *sql.DB, opts Options) (*Repository, error) {
	dataLog, err := NewReadingFileLog(opts.DataLogPath, opts.DataLogFormat, opts.DataLogTZ)
	if err != nil {
		return nil, err
	}
	return &Repository{
		Setpoints: NewSetpointFile(opts.SetpointPath),
		Limits:    NewAlarmLimitsSQLite(db),
		Alarms:    NewAlarmEventSQLite(db),
		DataLog:   dataLog,
	}, nil
}
