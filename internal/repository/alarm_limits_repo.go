package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"greenhouse_controller/internal/models"
)

type AlarmLimitsSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewAlarmLimitsSQLite(db *sql.DB) *AlarmLimitsSQLite {
	return &AlarmLimitsSQLite{db: db, now: time.Now}
}

const (
	alarmLimitsRowID = 1

	upsertAlarmLimitsSQL = `
		INSERT INTO alarm_limits (id, high_temp, low_temp, high_humid, low_humid, high_press, low_press, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			high_temp=excluded.high_temp,
			low_temp=excluded.low_temp,
			high_humid=excluded.high_humid,
			low_humid=excluded.low_humid,
			high_press=excluded.high_press,
			low_press=excluded.low_press,
			updated_at=excluded.updated_at
	`

	selectAlarmLimitsSQL = `
		SELECT high_temp, low_temp, high_humid, low_humid, high_press, low_press
		FROM alarm_limits WHERE id=?
	`
)

// Save upserts the single alarm_limits row (id always 1).
func (r *AlarmLimitsSQLite) Save(ctx context.Context, l models.AlarmLimits) error {
	_, err := r.db.ExecContext(ctx, upsertAlarmLimitsSQL,
		alarmLimitsRowID,
		l.HighTempC,
		l.LowTempC,
		l.HighHumidPct,
		l.LowHumidPct,
		l.HighPressMbar,
		l.LowPressMbar,
		r.now().UTC(),
	)
	return err
}

// Load fetches the stored limits; zero limits mean nothing was stored yet.
func (r *AlarmLimitsSQLite) Load(ctx context.Context) (models.AlarmLimits, error) {
	row := r.db.QueryRowContext(ctx, selectAlarmLimitsSQL, alarmLimitsRowID)

	var l models.AlarmLimits
	if err := row.Scan(
		&l.HighTempC,
		&l.LowTempC,
		&l.HighHumidPct,
		&l.LowHumidPct,
		&l.HighPressMbar,
		&l.LowPressMbar,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AlarmLimits{}, nil
		}
		return models.AlarmLimits{}, err
	}
	return l, nil
}
