package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"greenhouse_controller/internal/models"

	"github.com/google/uuid"
)

type AlarmEventSQLite struct {
	db *sql.DB
}

func NewAlarmEventSQLite(db *sql.DB) *AlarmEventSQLite { return &AlarmEventSQLite{db: db} }

const insertAlarmEventSQL = `
		INSERT INTO alarm_events (id, occurred_at, code, value)
		VALUES (?, ?, ?, ?)
	`

// Append inserts a new event. If ID or OccurredAt are empty, they're set.
func (r *AlarmEventSQLite) Append(ctx context.Context, e models.AlarmEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertAlarmEventSQL,
		e.ID,
		e.OccurredAt.Format("2006-01-02 15:04:05"), // SQLite TIMESTAMP format
		e.Code.String(),
		e.Value,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive) and/or code,
// ordered ASC. AlarmNone means any code.
func (r *AlarmEventSQLite) List(ctx context.Context, from, to time.Time, code models.AlarmCode) ([]models.AlarmEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format("2006-01-02 15:04:05"))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format("2006-01-02 15:04:05"))
	}
	if code != models.AlarmNone {
		conds = append(conds, "code = ?")
		args = append(args, code.String())
	}

	q := `SELECT id, occurred_at, code, value FROM alarm_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.AlarmEvent, 0, 16)
	for rows.Next() {
		var (
			ev      models.AlarmEvent
			codeStr string
		)
		if err := rows.Scan(&ev.ID, &ev.OccurredAt, &codeStr, &ev.Value); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		if ev.Code, err = models.ParseAlarmCode(codeStr); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
