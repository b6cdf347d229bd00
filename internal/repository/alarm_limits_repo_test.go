package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"greenhouse_controller/internal/models"
	"greenhouse_controller/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

var limitsCols = []string{"high_temp", "low_temp", "high_humid", "low_humid", "high_press", "low_press"}

func TestAlarmLimitsSQLite_Save_UpsertsSingleRowWithUTCStamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewAlarmLimitsSQLite(db)

	limits := models.AlarmLimits{
		HighTempC: 30, LowTempC: 10,
		HighHumidPct: 70, LowHumidPct: 25,
		HighPressMbar: 1016, LowPressMbar: 985,
	}

	isUTCRecent := sqlmockArgumentFunc(func(v driver.Value) bool {
		tm, ok := v.(time.Time)
		if !ok || tm.Location() != time.UTC {
			return false
		}
		now := time.Now().UTC()
		return !tm.Before(now.Add(-5*time.Second)) && !tm.After(now.Add(5*time.Second))
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO alarm_limits")).
		WithArgs(1, 30.0, 10.0, 70.0, 25.0, 1016.0, 985.0, isUTCRecent).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), limits); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAlarmLimitsSQLite_Save_ExecErrorIsPropagated(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO alarm_limits")).
		WillReturnError(errors.New("db down"))

	if err := repository.NewAlarmLimitsSQLite(db).Save(context.Background(), models.AlarmLimits{}); err == nil {
		t.Fatalf("Save() expected error, got nil")
	}
}

func TestAlarmLimitsSQLite_Load_NoRowsReturnsZeroValueAndNilError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT high_temp, low_temp, high_humid, low_humid, high_press, low_press")).
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	got, err := repository.NewAlarmLimitsSQLite(db).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("Load() expected zero limits, got: %+v", got)
	}
}

func TestAlarmLimitsSQLite_Load_HappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows(limitsCols).AddRow(32.0, 8.0, 75.0, 20.0, 1020.0, 980.0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT high_temp, low_temp, high_humid, low_humid, high_press, low_press")).
		WithArgs(1).
		WillReturnRows(rows)

	got, err := repository.NewAlarmLimitsSQLite(db).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	want := models.AlarmLimits{
		HighTempC: 32, LowTempC: 8,
		HighHumidPct: 75, LowHumidPct: 20,
		HighPressMbar: 1020, LowPressMbar: 980,
	}
	if got != want {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAlarmLimitsSQLite_Load_QueryErrorIsPropagated(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT high_temp").WillReturnError(errors.New("disk I/O error"))

	if _, err := repository.NewAlarmLimitsSQLite(db).Load(context.Background()); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

// Helpers

type sqlmockArgumentFunc func(v driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool {
	return f(v)
}
