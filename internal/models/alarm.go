package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AlarmCode classifies one out-of-band reading dimension.
type AlarmCode int

const (
	AlarmNone AlarmCode = iota
	AlarmHighTemp
	AlarmLowTemp
	AlarmHighHumid
	AlarmLowHumid
	AlarmHighPress
	AlarmLowPress
)

var alarmCodeNames = [...]string{
	AlarmNone:      "NONE",
	AlarmHighTemp:  "HIGH_TEMP",
	AlarmLowTemp:   "LOW_TEMP",
	AlarmHighHumid: "HIGH_HUMID",
	AlarmLowHumid:  "LOW_HUMID",
	AlarmHighPress: "HIGH_PRESS",
	AlarmLowPress:  "LOW_PRESS",
}

func (c AlarmCode) String() string {
	if c < 0 || int(c) >= len(alarmCodeNames) {
		return fmt.Sprintf("AlarmCode(%d)", int(c))
	}
	return alarmCodeNames[c]
}

// ParseAlarmCode maps a stored name (case-insensitive) back to its code.
func ParseAlarmCode(s string) (AlarmCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range alarmCodeNames {
		if name == s {
			return AlarmCode(i), nil
		}
	}
	return AlarmNone, fmt.Errorf("unknown alarm code %q", s)
}

// MarshalText renders the code by name so JSON payloads stay readable.
func (c AlarmCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *AlarmCode) UnmarshalText(b []byte) error {
	code, err := ParseAlarmCode(string(b))
	if err != nil {
		return err
	}
	*c = code
	return nil
}

// AlarmEvent is a single gross excursion detected on a reading.
type AlarmEvent struct {
	ID         string    `json:"id,omitempty"`
	Code       AlarmCode `json:"code"`
	OccurredAt time.Time `json:"occurred_at"`
	Value      float64   `json:"value"`
}

// ErrInvalidLimits is returned when a high bound does not exceed its low bound.
var ErrInvalidLimits = errors.New("invalid alarm limits")

// AlarmLimits are the alarm thresholds, wider than the control setpoint.
type AlarmLimits struct {
	HighTempC     float64 `json:"high_temp_c" mapstructure:"high_temp"`
	LowTempC      float64 `json:"low_temp_c" mapstructure:"low_temp"`
	HighHumidPct  float64 `json:"high_humid_pct" mapstructure:"high_humid"`
	LowHumidPct   float64 `json:"low_humid_pct" mapstructure:"low_humid"`
	HighPressMbar float64 `json:"high_press_mbar" mapstructure:"high_press"`
	LowPressMbar  float64 `json:"low_press_mbar" mapstructure:"low_press"`
}

// Validate checks every band is non-empty.
func (l AlarmLimits) Validate() error {
	switch {
	case l.HighTempC <= l.LowTempC:
		return fmt.Errorf("%w: temperature high %.1f <= low %.1f", ErrInvalidLimits, l.HighTempC, l.LowTempC)
	case l.HighHumidPct <= l.LowHumidPct:
		return fmt.Errorf("%w: humidity high %.1f <= low %.1f", ErrInvalidLimits, l.HighHumidPct, l.LowHumidPct)
	case l.HighPressMbar <= l.LowPressMbar:
		return fmt.Errorf("%w: pressure high %.1f <= low %.1f", ErrInvalidLimits, l.HighPressMbar, l.LowPressMbar)
	}
	return nil
}

// IsZero reports whether no limits were ever stored.
func (l AlarmLimits) IsZero() bool {
	return l == AlarmLimits{}
}
