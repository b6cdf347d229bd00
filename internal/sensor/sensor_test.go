package sensor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBounds = Bounds{
	Temperature: Range{Lower: -50, Upper: 50},
	Humidity:    Range{Lower: 0, Upper: 100},
	Pressure:    Range{Lower: 975, Upper: 1016},
}

func TestSimulator_DrawsStayInHalfOpenRange(t *testing.T) {
	sim, err := NewSimulator(testBounds, 1)
	require.NoError(t, err)

	const n = 10000
	const buckets = 10
	counts := make([]int, buckets)
	width := testBounds.Temperature.Upper - testBounds.Temperature.Lower

	for i := 0; i < n; i++ {
		r, err := sim.Acquire(context.Background())
		require.NoError(t, err)

		tc := r.TemperatureC
		require.GreaterOrEqual(t, tc, testBounds.Temperature.Lower)
		require.Less(t, tc, testBounds.Temperature.Upper)
		require.GreaterOrEqual(t, r.HumidityPct, testBounds.Humidity.Lower)
		require.Less(t, r.HumidityPct, testBounds.Humidity.Upper)
		require.GreaterOrEqual(t, r.PressureMbar, testBounds.Pressure.Lower)
		require.Less(t, r.PressureMbar, testBounds.Pressure.Upper)

		idx := int((tc - testBounds.Temperature.Lower) / width * buckets)
		counts[idx]++
	}

	// Coarse uniformity: every decile holds roughly a tenth of the draws.
	for i, c := range counts {
		assert.InDelta(t, n/buckets, c, 200, "bucket %d skewed: %v", i, counts)
	}
	lowerHalf := 0
	for _, c := range counts[:buckets/2] {
		lowerHalf += c
	}
	assert.InDelta(t, n/2, lowerHalf, 300)
}

func TestSimulator_RejectsInvertedBounds(t *testing.T) {
	b := testBounds
	b.Humidity = Range{Lower: 50, Upper: 50}

	_, err := NewSimulator(b, 1)
	assert.ErrorIs(t, err, ErrInvalidBounds)
}

func TestSimulator_SameSeedSameSequence(t *testing.T) {
	a, _ := NewSimulator(testBounds, 7)
	b, _ := NewSimulator(testBounds, 7)
	for i := 0; i < 10; i++ {
		ra, _ := a.Acquire(context.Background())
		rb, _ := b.Acquire(context.Background())
		assert.Equal(t, ra.TemperatureC, rb.TemperatureC)
		assert.Equal(t, ra.PressureMbar, rb.PressureMbar)
	}
}

func TestNew_SimulatedUsesSingleCaptureInstant(t *testing.T) {
	fixed := time.Date(2021, 2, 19, 12, 0, 0, 0, time.UTC)
	calls := 0
	src, err := New(Options{
		Mode:   ModeSimulated,
		Bounds: testBounds,
		Seed:   3,
		Clock: func() time.Time {
			calls++
			return fixed
		},
	})
	require.NoError(t, err)

	r, err := src.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixed, r.Time)
	assert.Equal(t, 1, calls)
}

func TestNew_UnknownModeAndMissingDriver(t *testing.T) {
	_, err := New(Options{Mode: "thermocouple", Bounds: testBounds})
	assert.Error(t, err)

	_, err = New(Options{Mode: ModeHardware})
	assert.ErrorIs(t, err, ErrSensorUnavailable)
}

// ---- hardware ----

type fakeDriver struct {
	temp, hum, press float64
	pressErr         error
	reads            int
}

func (f *fakeDriver) Temperature() (float64, error) { f.reads++; return f.temp, nil }
func (f *fakeDriver) Humidity() (float64, error)    { f.reads++; return f.hum, nil }
func (f *fakeDriver) Pressure() (float64, error) {
	f.reads++
	return f.press, f.pressErr
}

func TestHardware_ReadsEachQuantityOnce(t *testing.T) {
	drv := &fakeDriver{temp: 21.4, hum: 48.2, press: 1003.7}
	hw := NewHardware(drv)

	r, err := hw.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 21.4, r.TemperatureC)
	assert.Equal(t, 48.2, r.HumidityPct)
	assert.Equal(t, 1003.7, r.PressureMbar)
	assert.Equal(t, 3, drv.reads)
	assert.False(t, r.Time.IsZero())
}

func TestHardware_DriverFailureIsSensorUnavailable(t *testing.T) {
	drv := &fakeDriver{temp: 0, hum: 0, pressErr: errors.New("i2c nack")}
	hw := NewHardware(drv)

	r, err := hw.Acquire(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSensorUnavailable)
	assert.Contains(t, err.Error(), "pressure")
	assert.True(t, r.Time.IsZero(), "no partial reading on failure")
}

// ---- iio ----

func writeAttr(t *testing.T, dir, name, val string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(val+"\n"), 0o644))
}

func TestIIODriver_RawOffsetScale(t *testing.T) {
	hts := t.TempDir()
	lps := t.TempDir()

	writeAttr(t, hts, "in_temp_raw", "-200")
	writeAttr(t, hts, "in_temp_offset", "11000")
	writeAttr(t, hts, "in_temp_scale", "2.5") // (−200+11000)*2.5 = 27000 m°C
	writeAttr(t, hts, "in_humidityrelative_raw", "4000")
	writeAttr(t, hts, "in_humidityrelative_scale", "10") // 40000 m%
	writeAttr(t, lps, "in_pressure_input", "100.25")     // kPa

	drv, err := NewIIODriver(IIOConfig{HumidityDevice: hts, PressureDevice: lps})
	require.NoError(t, err)

	temp, err := drv.Temperature()
	require.NoError(t, err)
	assert.InDelta(t, 27.0, temp, 1e-9)

	hum, err := drv.Humidity()
	require.NoError(t, err)
	assert.InDelta(t, 40.0, hum, 1e-9)

	press, err := drv.Pressure()
	require.NoError(t, err)
	assert.InDelta(t, 1002.5, press, 1e-9)
}

func TestIIODriver_MissingChannelSurfacesThroughHardware(t *testing.T) {
	drv, err := NewIIODriver(IIOConfig{HumidityDevice: t.TempDir(), PressureDevice: t.TempDir()})
	require.NoError(t, err)

	_, err = NewHardware(drv).Acquire(context.Background())
	assert.ErrorIs(t, err, ErrSensorUnavailable)
}

func TestIIODriver_RequiresDevices(t *testing.T) {
	_, err := NewIIODriver(IIOConfig{})
	assert.Error(t, err)
}
