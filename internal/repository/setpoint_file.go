package repository

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sync"

	"greenhouse_controller/internal/models"
)

// On-disk layout of a setpoint record (little-endian):
//
//	magic   [4]byte "GHSP"
//	version uint16
//	_       uint16
//	temp    float64
//	humid   float64
//	crc     uint32  (IEEE, over everything before it)
const (
	setpointVersion   = 1
	setpointRecordLen = 4 + 2 + 2 + 8 + 8 + 4
)

var (
	setpointMagic      = []byte("GHSP")
	errMalformedRecord = errors.New("malformed setpoint record")
)

// SetpointFile persists one Setpoint record in a fixed-size binary file.
type SetpointFile struct {
	path string
	mu   sync.Mutex
}

func NewSetpointFile(path string) *SetpointFile {
	return &SetpointFile{path: path}
}

// Path returns the backing file.
func (f *SetpointFile) Path() string { return f.path }

// Load reads the record. A missing, truncated or corrupt file yields a zero
// Setpoint and no error; only an unreadable file is reported.
func (f *SetpointFile) Load(ctx context.Context) (models.Setpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Setpoint{}, nil
		}
		return models.Setpoint{}, fmt.Errorf("%w: read %q: %v", ErrPersistenceUnavailable, f.path, err)
	}

	sp, err := decodeSetpoint(b)
	if err != nil {
		return models.Setpoint{}, nil
	}
	return sp, nil
}

// Save replaces the record atomically (temp file + rename).
func (f *SetpointFile) Save(ctx context.Context, sp models.Setpoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp in %q: %v", ErrPersistenceUnavailable, dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(encodeSetpoint(sp)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %q: %v", ErrPersistenceUnavailable, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync %q: %v", ErrPersistenceUnavailable, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %q: %v", ErrPersistenceUnavailable, tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: rename to %q: %v", ErrPersistenceUnavailable, f.path, err)
	}
	return nil
}

func encodeSetpoint(sp models.Setpoint) []byte {
	b := make([]byte, setpointRecordLen)
	copy(b[0:4], setpointMagic)
	binary.LittleEndian.PutUint16(b[4:6], setpointVersion)
	binary.LittleEndian.PutUint64(b[8:16], math.Float64bits(sp.TemperatureC))
	binary.LittleEndian.PutUint64(b[16:24], math.Float64bits(sp.HumidityPct))
	binary.LittleEndian.PutUint32(b[24:28], crc32.ChecksumIEEE(b[:24]))
	return b
}

// decodeSetpoint accepts the versioned record and the legacy headerless
// layout of two (or three) raw float64 values.
func decodeSetpoint(b []byte) (models.Setpoint, error) {
	if len(b) >= len(setpointMagic) && bytes.Equal(b[:4], setpointMagic) {
		return decodeVersioned(b)
	}
	switch len(b) {
	case 16, 24:
		return finite(models.Setpoint{
			TemperatureC: math.Float64frombits(binary.LittleEndian.Uint64(b[0:8])),
			HumidityPct:  math.Float64frombits(binary.LittleEndian.Uint64(b[8:16])),
		})
	default:
		return models.Setpoint{}, fmt.Errorf("%w: %d bytes", errMalformedRecord, len(b))
	}
}

func decodeVersioned(b []byte) (models.Setpoint, error) {
	if len(b) < setpointRecordLen {
		return models.Setpoint{}, fmt.Errorf("%w: truncated", errMalformedRecord)
	}
	if v := binary.LittleEndian.Uint16(b[4:6]); v != setpointVersion {
		return models.Setpoint{}, fmt.Errorf("%w: unsupported version %d", errMalformedRecord, v)
	}
	if crc32.ChecksumIEEE(b[:24]) != binary.LittleEndian.Uint32(b[24:28]) {
		return models.Setpoint{}, fmt.Errorf("%w: checksum mismatch", errMalformedRecord)
	}
	return finite(models.Setpoint{
		TemperatureC: math.Float64frombits(binary.LittleEndian.Uint64(b[8:16])),
		HumidityPct:  math.Float64frombits(binary.LittleEndian.Uint64(b[16:24])),
	})
}

func finite(sp models.Setpoint) (models.Setpoint, error) {
	for _, v := range []float64{sp.TemperatureC, sp.HumidityPct} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Setpoint{}, fmt.Errorf("%w: non-finite value", errMalformedRecord)
		}
	}
	return sp, nil
}
