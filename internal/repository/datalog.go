package repository

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"greenhouse_controller/internal/models"
)

// Data log line formats.
const (
	// FormatCtime is "Www,Mmm,dd,hh:mm:ss,yyyy,TT.T,HH.H,PPPP.P".
	FormatCtime = "ctime"
	// FormatISO8601 is "2006-01-02T15:04:05Z07:00,TT.T,HH.H,PPPP.P".
	FormatISO8601 = "iso8601"
)

// ctime(3) rendering positions turned into field separators.
var ctimeSeparators = [...]int{3, 7, 10, 19}

// ReadingFileLog appends one text line per reading. The file is opened in
// append mode for every write and closed again.
type ReadingFileLog struct {
	path   string
	format string
	loc    *time.Location
	mu     sync.Mutex
}

// NewReadingFileLog validates the format; a nil location means time.Local.
func NewReadingFileLog(path, format string, loc *time.Location) (*ReadingFileLog, error) {
	switch format {
	case "":
		format = FormatCtime
	case FormatCtime, FormatISO8601:
	default:
		return nil, fmt.Errorf("unknown data log format %q", format)
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReadingFileLog{path: path, format: format, loc: loc}, nil
}

// Append writes the reading. An open failure is reported, not retried.
func (l *ReadingFileLog) Append(ctx context.Context, r models.Reading) error {
	line := l.formatLine(r)

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %q: %v", ErrPersistenceUnavailable, l.path, err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write %q: %v", ErrPersistenceUnavailable, l.path, err)
	}
	return f.Close()
}

func (l *ReadingFileLog) formatLine(r models.Reading) []byte {
	t := r.Time.In(l.loc)

	var b []byte
	switch l.format {
	case FormatISO8601:
		b = t.AppendFormat(make([]byte, 0, 64), time.RFC3339)
	default:
		b = t.AppendFormat(make([]byte, 0, 64), time.ANSIC) // "Mon Jan _2 15:04:05 2006"
		for _, i := range ctimeSeparators {
			b[i] = ','
		}
	}

	for _, v := range []float64{r.TemperatureC, r.HumidityPct, r.PressureMbar} {
		b = append(b, ',')
		b = strconv.AppendFloat(b, v, 'f', 1, 64)
	}
	return append(b, '\n')
}
