package alarm

import (
	"errors"
	"sync"

	"greenhouse_controller/internal/models"
)

// DefaultHistoryCapacity is the number of alarm events kept in memory.
const DefaultHistoryCapacity = 7

var errInvalidCapacity = errors.New("alarm history capacity must be > 0")

// History is a fixed-capacity ring of alarm events. When full, a new event
// overwrites the oldest one.
type History struct {
	mu     sync.Mutex
	buf    []models.AlarmEvent
	next   int // write cursor
	filled bool
}

// NewHistory allocates the ring once; it never grows.
func NewHistory(capacity int) (*History, error) {
	if capacity <= 0 {
		return nil, errInvalidCapacity
	}
	return &History{buf: make([]models.AlarmEvent, capacity)}, nil
}

// Record appends ev, evicting the oldest entry on overflow. NONE is not an
// event and is dropped.
func (h *History) Record(ev models.AlarmEvent) {
	if ev.Code == models.AlarmNone {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf[h.next] = ev
	h.next = (h.next + 1) % len(h.buf)
	if h.next == 0 {
		h.filled = true
	}
}

// Len returns the number of stored events.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.filled {
		return len(h.buf)
	}
	return h.next
}

// Cap returns the fixed capacity.
func (h *History) Cap() int { return len(h.buf) }

// Events returns a copy of the stored events, oldest first.
func (h *History) Events() []models.AlarmEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.filled {
		out := make([]models.AlarmEvent, h.next)
		copy(out, h.buf[:h.next])
		return out
	}
	out := make([]models.AlarmEvent, 0, len(h.buf))
	out = append(out, h.buf[h.next:]...)
	out = append(out, h.buf[:h.next]...)
	return out
}
