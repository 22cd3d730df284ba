package progress

import (
	"sync"
	"time"
)

// DefaultWindow is the suppression window between two emitted progress updates
const DefaultWindow = 800 * time.Millisecond

// Gate is a debounce flag: once an update passes, further updates are dropped
// until the window has elapsed. Dropped updates are not queued.
type Gate struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   time.Time
	armed  bool
}

// NewGate creates a gate with the given suppression window
func NewGate(window time.Duration) *Gate {
	return &Gate{
		window: window,
		now:    time.Now,
	}
}

// SetClock replaces the time source, used by tests
func (g *Gate) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Allow reports whether an update may be emitted now and, if so, arms the gate
func (g *Gate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.armed && now.Sub(g.last) < g.window {
		return false
	}
	g.armed = true
	g.last = now
	return true
}

// Reset clears the gate so the next update passes immediately
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = false
}
