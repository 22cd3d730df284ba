package progress

import (
	"sync"

	"github.com/ytget/yt-mp3/internal/model"
)

// Tracker is the single writer of ProgressState for the active phase
type Tracker struct {
	mu    sync.Mutex
	sink  Sink
	gate  *Gate
	state model.ProgressState
}

// NewTracker creates a tracker that forwards to sink through gate
func NewTracker(sink Sink, gate *Gate) *Tracker {
	if sink == nil {
		sink = Discard
	}
	if gate == nil {
		gate = NewGate(DefaultWindow)
	}
	return &Tracker{sink: sink, gate: gate}
}

// Begin starts a new phase: percent drops back to 0 and the message changes
func (t *Tracker) Begin(message string) {
	t.mu.Lock()
	t.state = model.ProgressState{Percent: 0, Message: message}
	t.gate.Reset()
	t.mu.Unlock()

	t.sink.OnProgress(0)
	t.sink.OnStatusMessage(message)
}

// SetMessage changes the status line without touching the percent
func (t *Tracker) SetMessage(message string) {
	t.mu.Lock()
	t.state.Message = message
	t.mu.Unlock()

	t.sink.OnStatusMessage(message)
}

// Report publishes percent unless the gate is closed. Values below the
// current percent are ignored.
func (t *Tracker) Report(percent int) {
	t.mu.Lock()
	percent = clamp(percent)
	if percent < t.state.Percent || !t.gate.Allow() {
		t.mu.Unlock()
		return
	}
	t.state.Percent = percent
	t.mu.Unlock()

	t.sink.OnProgress(percent)
}

// Finish publishes a terminal percent regardless of the gate
func (t *Tracker) Finish(percent int) {
	t.mu.Lock()
	percent = clamp(percent)
	if percent < t.state.Percent {
		percent = t.state.Percent
	}
	t.state.Percent = percent
	t.mu.Unlock()

	t.sink.OnProgress(percent)
}

// Snapshot returns a copy of the current state
func (t *Tracker) Snapshot() model.ProgressState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func clamp(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
