package progress

// Sink receives progress and status updates for display
type Sink interface {
	OnProgress(percent int)
	OnStatusMessage(text string)
}

// Reporter is what a pipeline stage uses to publish its progress
type Reporter interface {
	// Report publishes an intermediate percent, subject to rate limiting
	Report(percent int)
	// Finish publishes a terminal percent, bypassing rate limiting
	Finish(percent int)
}

// Discard is a Sink that drops every update
var Discard Sink = discard{}

type discard struct{}

func (discard) OnProgress(int)         {}
func (discard) OnStatusMessage(string) {}

// SinkFuncs adapts a pair of functions to the Sink interface. Nil fields are skipped.
type SinkFuncs struct {
	Progress func(percent int)
	Status   func(text string)
}

// OnProgress calls Progress if set
func (f SinkFuncs) OnProgress(percent int) {
	if f.Progress != nil {
		f.Progress(percent)
	}
}

// OnStatusMessage calls Status if set
func (f SinkFuncs) OnStatusMessage(text string) {
	if f.Status != nil {
		f.Status(text)
	}
}
