package model

// State represents the phase of a conversion run
type State string

const (
	// StateIdle means no run is in flight
	StateIdle State = "Idle"

	// StateResolving means the source URL is being resolved to metadata
	StateResolving State = "Resolving"

	// StateFetching means audio is being streamed into the temp artifact
	StateFetching State = "Fetching"

	// StateTranscoding means the encoder is producing the MP3
	StateTranscoding State = "Transcoding"

	// StateCleaning means the temp artifact is being removed
	StateCleaning State = "Cleaning"

	// StateDone means the run finished successfully
	StateDone State = "Done"

	// StateFailed means a stage failed and the run was abandoned
	StateFailed State = "Failed"
)

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// IsActive returns true if a run is in one of its working phases
func (s State) IsActive() bool {
	switch s {
	case StateResolving, StateFetching, StateTranscoding, StateCleaning:
		return true
	}
	return false
}

// IsFinished returns true if the run reached a terminal state (done or failed)
func (s State) IsFinished() bool {
	return s == StateDone || s == StateFailed
}
