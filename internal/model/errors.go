package model

import "errors"

// Error taxonomy of the conversion pipeline. Stages wrap these together with
// the underlying cause so callers can match with errors.Is.
var (
	// ErrInvalidInput means the submitted URL is empty or malformed
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnreachableSource means the source service could not be reached
	ErrUnreachableSource = errors.New("source unreachable")

	// ErrContentUnavailable means the content was removed or is restricted
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrSourceStream means the media stream failed while fetching
	ErrSourceStream = errors.New("source stream failed")

	// ErrEncode means the encoder failed to produce the output file
	ErrEncode = errors.New("encode failed")

	// ErrCleanup means the temp artifact could not be removed
	ErrCleanup = errors.New("cleanup failed")

	// ErrBusy means another run is already in flight
	ErrBusy = errors.New("a conversion is already running")

	// ErrCancelled means the user dismissed the folder prompt
	ErrCancelled = errors.New("cancelled")
)
