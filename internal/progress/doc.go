package progress

// Package progress carries progress events from the pipeline stages to the
// display. A Tracker owns the ProgressState of the active phase, keeps the
// percent monotonic within that phase and passes updates through a Gate that
// drops anything arriving inside the 800ms suppression window.
