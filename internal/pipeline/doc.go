// Package pipeline sequences a single conversion run:
// Idle → Resolving → Fetching → Transcoding → Cleaning → Done, with Failed
// reachable from every active state. Only one run is in flight at a time.
package pipeline
