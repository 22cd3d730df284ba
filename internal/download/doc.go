// Package download implements the fetch stage: it streams the audio-only
// variant of a resolved source into a temporary file next to the final
// output, publishing gated percent updates as bytes arrive.
package download
