// Package transcode implements the transcode stage: it runs ffmpeg over the
// fetched temp file to produce an MP3 at the chosen bitrate, turning
// ffmpeg's -progress output into gated percent updates.
package transcode
