// Command yt-mp3 converts the audio of a video URL to an MP3 file from the
// terminal. It drives the same pipeline as the desktop window and shares
// its configuration file, settings and run history.
package main
