// Package media wraps the ffmpeg and ffprobe binaries behind a small
// processor API: window extraction, audio slicing, silence detection,
// pitch-preserving time-stretching, timeline overlay mixing, and muxing.
//
// All operations shell out through an injectable command runner so tests can
// assert argument construction without the binaries installed.
package media
