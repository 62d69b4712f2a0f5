// Package transcription converts source media into timestamped text segments
// by slicing the audio into fixed windows, sending each window to a Whisper
// endpoint, and rebasing the returned timestamps onto the source timeline.
package transcription
