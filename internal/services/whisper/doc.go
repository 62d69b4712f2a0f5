// Package whisper provides a client for a hosted Whisper transcription
// endpoint that accepts raw audio bytes and returns timestamped text chunks.
package whisper
