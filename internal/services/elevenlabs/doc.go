// Package elevenlabs provides a client for the ElevenLabs text-to-speech API.
package elevenlabs
