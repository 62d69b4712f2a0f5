// Package synthesis renders translated segments as speech and maps the
// synthesized audio back onto the segment list. Segments are rendered with a
// fixed pause between them; silence detection then recovers each segment's
// location inside the audio file.
package synthesis
