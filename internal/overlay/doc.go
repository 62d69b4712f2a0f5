// Package overlay lays synthesized speech over a video's audio track.
// Placement is computed as a pure plan (slice, optional time compression,
// anchor position) and executed with ffmpeg: the original track is muted or
// ducked inside segment windows, each dubbed segment is mixed in at its
// window start, and the result is muxed back under the original video stream.
package overlay
