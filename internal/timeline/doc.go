// Package timeline defines the segment data model shared by every dubbing
// stage.
//
// A TextSegment pins a unit of spoken content to the original media timeline
// in seconds. An AlignedSegment additionally locates that segment's dubbed
// speech inside the synthesized audio file in milliseconds. Segment index is
// the only correlation key between the two timelines, so every stage must
// preserve ordering end to end.
package timeline
