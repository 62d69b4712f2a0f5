package timeline

import (
	"fmt"
	"time"
)

// TimeRange is a half-open window on the original media timeline, in seconds.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// DurationMs returns the window length in milliseconds.
func (r TimeRange) DurationMs() int64 {
	return int64((r.End - r.Start) * 1000)
}

// Shift returns the range moved forward by offset seconds.
func (r TimeRange) Shift(offset float64) TimeRange {
	return TimeRange{Start: r.Start + offset, End: r.End + offset}
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%.2fs,%.2fs)", r.Start, r.End)
}

// AudioSpan locates a stretch of the synthesized audio file, in milliseconds.
type AudioSpan struct {
	Start int64 `json:"start_ms"`
	End   int64 `json:"end_ms"`
}

// DurationMs returns the span length in milliseconds.
func (s AudioSpan) DurationMs() int64 {
	return s.End - s.Start
}

// Pad widens the span by pad on both sides, clamped to [0, limit].
func (s AudioSpan) Pad(pad, limit int64) AudioSpan {
	start := s.Start - pad
	if start < 0 {
		start = 0
	}
	end := s.End + pad
	if end > limit {
		end = limit
	}
	return AudioSpan{Start: start, End: end}
}

func (s AudioSpan) String() string {
	return fmt.Sprintf("[%dms,%dms)", s.Start, s.End)
}

// TextSegment is one unit of spoken source content. Original holds its fixed
// position on the source timeline; Text is replaced in place once translation
// completes.
type TextSegment struct {
	Original TimeRange `json:"original"`
	Text     string    `json:"text"`
}

// AlignedSegment pairs a segment with the location of its dubbed speech
// inside the synthesized audio file.
type AlignedSegment struct {
	TextSegment
	Audio AudioSpan `json:"audio"`
}

// TotalDuration returns the end of the last segment's original window as a
// duration, or zero for an empty list.
func TotalDuration(segments []TextSegment) time.Duration {
	if len(segments) == 0 {
		return 0
	}
	return time.Duration(segments[len(segments)-1].Original.End * float64(time.Second))
}

// Texts returns the segment texts in order.
func Texts(segments []TextSegment) []string {
	out := make([]string, len(segments))
	for i, seg := range segments {
		out[i] = seg.Text
	}
	return out
}
