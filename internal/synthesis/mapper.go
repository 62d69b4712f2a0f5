package synthesis

import (
	"log/slog"

	"redub/internal/logging"
	"redub/internal/timeline"
)

// MapAudioTimestamps pairs detected speech spans with translated segments in
// order. Each span is padded on both sides and clamped to the audio bounds,
// then zipped onto segments; when the counts differ the shorter list wins and
// the mismatch is logged.
func MapAudioTimestamps(segments []timeline.TextSegment, spans []timeline.AudioSpan, paddingMs, totalMs int64, logger *slog.Logger) []timeline.AlignedSegment {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(spans) != len(segments) {
		logger.Warn("speech span count differs from segment count",
			logging.Int("segments", len(segments)),
			logging.Int("spans", len(spans)))
	}

	n := len(segments)
	if len(spans) < n {
		n = len(spans)
	}

	aligned := make([]timeline.AlignedSegment, 0, n)
	for i := 0; i < n; i++ {
		aligned = append(aligned, timeline.AlignedSegment{
			TextSegment: segments[i],
			Audio:       spans[i].Pad(paddingMs, totalMs),
		})
	}
	return aligned
}
