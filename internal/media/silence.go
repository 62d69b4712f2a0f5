package media

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"redub/internal/timeline"
)

// DetectSpeech runs silence detection over an audio file and returns the
// ordered non-silent spans together with the file's total length. A silence
// must be at least minSilenceMs long and below thresholdDB to count as a
// boundary.
func (p *Processor) DetectSpeech(ctx context.Context, path string, minSilenceMs int, thresholdDB float64) ([]timeline.AudioSpan, int64, error) {
	totalMs, err := p.DurationMs(ctx, path)
	if err != nil {
		return nil, 0, err
	}

	filter := fmt.Sprintf("silencedetect=noise=%sdB:d=%s",
		strconv.FormatFloat(thresholdDB, 'f', -1, 64),
		formatMs(int64(minSilenceMs)))
	// silencedetect reports on stderr; CombinedOutput captures it.
	output, err := p.run(ctx, p.ffmpeg,
		"-hide_banner",
		"-i", path,
		"-af", filter,
		"-f", "null", "-")
	if err != nil {
		return nil, 0, fmt.Errorf("silence detect: %w", err)
	}

	silences := parseSilenceIntervals(string(output))
	return speechSpans(silences, totalMs), totalMs, nil
}

// parseSilenceIntervals extracts (start,end) pairs from silencedetect output.
// An unterminated trailing silence_start is closed at the end of file by
// speechSpans via a sentinel end of -1.
func parseSilenceIntervals(output string) []timeline.AudioSpan {
	var (
		intervals []timeline.AudioSpan
		openStart int64 = -1
		haveOpen  bool
	)
	for _, line := range strings.Split(output, "\n") {
		if idx := strings.Index(line, "silence_start:"); idx >= 0 {
			if ms, ok := parseStampMs(line[idx+len("silence_start:"):]); ok {
				openStart = ms
				haveOpen = true
			}
			continue
		}
		if idx := strings.Index(line, "silence_end:"); idx >= 0 {
			if ms, ok := parseStampMs(line[idx+len("silence_end:"):]); ok && haveOpen {
				intervals = append(intervals, timeline.AudioSpan{Start: openStart, End: ms})
				haveOpen = false
			}
		}
	}
	if haveOpen {
		intervals = append(intervals, timeline.AudioSpan{Start: openStart, End: -1})
	}
	return intervals
}

func parseStampMs(fragment string) (int64, bool) {
	fields := strings.Fields(strings.TrimSpace(fragment))
	if len(fields) == 0 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return int64(math.Round(seconds * 1000)), true
}

// speechSpans inverts silence intervals into the ordered non-silent spans of
// a file of totalMs length. Intervals with End == -1 extend to end of file.
func speechSpans(silences []timeline.AudioSpan, totalMs int64) []timeline.AudioSpan {
	var spans []timeline.AudioSpan
	cursor := int64(0)
	for _, s := range silences {
		end := s.End
		if end < 0 {
			end = totalMs
		}
		if s.Start > cursor {
			spans = append(spans, timeline.AudioSpan{Start: cursor, End: s.Start})
		}
		if end > cursor {
			cursor = end
		}
	}
	if cursor < totalMs {
		spans = append(spans, timeline.AudioSpan{Start: cursor, End: totalMs})
	}
	return spans
}
