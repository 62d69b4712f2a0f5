package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"redub/internal/logging"
	"redub/internal/media"
	"redub/internal/services/whisper"
	"redub/internal/timeline"
)

// Client is the transcription endpoint contract the windower drives.
type Client interface {
	Transcribe(ctx context.Context, audio []byte) (whisper.Result, error)
}

// AudioExtractor exports a time window of a media file as WAV audio.
type AudioExtractor interface {
	DurationMs(ctx context.Context, path string) (int64, error)
	ExtractWindow(ctx context.Context, source string, startSec, durationSec float64, dest string) error
}

var _ AudioExtractor = (*media.Processor)(nil)

// Windower transcribes a media file in fixed windows and rebases every chunk
// timestamp onto the full source timeline.
type Windower struct {
	client        Client
	extractor     AudioExtractor
	workDir       string
	windowSeconds int
	minWindowMs   int
	logger        *slog.Logger
}

// NewWindower constructs the windowed transcription driver.
func NewWindower(client Client, extractor AudioExtractor, workDir string, windowSeconds, minWindowMs int, logger *slog.Logger) *Windower {
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	if minWindowMs <= 0 {
		minWindowMs = 100
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Windower{
		client:        client,
		extractor:     extractor,
		workDir:       workDir,
		windowSeconds: windowSeconds,
		minWindowMs:   minWindowMs,
		logger:        logger.With(logging.String(logging.FieldComponent, "transcription")),
	}
}

// Transcribe converts the source's speech into ordered text segments on the
// original timeline and reports the source length in whole seconds.
//
// Windows shorter than the minimum are skipped; only the trailing window can
// be that short, so at most one window is dropped. Skipping it loses under a
// tenth of a second of trailing audio, which the endpoint rejects anyway.
func (w *Windower) Transcribe(ctx context.Context, sourcePath string) ([]timeline.TextSegment, int64, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		return nil, 0, fmt.Errorf("source file: %w", err)
	}

	totalMs, err := w.extractor.DurationMs(ctx, sourcePath)
	if err != nil {
		return nil, 0, fmt.Errorf("probe source: %w", err)
	}

	windowMs := int64(w.windowSeconds) * 1000
	var segments []timeline.TextSegment

	for offsetMs := int64(0); offsetMs < totalMs; offsetMs += windowMs {
		lengthMs := windowMs
		if remaining := totalMs - offsetMs; remaining < lengthMs {
			lengthMs = remaining
		}
		if lengthMs < int64(w.minWindowMs) {
			w.logger.Debug("skipping short trailing window",
				logging.Int64("offset_ms", offsetMs),
				logging.Int64("length_ms", lengthMs))
			continue
		}

		windowSegments, err := w.transcribeWindow(ctx, sourcePath, offsetMs, lengthMs)
		if err != nil {
			return nil, 0, err
		}
		segments = append(segments, windowSegments...)
	}

	return segments, totalMs / 1000, nil
}

func (w *Windower) transcribeWindow(ctx context.Context, sourcePath string, offsetMs, lengthMs int64) ([]timeline.TextSegment, error) {
	tmp, err := os.CreateTemp(w.workDir, "window-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create window file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	offsetSec := float64(offsetMs) / 1000
	lengthSec := float64(lengthMs) / 1000
	if err := w.extractor.ExtractWindow(ctx, sourcePath, offsetSec, lengthSec, tmpPath); err != nil {
		return nil, fmt.Errorf("extract window at %s: %w", filepath.Base(tmpPath), err)
	}

	audio, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read window file: %w", err)
	}

	w.logger.Info("transcribing window",
		logging.Int64("offset_ms", offsetMs),
		logging.Int64("length_ms", lengthMs))

	result, err := w.client.Transcribe(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("transcribe window at %dms: %w", offsetMs, err)
	}

	segments := make([]timeline.TextSegment, 0, len(result.Chunks))
	for _, chunk := range result.Chunks {
		segments = append(segments, timeline.TextSegment{
			Original: timeline.TimeRange{
				Start: chunk.Timestamp[0] + offsetSec,
				End:   chunk.Timestamp[1] + offsetSec,
			},
			Text: chunk.Text,
		})
	}
	return segments, nil
}
