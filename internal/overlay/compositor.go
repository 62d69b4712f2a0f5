package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"redub/internal/logging"
	"redub/internal/media"
	"redub/internal/timeline"
)

// Processor is the ffmpeg surface the compositor drives.
type Processor interface {
	DurationMs(ctx context.Context, path string) (int64, error)
	ExtractAudioTrack(ctx context.Context, source, dest string) error
	SilentTrack(ctx context.Context, durationMs int64, dest string) error
	AttenuateWindows(ctx context.Context, source string, windows []timeline.TimeRange, db float64, dest string) error
	SliceAudio(ctx context.Context, source string, span timeline.AudioSpan, dest string) error
	TimeStretch(ctx context.Context, source, dest string, ratio float64) error
	OverlayAt(ctx context.Context, base, insert string, positionMs int64, dest string) error
	ReplaceAudio(ctx context.Context, video, audio, dest string) error
}

var _ Processor = (*media.Processor)(nil)

// Options tune how the compositor treats the original audio track.
type Options struct {
	// MuteOriginal replaces the base track with silence instead of ducking
	// the original speech.
	MuteOriginal bool
	// VolumeReductionDB is the attenuation applied inside segment windows
	// when the original track is kept.
	VolumeReductionDB float64
	// StretchToleranceMs is the overrun allowed before a segment is
	// time-compressed to fit its window.
	StretchToleranceMs int64
}

// Compositor lays dubbed segments over a video's audio track.
type Compositor struct {
	processor Processor
	workDir   string
	opts      Options
	logger    *slog.Logger
}

// NewCompositor constructs the overlay compositor.
func NewCompositor(processor Processor, workDir string, opts Options, logger *slog.Logger) *Compositor {
	if opts.VolumeReductionDB <= 0 {
		opts.VolumeReductionDB = 15
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Compositor{
		processor: processor,
		workDir:   workDir,
		opts:      opts,
		logger:    logger.With(logging.String(logging.FieldComponent, "overlay")),
	}
}

// Compose mixes the synthesized audio onto the video and writes the dubbed
// file next to the source. Temp files live in a per-run directory removed on
// every path.
func (c *Compositor) Compose(ctx context.Context, videoPath, audioPath string, aligned []timeline.AlignedSegment) (string, error) {
	if err := ValidateExtensions(videoPath, audioPath); err != nil {
		return "", err
	}
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("video input: %w", err)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("audio input: %w", err)
	}
	if len(aligned) == 0 {
		return "", fmt.Errorf("compose: no aligned segments")
	}

	tmpDir, err := os.MkdirTemp(c.workDir, "overlay-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	plan := BuildPlan(aligned, c.opts.StretchToleranceMs)
	c.logger.Info("composing dubbed output",
		logging.Int("segments", len(plan.Segments)),
		logging.Bool("mute_original", c.opts.MuteOriginal))

	base, err := c.prepareBase(ctx, videoPath, plan.Windows, tmpDir)
	if err != nil {
		return "", err
	}

	for i, sp := range plan.Segments {
		insert, err := c.prepareSegment(ctx, audioPath, sp, i, tmpDir)
		if err != nil {
			return "", err
		}
		mixed := filepath.Join(tmpDir, fmt.Sprintf("mix-%03d.wav", i))
		if err := c.processor.OverlayAt(ctx, base, insert, sp.AnchorMs, mixed); err != nil {
			return "", fmt.Errorf("overlay segment %d: %w", i, err)
		}
		base = mixed
	}

	output := OutputPath(videoPath)
	if err := c.processor.ReplaceAudio(ctx, videoPath, base, output); err != nil {
		return "", fmt.Errorf("mux output: %w", err)
	}
	return output, nil
}

// prepareBase builds the track the segments are mixed onto: either silence of
// the video's length, or the original audio ducked inside segment windows.
func (c *Compositor) prepareBase(ctx context.Context, videoPath string, windows []timeline.TimeRange, tmpDir string) (string, error) {
	base := filepath.Join(tmpDir, "base.wav")
	if c.opts.MuteOriginal {
		durationMs, err := c.processor.DurationMs(ctx, videoPath)
		if err != nil {
			return "", fmt.Errorf("probe video: %w", err)
		}
		if err := c.processor.SilentTrack(ctx, durationMs, base); err != nil {
			return "", fmt.Errorf("silent base: %w", err)
		}
		return base, nil
	}

	extracted := filepath.Join(tmpDir, "original.wav")
	if err := c.processor.ExtractAudioTrack(ctx, videoPath, extracted); err != nil {
		return "", fmt.Errorf("extract original audio: %w", err)
	}
	if err := c.processor.AttenuateWindows(ctx, extracted, windows, c.opts.VolumeReductionDB, base); err != nil {
		return "", fmt.Errorf("attenuate original audio: %w", err)
	}
	return base, nil
}

func (c *Compositor) prepareSegment(ctx context.Context, audioPath string, sp SegmentPlan, index int, tmpDir string) (string, error) {
	slice := filepath.Join(tmpDir, fmt.Sprintf("seg-%03d.wav", index))
	if err := c.processor.SliceAudio(ctx, audioPath, sp.Slice, slice); err != nil {
		return "", fmt.Errorf("slice segment %d: %w", index, err)
	}
	if !sp.Stretch {
		return slice, nil
	}

	c.logger.Debug("compressing segment to fit window",
		logging.Int("segment", index),
		logging.Float64("ratio", sp.Ratio))
	stretched := filepath.Join(tmpDir, fmt.Sprintf("seg-%03d-fit.wav", index))
	if err := c.processor.TimeStretch(ctx, slice, stretched, sp.Ratio); err != nil {
		return "", fmt.Errorf("stretch segment %d: %w", index, err)
	}
	return stretched, nil
}
