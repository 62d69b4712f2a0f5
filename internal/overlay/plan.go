package overlay

import (
	"fmt"
	"path/filepath"
	"strings"

	"redub/internal/timeline"
)

var (
	videoExtensions = map[string]struct{}{".mp4": {}, ".avi": {}}
	audioExtensions = map[string]struct{}{".mp3": {}, ".wav": {}}
)

// SegmentPlan describes how one dubbed segment lands on the output timeline.
type SegmentPlan struct {
	// Slice is the region of the synthesized audio file holding this
	// segment's speech.
	Slice timeline.AudioSpan
	// Stretch is set when the slice overruns its original window by more
	// than the tolerance and must be compressed to fit.
	Stretch bool
	// Ratio is the duration scale factor applied when Stretch is set.
	// Values below 1 shorten the audio.
	Ratio float64
	// AnchorMs is the absolute output position of the segment, taken from
	// the original window's start.
	AnchorMs int64
}

// Plan is the full set of decisions the compositor executes.
type Plan struct {
	Segments []SegmentPlan
	// Windows are the original speech windows on the video timeline where
	// the base audio is muted or attenuated.
	Windows []timeline.TimeRange
}

// BuildPlan computes per-segment placement from aligned segments. The plan is
// pure so placement decisions can be inspected without touching ffmpeg.
func BuildPlan(aligned []timeline.AlignedSegment, toleranceMs int64) Plan {
	plan := Plan{
		Segments: make([]SegmentPlan, 0, len(aligned)),
		Windows:  make([]timeline.TimeRange, 0, len(aligned)),
	}
	for _, seg := range aligned {
		videoMs := seg.Original.DurationMs()
		audioMs := seg.Audio.DurationMs()

		sp := SegmentPlan{
			Slice:    seg.Audio,
			AnchorMs: int64(seg.Original.Start * 1000),
		}
		if audioMs > 0 && audioMs-videoMs > toleranceMs {
			sp.Stretch = true
			sp.Ratio = float64(videoMs) / float64(audioMs)
		}
		plan.Segments = append(plan.Segments, sp)
		plan.Windows = append(plan.Windows, seg.Original)
	}
	return plan
}

// ValidateVideoExtension checks the source container format.
func ValidateVideoExtension(videoPath string) error {
	videoExt := strings.ToLower(filepath.Ext(videoPath))
	if _, ok := videoExtensions[videoExt]; !ok {
		return fmt.Errorf("unsupported video format %q (expected mp4 or avi)", videoExt)
	}
	return nil
}

// ValidateExtensions checks both container formats before any work starts.
func ValidateExtensions(videoPath, audioPath string) error {
	if err := ValidateVideoExtension(videoPath); err != nil {
		return err
	}
	audioExt := strings.ToLower(filepath.Ext(audioPath))
	if _, ok := audioExtensions[audioExt]; !ok {
		return fmt.Errorf("unsupported audio format %q (expected mp3 or wav)", audioExt)
	}
	return nil
}

// OutputPath derives the dubbed file location next to the source video.
func OutputPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	base := strings.TrimSuffix(videoPath, ext)
	return base + "-dubbed" + ext
}
