package overlay

import (
	"math"
	"testing"

	"redub/internal/timeline"
)

func alignedSegment(start, end float64, audioStart, audioEnd int64) timeline.AlignedSegment {
	return timeline.AlignedSegment{
		TextSegment: timeline.TextSegment{
			Original: timeline.TimeRange{Start: start, End: end},
			Text:     "segment",
		},
		Audio: timeline.AudioSpan{Start: audioStart, End: audioEnd},
	}
}

func TestBuildPlanAnchorsAtWindowStart(t *testing.T) {
	plan := BuildPlan([]timeline.AlignedSegment{
		alignedSegment(0, 2, 0, 2000),
		alignedSegment(12.5, 15, 3000, 5000),
	}, 500)

	if len(plan.Segments) != 2 {
		t.Fatalf("expected 2 segment plans, got %d", len(plan.Segments))
	}
	if plan.Segments[0].AnchorMs != 0 || plan.Segments[1].AnchorMs != 12500 {
		t.Fatalf("unexpected anchors %d %d", plan.Segments[0].AnchorMs, plan.Segments[1].AnchorMs)
	}
	if len(plan.Windows) != 2 || plan.Windows[1].Start != 12.5 {
		t.Fatalf("unexpected windows %v", plan.Windows)
	}
}

func TestBuildPlanStretchesOnlyBeyondTolerance(t *testing.T) {
	plan := BuildPlan([]timeline.AlignedSegment{
		// 400ms overrun: inside tolerance, no stretch.
		alignedSegment(0, 10, 0, 10400),
		// 1000ms overrun: compressed to fit.
		alignedSegment(10, 20, 10400, 21400),
	}, 500)

	if plan.Segments[0].Stretch {
		t.Fatalf("400ms overrun must not stretch: %+v", plan.Segments[0])
	}
	if !plan.Segments[1].Stretch {
		t.Fatalf("1000ms overrun must stretch: %+v", plan.Segments[1])
	}
	want := 10000.0 / 11000.0
	if math.Abs(plan.Segments[1].Ratio-want) > 1e-9 {
		t.Fatalf("expected ratio %v, got %v", want, plan.Segments[1].Ratio)
	}
}

func TestBuildPlanShortAudioNeverStretches(t *testing.T) {
	// Audio shorter than the window leaves trailing room instead of padding.
	plan := BuildPlan([]timeline.AlignedSegment{
		alignedSegment(0, 10, 0, 6000),
	}, 500)
	if plan.Segments[0].Stretch {
		t.Fatalf("short audio must not stretch: %+v", plan.Segments[0])
	}
}

func TestValidateExtensions(t *testing.T) {
	if err := ValidateExtensions("/v/movie.mp4", "/a/track.mp3"); err != nil {
		t.Fatalf("mp4+mp3 must validate: %v", err)
	}
	if err := ValidateExtensions("/v/movie.AVI", "/a/track.WAV"); err != nil {
		t.Fatalf("case-insensitive extensions must validate: %v", err)
	}
	if err := ValidateExtensions("/v/movie.mkv", "/a/track.mp3"); err == nil {
		t.Fatal("mkv must be rejected")
	}
	if err := ValidateExtensions("/v/movie.mp4", "/a/track.flac"); err == nil {
		t.Fatal("flac must be rejected")
	}
}

func TestOutputPath(t *testing.T) {
	if got := OutputPath("/media/lecture.mp4"); got != "/media/lecture-dubbed.mp4" {
		t.Fatalf("unexpected output path %q", got)
	}
	if got := OutputPath("clip.avi"); got != "clip-dubbed.avi" {
		t.Fatalf("unexpected output path %q", got)
	}
}
