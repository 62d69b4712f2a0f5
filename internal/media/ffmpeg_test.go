package media

import (
	"context"
	"strings"
	"testing"

	"redub/internal/timeline"
)

type capturedCall struct {
	name string
	args []string
}

func captureRunner(calls *[]capturedCall, output string) Runner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, capturedCall{name: name, args: args})
		return []byte(output), nil
	}
}

func TestAtempoChainSingleStage(t *testing.T) {
	chain := atempoChain(1.1)
	if chain != "atempo=1.100000" {
		t.Fatalf("unexpected chain %q", chain)
	}
}

func TestAtempoChainDecomposesLargeFactors(t *testing.T) {
	chain := atempoChain(5)
	if chain != "atempo=2.0,atempo=2.0,atempo=1.250000" {
		t.Fatalf("unexpected chain %q", chain)
	}
}

func TestAtempoChainDecomposesSmallFactors(t *testing.T) {
	chain := atempoChain(0.2)
	if chain != "atempo=0.5,atempo=0.5,atempo=0.800000" {
		t.Fatalf("unexpected chain %q", chain)
	}
}

func TestTimeStretchInvertsRatio(t *testing.T) {
	var calls []capturedCall
	p := NewProcessor("ffmpeg", "ffprobe").WithRunner(captureRunner(&calls, ""))

	// ratio 0.5 halves the duration, so the tempo factor is 2.
	if err := p.TimeStretch(context.Background(), "in.wav", "out.wav", 0.5); err != nil {
		t.Fatalf("time stretch: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one ffmpeg call, got %d", len(calls))
	}
	joined := strings.Join(calls[0].args, " ")
	if !strings.Contains(joined, "atempo=2.000000") {
		t.Fatalf("expected atempo=2 filter, got %q", joined)
	}
}

func TestTimeStretchRejectsNonPositiveRatio(t *testing.T) {
	p := NewProcessor("", "")
	if err := p.TimeStretch(context.Background(), "in.wav", "out.wav", 0); err == nil {
		t.Fatal("expected error for zero ratio")
	}
}

func TestAttenuationFilterGatesEachWindow(t *testing.T) {
	filter := attenuationFilter([]timeline.TimeRange{{Start: 0, End: 2}, {Start: 5, End: 6}}, 15)
	want := "volume=volume=-15dB:enable='between(t,0.000,2.000)+between(t,5.000,6.000)'"
	if filter != want {
		t.Fatalf("expected %q, got %q", want, filter)
	}
}

func TestOverlayAtAnchorsDelay(t *testing.T) {
	var calls []capturedCall
	p := NewProcessor("ffmpeg", "ffprobe").WithRunner(captureRunner(&calls, ""))

	if err := p.OverlayAt(context.Background(), "base.wav", "seg.wav", 2000, "out.wav"); err != nil {
		t.Fatalf("overlay: %v", err)
	}
	joined := strings.Join(calls[0].args, " ")
	if !strings.Contains(joined, "adelay=2000|2000") {
		t.Fatalf("expected adelay anchor, got %q", joined)
	}
	if !strings.Contains(joined, "duration=first") {
		t.Fatalf("expected base-length mix, got %q", joined)
	}
}

func TestSliceAudioUsesSpanBounds(t *testing.T) {
	var calls []capturedCall
	p := NewProcessor("ffmpeg", "ffprobe").WithRunner(captureRunner(&calls, ""))

	span := timeline.AudioSpan{Start: 1700, End: 5600}
	if err := p.SliceAudio(context.Background(), "synth.mp3", span, "slice.wav"); err != nil {
		t.Fatalf("slice: %v", err)
	}
	joined := strings.Join(calls[0].args, " ")
	if !strings.Contains(joined, "-ss 1.700") || !strings.Contains(joined, "-t 3.900") {
		t.Fatalf("unexpected slice args %q", joined)
	}
}

func TestReplaceAudioCopiesVideoStream(t *testing.T) {
	var calls []capturedCall
	p := NewProcessor("ffmpeg", "ffprobe").WithRunner(captureRunner(&calls, ""))

	if err := p.ReplaceAudio(context.Background(), "in.mp4", "mix.wav", "out.mp4"); err != nil {
		t.Fatalf("replace audio: %v", err)
	}
	joined := strings.Join(calls[0].args, " ")
	if !strings.Contains(joined, "-c:v copy") {
		t.Fatalf("expected stream copy, got %q", joined)
	}
}
