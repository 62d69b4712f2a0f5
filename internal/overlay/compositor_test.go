package overlay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"redub/internal/timeline"
)

type opRecord struct {
	name     string
	position int64
	ratio    float64
	windows  int
}

type fakeProcessor struct {
	ops        []opRecord
	durationMs int64
}

func (f *fakeProcessor) DurationMs(ctx context.Context, path string) (int64, error) {
	f.ops = append(f.ops, opRecord{name: "duration"})
	return f.durationMs, nil
}

func (f *fakeProcessor) ExtractAudioTrack(ctx context.Context, source, dest string) error {
	f.ops = append(f.ops, opRecord{name: "extract"})
	return os.WriteFile(dest, []byte("wav"), 0o644)
}

func (f *fakeProcessor) SilentTrack(ctx context.Context, durationMs int64, dest string) error {
	f.ops = append(f.ops, opRecord{name: "silent", position: durationMs})
	return os.WriteFile(dest, []byte("wav"), 0o644)
}

func (f *fakeProcessor) AttenuateWindows(ctx context.Context, source string, windows []timeline.TimeRange, db float64, dest string) error {
	f.ops = append(f.ops, opRecord{name: "attenuate", ratio: db, windows: len(windows)})
	return os.WriteFile(dest, []byte("wav"), 0o644)
}

func (f *fakeProcessor) SliceAudio(ctx context.Context, source string, span timeline.AudioSpan, dest string) error {
	f.ops = append(f.ops, opRecord{name: "slice", position: span.Start})
	return os.WriteFile(dest, []byte("wav"), 0o644)
}

func (f *fakeProcessor) TimeStretch(ctx context.Context, source, dest string, ratio float64) error {
	f.ops = append(f.ops, opRecord{name: "stretch", ratio: ratio})
	return os.WriteFile(dest, []byte("wav"), 0o644)
}

func (f *fakeProcessor) OverlayAt(ctx context.Context, base, insert string, positionMs int64, dest string) error {
	f.ops = append(f.ops, opRecord{name: "overlay", position: positionMs})
	return os.WriteFile(dest, []byte("wav"), 0o644)
}

func (f *fakeProcessor) ReplaceAudio(ctx context.Context, video, audio, dest string) error {
	f.ops = append(f.ops, opRecord{name: "mux"})
	return nil
}

func (f *fakeProcessor) names() []string {
	names := make([]string, len(f.ops))
	for i, op := range f.ops {
		names[i] = op.name
	}
	return names
}

func (f *fakeProcessor) find(name string) []opRecord {
	var out []opRecord
	for _, op := range f.ops {
		if op.name == name {
			out = append(out, op)
		}
	}
	return out
}

func writeComposeInputs(t *testing.T) (videoPath, audioPath string) {
	t.Helper()
	dir := t.TempDir()
	videoPath = filepath.Join(dir, "talk.mp4")
	audioPath = filepath.Join(dir, "talk.mp3")
	if err := os.WriteFile(videoPath, []byte("video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	if err := os.WriteFile(audioPath, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return videoPath, audioPath
}

func testAligned() []timeline.AlignedSegment {
	return []timeline.AlignedSegment{
		alignedSegment(0, 2, 0, 2400),
		// 1500ms overrun forces compression.
		alignedSegment(2, 5, 1700, 6200),
	}
}

func TestComposeDucksOriginalAndAnchorsSegments(t *testing.T) {
	proc := &fakeProcessor{}
	c := NewCompositor(proc, t.TempDir(), Options{VolumeReductionDB: 15, StretchToleranceMs: 500}, nil)
	videoPath, audioPath := writeComposeInputs(t)

	output, err := c.Compose(context.Background(), videoPath, audioPath, testAligned())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if output != filepath.Join(filepath.Dir(videoPath), "talk-dubbed.mp4") {
		t.Fatalf("unexpected output %q", output)
	}

	attenuations := proc.find("attenuate")
	if len(attenuations) != 1 || attenuations[0].windows != 2 || attenuations[0].ratio != 15 {
		t.Fatalf("expected one 15dB attenuation over 2 windows, got %+v", attenuations)
	}

	overlays := proc.find("overlay")
	if len(overlays) != 2 {
		t.Fatalf("expected 2 overlays, got %d", len(overlays))
	}
	if overlays[0].position != 0 || overlays[1].position != 2000 {
		t.Fatalf("segments must anchor at window starts, got %+v", overlays)
	}

	stretches := proc.find("stretch")
	if len(stretches) != 1 {
		t.Fatalf("expected exactly one stretch, got %d", len(stretches))
	}
	want := 3000.0 / 4500.0
	if diff := stretches[0].ratio - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected ratio %v, got %v", want, stretches[0].ratio)
	}

	if muxes := proc.find("mux"); len(muxes) != 1 {
		t.Fatalf("expected final mux, got ops %v", proc.names())
	}
	if silents := proc.find("silent"); len(silents) != 0 {
		t.Fatalf("ducking mode must not build a silent track")
	}
}

func TestComposeMutesOriginalWhenConfigured(t *testing.T) {
	proc := &fakeProcessor{durationMs: 30000}
	c := NewCompositor(proc, t.TempDir(), Options{MuteOriginal: true, StretchToleranceMs: 500}, nil)
	videoPath, audioPath := writeComposeInputs(t)

	if _, err := c.Compose(context.Background(), videoPath, audioPath, testAligned()); err != nil {
		t.Fatalf("compose: %v", err)
	}
	silents := proc.find("silent")
	if len(silents) != 1 || silents[0].position != 30000 {
		t.Fatalf("expected silent base of video length, got %+v", silents)
	}
	if extracts := proc.find("extract"); len(extracts) != 0 {
		t.Fatalf("mute mode must not extract the original track")
	}
}

func TestComposeRejectsBadContainers(t *testing.T) {
	c := NewCompositor(&fakeProcessor{}, t.TempDir(), Options{}, nil)
	if _, err := c.Compose(context.Background(), "/media/talk.mkv", "/work/talk.mp3", testAligned()); err == nil {
		t.Fatal("expected error for mkv video")
	}
	if _, err := c.Compose(context.Background(), "/media/talk.mp4", "/work/talk.ogg", testAligned()); err == nil {
		t.Fatal("expected error for ogg audio")
	}
}

func TestComposeRequiresExistingInputs(t *testing.T) {
	proc := &fakeProcessor{}
	c := NewCompositor(proc, t.TempDir(), Options{StretchToleranceMs: 500}, nil)
	videoPath, audioPath := writeComposeInputs(t)

	if _, err := c.Compose(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"), audioPath, testAligned()); err == nil {
		t.Fatal("expected error for missing video")
	}
	if _, err := c.Compose(context.Background(), videoPath, filepath.Join(t.TempDir(), "gone.mp3"), testAligned()); err == nil {
		t.Fatal("expected error for missing audio")
	}
	if len(proc.ops) != 0 {
		t.Fatalf("missing inputs must fail before any processing, got %v", proc.names())
	}
}

func TestComposeCleansUpTempFiles(t *testing.T) {
	workDir := t.TempDir()
	proc := &fakeProcessor{}
	c := NewCompositor(proc, workDir, Options{StretchToleranceMs: 500}, nil)
	videoPath, audioPath := writeComposeInputs(t)

	if _, err := c.Compose(context.Background(), videoPath, audioPath, testAligned()); err != nil {
		t.Fatalf("compose: %v", err)
	}
	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	for _, entry := range entries {
		t.Fatalf("leftover temp entry %s", filepath.Join(workDir, entry.Name()))
	}
}
