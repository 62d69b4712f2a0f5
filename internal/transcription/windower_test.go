package transcription

import (
	"context"
	"os"
	"testing"

	"redub/internal/services/whisper"
)

type fakeExtractor struct {
	totalMs int64
	windows []extractedWindow
}

type extractedWindow struct {
	startSec    float64
	durationSec float64
}

func (f *fakeExtractor) DurationMs(ctx context.Context, path string) (int64, error) {
	return f.totalMs, nil
}

func (f *fakeExtractor) ExtractWindow(ctx context.Context, source string, startSec, durationSec float64, dest string) error {
	f.windows = append(f.windows, extractedWindow{startSec: startSec, durationSec: durationSec})
	return os.WriteFile(dest, []byte("RIFF-fake"), 0o644)
}

type fakeClient struct {
	results []whisper.Result
	calls   int
}

func (f *fakeClient) Transcribe(ctx context.Context, audio []byte) (whisper.Result, error) {
	result := f.results[f.calls]
	f.calls++
	return result, nil
}

func sourceFile(t *testing.T) string {
	t.Helper()
	path := t.TempDir() + "/source.mp4"
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestTranscribeRebasesWindowTimestamps(t *testing.T) {
	extractor := &fakeExtractor{totalMs: 90_000}
	client := &fakeClient{results: []whisper.Result{
		{Chunks: []whisper.Chunk{
			{Timestamp: [2]float64{0, 3.4}, Text: " first"},
			{Timestamp: [2]float64{3.4, 59.8}, Text: " second"},
		}},
		{Chunks: []whisper.Chunk{
			{Timestamp: [2]float64{0.5, 12.0}, Text: " third"},
		}},
	}}

	w := NewWindower(client, extractor, t.TempDir(), 60, 100, nil)
	segments, totalSeconds, err := w.Transcribe(context.Background(), sourceFile(t))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if totalSeconds != 90 {
		t.Fatalf("expected 90 seconds, got %d", totalSeconds)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	// Second window chunks shift by the 60s window offset.
	if segments[2].Original.Start != 60.5 || segments[2].Original.End != 72.0 {
		t.Fatalf("unexpected rebased range %v", segments[2].Original)
	}
	if segments[0].Original.Start != 0 || segments[1].Original.End != 59.8 {
		t.Fatalf("first window ranges must be unshifted: %v %v", segments[0].Original, segments[1].Original)
	}
}

func TestTranscribeSkipsShortTrailingWindow(t *testing.T) {
	// 60.05s source: the trailing 50ms window is below the minimum.
	extractor := &fakeExtractor{totalMs: 60_050}
	client := &fakeClient{results: []whisper.Result{
		{Chunks: []whisper.Chunk{{Timestamp: [2]float64{0, 10}, Text: "only"}}},
	}}

	w := NewWindower(client, extractor, t.TempDir(), 60, 100, nil)
	segments, _, err := w.Transcribe(context.Background(), sourceFile(t))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 endpoint call, got %d", client.calls)
	}
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if len(extractor.windows) != 1 {
		t.Fatalf("expected 1 extracted window, got %d", len(extractor.windows))
	}
}

func TestTranscribeKeepsTrailingWindowAtMinimum(t *testing.T) {
	// Exactly 100ms remaining: the window is kept.
	extractor := &fakeExtractor{totalMs: 60_100}
	client := &fakeClient{results: []whisper.Result{
		{Chunks: []whisper.Chunk{{Timestamp: [2]float64{0, 10}, Text: "main"}}},
		{Chunks: []whisper.Chunk{{Timestamp: [2]float64{0, 0.1}, Text: "tail"}}},
	}}

	w := NewWindower(client, extractor, t.TempDir(), 60, 100, nil)
	segments, _, err := w.Transcribe(context.Background(), sourceFile(t))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected 2 endpoint calls, got %d", client.calls)
	}
	if segments[1].Original.Start != 60.0 {
		t.Fatalf("expected trailing chunk rebased to 60s, got %v", segments[1].Original)
	}
}

func TestTranscribeMissingSource(t *testing.T) {
	w := NewWindower(&fakeClient{}, &fakeExtractor{}, t.TempDir(), 60, 100, nil)
	if _, _, err := w.Transcribe(context.Background(), "/does/not/exist.mp4"); err == nil {
		t.Fatal("expected error for missing source")
	}
}
