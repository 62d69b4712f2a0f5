package synthesis

import (
	"context"
	"strings"
	"testing"

	"redub/internal/timeline"
)

type fakeTextSynthesizer struct {
	text    string
	voiceID string
}

func (f *fakeTextSynthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	f.text = text
	f.voiceID = voiceID
	return []byte("mp3"), nil
}

type fakeSSMLSynthesizer struct {
	ssml string
}

func (f *fakeSSMLSynthesizer) Synthesize(ctx context.Context, ssml string) ([]byte, error) {
	f.ssml = ssml
	return []byte("mp3"), nil
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return catalog
}

func translatedSegments(texts ...string) []timeline.TextSegment {
	segments := make([]timeline.TextSegment, len(texts))
	for i, text := range texts {
		segments[i] = timeline.TextSegment{
			Original: timeline.TimeRange{Start: float64(i), End: float64(i + 1)},
			Text:     text,
		}
	}
	return segments
}

func TestSynthesizeDispatchesToElevenLabs(t *testing.T) {
	eleven := &fakeTextSynthesizer{}
	s := NewSynthesizer(testCatalog(t), eleven, &fakeSSMLSynthesizer{}, 3000, nil)

	audio, err := s.Synthesize(context.Background(), translatedSegments("Привет.", "Мир."), 559)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "mp3" {
		t.Fatalf("unexpected audio %q", audio)
	}
	if eleven.voiceID != "N2lVS1w4EtoT3dr4eOWO" {
		t.Fatalf("expected provider voice id, got %q", eleven.voiceID)
	}
	if got := strings.Count(eleven.text, `<break time="3s"/>`); got != 2 {
		t.Fatalf("expected a pause after each segment, got %d in %q", got, eleven.text)
	}
}

func TestSynthesizeDispatchesToAzure(t *testing.T) {
	azure := &fakeSSMLSynthesizer{}
	s := NewSynthesizer(testCatalog(t), &fakeTextSynthesizer{}, azure, 3000, nil)

	if _, err := s.Synthesize(context.Background(), translatedSegments("Привет."), 165); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if !strings.Contains(azure.ssml, `<voice name="ru-RU-DmitryNeural">`) {
		t.Fatalf("expected azure voice in ssml, got %q", azure.ssml)
	}
	if !strings.Contains(azure.ssml, `xml:lang="ru-RU"`) {
		t.Fatalf("expected catalog language in ssml, got %q", azure.ssml)
	}
	if got := strings.Count(azure.ssml, `<break time="3000ms"/>`); got != 2 {
		t.Fatalf("expected leading break plus one per segment, got %d", got)
	}
}

func TestSynthesizeUnknownVoice(t *testing.T) {
	s := NewSynthesizer(testCatalog(t), &fakeTextSynthesizer{}, &fakeSSMLSynthesizer{}, 3000, nil)
	if _, err := s.Synthesize(context.Background(), translatedSegments("hi"), 42); err == nil {
		t.Fatal("expected error for unknown voice")
	}
}

func TestSynthesizeNoSegments(t *testing.T) {
	s := NewSynthesizer(testCatalog(t), &fakeTextSynthesizer{}, &fakeSSMLSynthesizer{}, 3000, nil)
	if _, err := s.Synthesize(context.Background(), nil, 559); err == nil {
		t.Fatal("expected error for empty segments")
	}
}
