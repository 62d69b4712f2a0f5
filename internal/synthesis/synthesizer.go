package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"redub/internal/logging"
	"redub/internal/services/azuretts"
	"redub/internal/services/elevenlabs"
	"redub/internal/timeline"
)

// TextSynthesizer renders plain text with inline break tags (ElevenLabs).
type TextSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// SSMLSynthesizer renders a full SSML document (Azure).
type SSMLSynthesizer interface {
	Synthesize(ctx context.Context, ssml string) ([]byte, error)
}

// Synthesizer dispatches rendering to the provider a catalog voice belongs
// to. Every segment is followed by a fixed pause long enough for the silence
// detector to find the boundary afterwards.
type Synthesizer struct {
	catalog    *Catalog
	elevenLabs TextSynthesizer
	azure      SSMLSynthesizer
	pauseMs    int
	logger     *slog.Logger
}

// NewSynthesizer constructs the provider-dispatching synthesizer.
func NewSynthesizer(catalog *Catalog, eleven TextSynthesizer, azure SSMLSynthesizer, pauseMs int, logger *slog.Logger) *Synthesizer {
	if pauseMs <= 0 {
		pauseMs = 3000
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Synthesizer{
		catalog:    catalog,
		elevenLabs: eleven,
		azure:      azure,
		pauseMs:    pauseMs,
		logger:     logger.With(logging.String(logging.FieldComponent, "synthesis")),
	}
}

// Synthesize renders the translated segments with the given catalog voice and
// returns the audio bytes.
func (s *Synthesizer) Synthesize(ctx context.Context, segments []timeline.TextSegment, voiceID int) ([]byte, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("synthesize: no segments")
	}
	voice, err := s.catalog.Lookup(voiceID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("synthesizing speech",
		logging.Int("segments", len(segments)),
		logging.Int("voice_id", voice.VoiceID),
		logging.String("provider", string(voice.Provider)))

	texts := timeline.Texts(segments)
	switch voice.Provider {
	case ProviderElevenLabs:
		if s.elevenLabs == nil {
			return nil, fmt.Errorf("synthesize: elevenlabs provider not configured")
		}
		return s.elevenLabs.Synthesize(ctx, joinWithPauses(texts, s.pauseMs), voice.OriginalID)
	case ProviderAzure:
		if s.azure == nil {
			return nil, fmt.Errorf("synthesize: azure provider not configured")
		}
		language := ""
		if len(voice.Languages) > 0 {
			language = voice.Languages[0]
		}
		ssml := azuretts.BuildSSML(texts, voice.OriginalID, language, s.pauseMs)
		return s.azure.Synthesize(ctx, ssml)
	default:
		return nil, fmt.Errorf("synthesize: unknown provider %q for voice %d", voice.Provider, voiceID)
	}
}

func joinWithPauses(texts []string, pauseMs int) string {
	pause := elevenlabs.PauseTag(pauseMs)
	var b strings.Builder
	for _, text := range texts {
		b.WriteString(text)
		b.WriteString(pause)
	}
	return b.String()
}
