package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"redub/internal/config"
	"redub/internal/logging"
	"redub/internal/media"
	"redub/internal/queue"
	"redub/internal/services"
	"redub/internal/services/azuretts"
	"redub/internal/services/elevenlabs"
	"redub/internal/stage"
	"redub/internal/timeline"
	"redub/internal/transcription"
)

// SpeechDetector locates the non-silent spans of an audio file.
type SpeechDetector interface {
	DetectSpeech(ctx context.Context, path string, minSilenceMs int, thresholdDB float64) ([]timeline.AudioSpan, int64, error)
}

var _ SpeechDetector = (*media.Processor)(nil)

// Handler runs the synthesis stage for queued projects.
type Handler struct {
	cfg         *config.Config
	store       *queue.Store
	catalog     *Catalog
	synthesizer *Synthesizer
	detector    SpeechDetector
	logger      *slog.Logger
}

// NewHandler constructs the synthesis stage handler using default dependencies.
func NewHandler(cfg *config.Config, store *queue.Store, catalog *Catalog, logger *slog.Logger) *Handler {
	elevenClient := elevenlabs.NewClient(elevenlabs.Config{
		APIKey: cfg.Synthesis.ElevenLabsAPIKey,
		Model:  cfg.Synthesis.ElevenLabsModel,
	})
	azureClient := azuretts.NewClient(azuretts.Config{
		APIKey: cfg.Synthesis.AzureAPIKey,
		Region: cfg.Synthesis.AzureRegion,
	})
	synthesizer := NewSynthesizer(catalog, elevenClient, azureClient, cfg.Synthesis.PauseMs, logger)
	detector := media.NewProcessor(cfg.FFmpegBinary(), cfg.FFprobeBinary())
	return NewHandlerWithDependencies(cfg, store, catalog, synthesizer, detector, logger)
}

// NewHandlerWithDependencies allows injecting collaborators (used in tests).
func NewHandlerWithDependencies(cfg *config.Config, store *queue.Store, catalog *Catalog, synthesizer *Synthesizer, detector SpeechDetector, logger *slog.Logger) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "synthesis"))
	}
	return &Handler{
		cfg:         cfg,
		store:       store,
		catalog:     catalog,
		synthesizer: synthesizer,
		detector:    detector,
		logger:      stageLogger,
	}
}

func (h *Handler) Prepare(ctx context.Context, project *queue.Project) error {
	logger := logging.WithContext(ctx, h.logger)
	if project.TranslationJSON == "" {
		return services.Wrap(
			services.ErrValidation, "synthesizing", "validate inputs",
			"No translation present; run translation before synthesis", nil)
	}
	if _, err := h.catalog.Lookup(project.VoiceID); err != nil {
		return services.Wrap(
			services.ErrValidation, "synthesizing", "validate inputs",
			fmt.Sprintf("Voice %d is not in the catalog", project.VoiceID), err)
	}
	project.SetProgress("Synthesizing", "Preparing speech synthesis", 0)
	project.ErrorMessage = ""
	logger.Info("starting synthesis preparation", logging.Int("voice_id", project.VoiceID))
	return nil
}

func (h *Handler) Execute(ctx context.Context, project *queue.Project) error {
	logger := logging.WithContext(ctx, h.logger)

	segments, err := transcription.DecodeTranscript(project.TranslationJSON)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "synthesizing", "decode translation",
			"Stored translation is corrupt; rerun translation", err)
	}

	audio, err := h.synthesizer.Synthesize(ctx, segments, project.VoiceID)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool, "synthesizing", "synthesize",
			"Speech synthesis failed; check provider credentials and quota", err)
	}

	audioPath := filepath.Join(h.cfg.Paths.WorkDir, project.ID+"-translated.mp3")
	if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
		return services.Wrap(
			services.ErrExternalTool, "synthesizing", "write audio",
			"Could not write synthesized audio to the work directory", err)
	}
	project.SynthesisFile = audioPath
	project.SetProgress("Synthesizing", "Mapping synthesized audio onto segments", 50)

	spans, totalMs, err := h.detector.DetectSpeech(ctx, audioPath,
		h.cfg.Synthesis.MinSilenceMs, h.cfg.Synthesis.SilenceThresholdB)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool, "synthesizing", "detect speech",
			"Silence detection on synthesized audio failed", err)
	}

	aligned := MapAudioTimestamps(segments, spans, int64(h.cfg.Synthesis.PaddingMs), totalMs, logger)
	if len(aligned) == 0 {
		return services.Wrap(
			services.ErrValidation, "synthesizing", "map timestamps",
			"No speech spans detected in synthesized audio", nil)
	}

	payload, err := json.Marshal(aligned)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "synthesizing", "encode alignment",
			"Could not serialize aligned segments", err)
	}
	project.AlignmentJSON = string(payload)
	project.SetProgress("Synthesizing", fmt.Sprintf("Aligned %d segments", len(aligned)), 100)
	logger.Info("synthesis complete",
		logging.Int("aligned_segments", len(aligned)),
		logging.Int64("audio_ms", totalMs))
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if h.catalog == nil || h.catalog.Len() == 0 {
		return stage.Unhealthy("synthesis", "voice catalog is empty")
	}
	return stage.Healthy("synthesis")
}

// DecodeAlignment parses the stored alignment payload back into segments.
func DecodeAlignment(payload string) ([]timeline.AlignedSegment, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty alignment payload")
	}
	var aligned []timeline.AlignedSegment
	if err := json.Unmarshal([]byte(payload), &aligned); err != nil {
		return nil, fmt.Errorf("decode alignment: %w", err)
	}
	return aligned, nil
}
