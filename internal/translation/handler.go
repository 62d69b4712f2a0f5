package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"redub/internal/config"
	"redub/internal/logging"
	"redub/internal/queue"
	"redub/internal/services"
	"redub/internal/services/openai"
	"redub/internal/stage"
	"redub/internal/transcription"
)

// Handler runs the translation stage for queued projects.
type Handler struct {
	cfg        *config.Config
	store      *queue.Store
	translator *Translator
	client     *openai.Client
	logger     *slog.Logger
}

// NewHandler constructs the translation stage handler using default dependencies.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Handler {
	client := openai.NewClient(openai.Config{
		APIKey:         cfg.Translation.APIKey,
		BaseURL:        cfg.Translation.BaseURL,
		Model:          cfg.Translation.Model,
		TimeoutSeconds: cfg.Translation.TimeoutSeconds,
	})
	translator := NewTranslator(client, cfg.Translation.ChunkChars, logger)
	return NewHandlerWithDependencies(cfg, store, translator, client, logger)
}

// NewHandlerWithDependencies allows injecting collaborators (used in tests).
func NewHandlerWithDependencies(cfg *config.Config, store *queue.Store, translator *Translator, client *openai.Client, logger *slog.Logger) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "translation"))
	}
	return &Handler{cfg: cfg, store: store, translator: translator, client: client, logger: stageLogger}
}

func (h *Handler) Prepare(ctx context.Context, project *queue.Project) error {
	logger := logging.WithContext(ctx, h.logger)
	if project.TranscriptJSON == "" {
		return services.Wrap(
			services.ErrValidation, "translating", "validate inputs",
			"No transcript present; run transcription before translating", nil)
	}
	if project.TargetLanguage == "" {
		return services.Wrap(
			services.ErrValidation, "translating", "validate inputs",
			"No target language configured for project", nil)
	}
	project.SetProgress("Translating", "Preparing translation", 0)
	project.ErrorMessage = ""
	logger.Info("starting translation preparation",
		logging.String("language", project.TargetLanguage))
	return nil
}

func (h *Handler) Execute(ctx context.Context, project *queue.Project) error {
	logger := logging.WithContext(ctx, h.logger)

	segments, err := transcription.DecodeTranscript(project.TranscriptJSON)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "translating", "decode transcript",
			"Stored transcript is corrupt; rerun transcription", err)
	}

	translated, err := h.translator.Translate(ctx, segments, project.TargetLanguage)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool, "translating", "translate",
			"Translation service failed; check API key and model availability", err)
	}

	payload, err := json.Marshal(translated)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "translating", "encode translation",
			"Could not serialize translated segments", err)
	}

	project.TranslationJSON = string(payload)
	project.SetProgress("Translating", fmt.Sprintf("Translated %d segments", len(translated)), 100)
	logger.Info("translation complete", logging.Int("segments", len(translated)))
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if err := h.client.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("translation", err.Error())
	}
	return stage.Healthy("translation")
}
