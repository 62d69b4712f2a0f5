package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"redub/internal/config"
	"redub/internal/deps"
	"redub/internal/logging"
	"redub/internal/media"
	"redub/internal/queue"
	"redub/internal/services"
	"redub/internal/services/whisper"
	"redub/internal/stage"
	"redub/internal/timeline"
)

// Handler runs the transcription stage for queued projects.
type Handler struct {
	cfg      *config.Config
	store    *queue.Store
	windower *Windower
	client   *whisper.Client
	logger   *slog.Logger
}

// NewHandler constructs the transcription stage handler using default dependencies.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Handler {
	client := whisper.NewClient(whisper.Config{
		EndpointURL: cfg.Transcription.EndpointURL,
		BearerToken: cfg.Transcription.BearerToken,
	})
	processor := media.NewProcessor(cfg.FFmpegBinary(), cfg.FFprobeBinary())
	windower := NewWindower(client, processor, cfg.Paths.WorkDir,
		cfg.Transcription.WindowSeconds, cfg.Transcription.MinWindowMs, logger)
	return NewHandlerWithDependencies(cfg, store, windower, client, logger)
}

// NewHandlerWithDependencies allows injecting collaborators (used in tests).
func NewHandlerWithDependencies(cfg *config.Config, store *queue.Store, windower *Windower, client *whisper.Client, logger *slog.Logger) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "transcription"))
	}
	return &Handler{cfg: cfg, store: store, windower: windower, client: client, logger: stageLogger}
}

func (h *Handler) Prepare(ctx context.Context, project *queue.Project) error {
	logger := logging.WithContext(ctx, h.logger)
	if _, err := os.Stat(project.SourcePath); err != nil {
		return services.Wrap(
			services.ErrValidation, "transcribing", "validate inputs",
			fmt.Sprintf("Source file %s is missing or unreadable", project.SourcePath), err)
	}
	project.SetProgress("Transcribing", "Preparing transcription", 0)
	project.ErrorMessage = ""
	logger.Info("starting transcription preparation",
		logging.String("source", project.SourcePath))
	return nil
}

func (h *Handler) Execute(ctx context.Context, project *queue.Project) error {
	logger := logging.WithContext(ctx, h.logger)
	logger.Info("starting transcription", logging.String("source", project.SourcePath))

	segments, totalSeconds, err := h.windower.Transcribe(ctx, project.SourcePath)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool, "transcribing", "transcribe",
			"Transcription endpoint failed; check endpoint availability and bearer token", err)
	}
	if len(segments) == 0 {
		return services.Wrap(
			services.ErrValidation, "transcribing", "transcribe",
			"No speech detected in source audio", nil)
	}

	payload, err := json.Marshal(segments)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "transcribing", "encode transcript",
			"Could not serialize transcript segments", err)
	}

	project.TranscriptJSON = string(payload)
	project.UsageSeconds = float64(totalSeconds)
	project.SetProgress("Transcribing", fmt.Sprintf("Transcribed %d segments", len(segments)), 100)
	logger.Info("transcription complete",
		logging.Int("segments", len(segments)),
		logging.Int64("source_seconds", totalSeconds))
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if missing, ok := deps.FirstMissing(deps.CheckBinaries(deps.Requirements())); ok {
		return stage.Unhealthy("transcription", missing.Detail)
	}
	if err := h.client.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("transcription", err.Error())
	}
	return stage.Healthy("transcription")
}

// DecodeTranscript parses the stored transcript payload back into segments.
func DecodeTranscript(payload string) ([]timeline.TextSegment, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty transcript payload")
	}
	var segments []timeline.TextSegment
	if err := json.Unmarshal([]byte(payload), &segments); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return segments, nil
}
