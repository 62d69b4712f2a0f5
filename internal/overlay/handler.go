package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"redub/internal/config"
	"redub/internal/deps"
	"redub/internal/logging"
	"redub/internal/media"
	"redub/internal/queue"
	"redub/internal/services"
	"redub/internal/stage"
	"redub/internal/synthesis"
)

// Handler runs the compose stage for queued projects.
type Handler struct {
	cfg        *config.Config
	store      *queue.Store
	compositor *Compositor
	logger     *slog.Logger
}

// NewHandler constructs the compose stage handler using default dependencies.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Handler {
	processor := media.NewProcessor(cfg.FFmpegBinary(), cfg.FFprobeBinary())
	compositor := NewCompositor(processor, cfg.Paths.WorkDir, Options{
		MuteOriginal:       cfg.Overlay.MuteOriginal,
		VolumeReductionDB:  cfg.Overlay.VolumeReductionDB,
		StretchToleranceMs: int64(cfg.Overlay.StretchToleranceMs),
	}, logger)
	return NewHandlerWithDependencies(cfg, store, compositor, logger)
}

// NewHandlerWithDependencies allows injecting collaborators (used in tests).
func NewHandlerWithDependencies(cfg *config.Config, store *queue.Store, compositor *Compositor, logger *slog.Logger) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "overlay"))
	}
	return &Handler{cfg: cfg, store: store, compositor: compositor, logger: stageLogger}
}

func (h *Handler) Prepare(ctx context.Context, project *queue.Project) error {
	logger := logging.WithContext(ctx, h.logger)
	if project.AlignmentJSON == "" {
		return services.Wrap(
			services.ErrValidation, "composing", "validate inputs",
			"No aligned segments present; run synthesis before composing", nil)
	}
	if project.SynthesisFile == "" {
		return services.Wrap(
			services.ErrValidation, "composing", "validate inputs",
			"No synthesized audio present; run synthesis before composing", nil)
	}
	if _, err := os.Stat(project.SourcePath); err != nil {
		return services.Wrap(
			services.ErrValidation, "composing", "validate inputs",
			fmt.Sprintf("Source video %s is missing", project.SourcePath), err)
	}
	if _, err := os.Stat(project.SynthesisFile); err != nil {
		return services.Wrap(
			services.ErrValidation, "composing", "validate inputs",
			fmt.Sprintf("Synthesized audio %s is missing", project.SynthesisFile), err)
	}
	if err := ValidateExtensions(project.SourcePath, project.SynthesisFile); err != nil {
		return services.Wrap(
			services.ErrValidation, "composing", "validate inputs",
			"Source or audio container format is not supported", err)
	}
	project.SetProgress("Composing", "Preparing overlay", 0)
	project.ErrorMessage = ""
	logger.Info("starting compose preparation",
		logging.String("video", project.SourcePath),
		logging.String("audio", project.SynthesisFile))
	return nil
}

func (h *Handler) Execute(ctx context.Context, project *queue.Project) error {
	logger := logging.WithContext(ctx, h.logger)

	aligned, err := synthesis.DecodeAlignment(project.AlignmentJSON)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "composing", "decode alignment",
			"Stored alignment is corrupt; rerun synthesis", err)
	}

	output, err := h.compositor.Compose(ctx, project.SourcePath, project.SynthesisFile, aligned)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool, "composing", "compose",
			"Overlay composition failed; check ffmpeg availability and disk space", err)
	}

	project.OutputPath = output
	project.SetProgress("Composing", fmt.Sprintf("Wrote %s", output), 100)
	logger.Info("compose complete", logging.String("output", output))
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if missing, ok := deps.FirstMissing(deps.CheckBinaries(deps.Requirements())); ok {
		return stage.Unhealthy("overlay", missing.Detail)
	}
	return stage.Healthy("overlay")
}
