package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"redub/internal/logging"
	"redub/internal/queue"
	"redub/internal/services"
)

func (m *Manager) processProject(ctx context.Context, project *queue.Project) error {
	stg, ok := m.stageForStatus(project.Status)
	if !ok {
		m.logger.Warn("no stage configured for status", logging.String("status", string(project.Status)))
		m.waitForWorkOrShutdown(ctx)
		return nil
	}

	stageCtx := services.WithRequestID(
		services.WithStage(
			services.WithProjectID(ctx, project.ID),
			stg.name),
		uuid.NewString())
	stageLogger := logging.WithContext(stageCtx, m.logger)

	if err := m.transitionToProcessing(stageCtx, stg, project); err != nil {
		stageLogger.Error("failed to transition project to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, stg, project)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, project *queue.Project) error {
	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("title", project.Title),
		logging.String("source_file", project.SourcePath),
	)

	if err := stg.handler.Prepare(ctx, project); err != nil {
		m.handleStageFailure(ctx, stg.name, project, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, project); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	if execErr := stg.handler.Execute(ctx, project); execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, stg.name, project, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if project.Status == stg.processingStatus || project.Status == "" {
		project.Status = stg.doneStatus
	}
	if project.Status == queue.StatusCompleted {
		if project.ProgressPercent < 100 {
			project.ProgressPercent = 100
		}
		m.removeSynthesisArtifact(stageLogger, project)
	}
	if err := m.store.Update(ctx, project); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(project.Status)),
		logging.String("progress_message", project.ProgressMessage),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastProject(project)
	return nil
}

// removeSynthesisArtifact deletes the intermediate synthesized audio once the
// dubbed output exists. Failed projects keep the file so compose can be
// retried without a fresh synthesis pass.
func (m *Manager) removeSynthesisArtifact(logger *slog.Logger, project *queue.Project) {
	if project.SynthesisFile == "" {
		return
	}
	if err := os.Remove(project.SynthesisFile); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not remove synthesized audio",
			logging.String("path", project.SynthesisFile),
			logging.Error(err))
		return
	}
	project.SynthesisFile = ""
}

func (m *Manager) transitionToProcessing(ctx context.Context, stg pipelineStage, project *queue.Project) error {
	if stg.processingStatus == "" {
		return errors.New("processing status must not be empty")
	}
	project.Status = stg.processingStatus
	project.ErrorMessage = ""
	project.ProgressPercent = 0
	if project.ProgressStage == "" {
		project.ProgressStage = stg.name
	}
	if project.ProgressMessage == "" {
		project.ProgressMessage = fmt.Sprintf("%s started", stg.name)
	}
	if err := m.store.Update(ctx, project); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastProject(project)
	return nil
}
