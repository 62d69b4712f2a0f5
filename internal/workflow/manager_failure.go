package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"redub/internal/logging"
	"redub/internal/queue"
	"redub/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, project *queue.Project, stageErr error) {
	logger := logging.WithContext(ctx, m.logger)

	message := classifyStageFailure(stageName, stageErr)
	project.SetFailed(message)

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("resolved_status", string(queue.StatusFailed)),
		logging.String("error_message", message),
		logging.Bool("retryable", !services.IsFatalInput(stageErr)),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, project); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
	m.setLastProject(project)
}

func classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		if stageName == "" {
			return "workflow failed without error detail"
		}
		return fmt.Sprintf("%s failed without error detail", stageName)
	}
	if message := strings.TrimSpace(stageErr.Error()); message != "" {
		return message
	}
	return fmt.Sprintf("%s failed", stageName)
}
