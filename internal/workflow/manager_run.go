package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"redub/internal/logging"
	"redub/internal/queue"
)

// Start begins background processing. Projects stranded in a processing
// status by an earlier crash are rolled back to their ready status first.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.statusOrder) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	if reset, err := m.store.ResetStuckProcessing(runCtx); err != nil {
		m.logger.Warn("reset stuck processing failed; stranded projects may remain", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("rolled back interrupted projects", logging.Int64("count", reset))
	}

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for the current stage to
// finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		project, err := m.store.NextForStatuses(ctx, m.statusOrder...)
		if err != nil {
			m.handleFetchError(ctx, err)
			continue
		}
		if project == nil {
			m.waitForWorkOrShutdown(ctx)
			continue
		}

		if err := m.processProject(ctx, project); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

// RunProject drives a single project through every remaining stage. Used by
// the one-shot dub command; the polling loop must not be running.
func (m *Manager) RunProject(ctx context.Context, projectID string) (*queue.Project, error) {
	for {
		project, err := m.store.GetByID(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, fmt.Errorf("project %s not found", projectID)
		}
		switch project.Status {
		case queue.StatusCompleted:
			return project, nil
		case queue.StatusFailed:
			return project, fmt.Errorf("project failed: %s", project.ErrorMessage)
		}
		if _, ok := m.stageForStatus(project.Status); !ok {
			return project, fmt.Errorf("no stage configured for status %s", project.Status)
		}
		if err := m.processProject(ctx, project); err != nil {
			return project, err
		}
	}
}

func (m *Manager) handleFetchError(ctx context.Context, err error) {
	m.setLastError(err)
	m.logger.Error("failed to fetch next queue project", logging.Error(err))
	retry := time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second
	if retry <= 0 {
		retry = m.pollInterval
	}
	select {
	case <-ctx.Done():
	case <-time.After(retry):
	}
}

func (m *Manager) waitForWorkOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}
