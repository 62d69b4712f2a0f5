package workflow

import (
	"log/slog"
	"sync"
	"time"

	"redub/internal/config"
	"redub/internal/logging"
	"redub/internal/queue"
	"redub/internal/stage"
)

// StageSet bundles the concrete stage handlers the manager orchestrates.
type StageSet struct {
	Transcriber stage.Handler
	Translator  stage.Handler
	Synthesizer stage.Handler
	Compositor  stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration

	stages       []pipelineStage
	stageByStart map[queue.Status]pipelineStage
	statusOrder  []queue.Status

	mu          sync.RWMutex
	running     bool
	cancel      func()
	wg          sync.WaitGroup
	lastErr     error
	lastProject *queue.Project
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	pollInterval := time.Duration(cfg.Workflow.QueuePollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow-manager"),
		pollInterval: pollInterval,
		stageByStart: make(map[queue.Status]pipelineStage),
	}
}

// ConfigureStages registers the concrete stage handlers the workflow will run.
// Projects flow pending -> transcribed -> translated -> synthesized -> completed.
func (m *Manager) ConfigureStages(set StageSet) {
	stages := make([]pipelineStage, 0, 4)
	if set.Transcriber != nil {
		stages = append(stages, pipelineStage{
			name:             "transcriber",
			handler:          set.Transcriber,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusTranscribing,
			doneStatus:       queue.StatusTranscribed,
		})
	}
	if set.Translator != nil {
		stages = append(stages, pipelineStage{
			name:             "translator",
			handler:          set.Translator,
			startStatus:      queue.StatusTranscribed,
			processingStatus: queue.StatusTranslating,
			doneStatus:       queue.StatusTranslated,
		})
	}
	if set.Synthesizer != nil {
		stages = append(stages, pipelineStage{
			name:             "synthesizer",
			handler:          set.Synthesizer,
			startStatus:      queue.StatusTranslated,
			processingStatus: queue.StatusSynthesizing,
			doneStatus:       queue.StatusSynthesized,
		})
	}
	if set.Compositor != nil {
		stages = append(stages, pipelineStage{
			name:             "compositor",
			handler:          set.Compositor,
			startStatus:      queue.StatusSynthesized,
			processingStatus: queue.StatusComposing,
			doneStatus:       queue.StatusCompleted,
		})
	}

	stageByStart := make(map[queue.Status]pipelineStage, len(stages))
	statusOrder := make([]queue.Status, 0, len(stages))
	for _, stg := range stages {
		stageByStart[stg.startStatus] = stg
		statusOrder = append(statusOrder, stg.startStatus)
	}

	m.mu.Lock()
	m.stages = stages
	m.stageByStart = stageByStart
	m.statusOrder = statusOrder
	m.mu.Unlock()
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}
