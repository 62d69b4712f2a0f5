package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"redub/internal/logging"
	"redub/internal/queue"
	"redub/internal/services"
	"redub/internal/stage"
	"redub/internal/testsupport"
	"redub/internal/workflow"
)

type stubHandler struct {
	name       string
	log        *callLog
	prepareErr error
	executeErr error
	onExecute  func(project *queue.Project)
}

func (h *stubHandler) Prepare(ctx context.Context, project *queue.Project) error {
	h.log.record(h.name + ":prepare")
	return h.prepareErr
}

func (h *stubHandler) Execute(ctx context.Context, project *queue.Project) error {
	h.log.record(h.name + ":execute")
	if h.onExecute != nil {
		h.onExecute(project)
	}
	return h.executeErr
}

func (h *stubHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(h.name)
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) record(call string) {
	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func newTestManager(t *testing.T, set workflow.StageSet) (*workflow.Manager, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := workflow.NewManager(cfg, store, logging.NewNop())
	manager.ConfigureStages(set)
	return manager, store
}

func fullStageSet(log *callLog) workflow.StageSet {
	return workflow.StageSet{
		Transcriber: &stubHandler{name: "transcriber", log: log},
		Translator:  &stubHandler{name: "translator", log: log},
		Synthesizer: &stubHandler{name: "synthesizer", log: log},
		Compositor:  &stubHandler{name: "compositor", log: log},
	}
}

func TestRunProjectAdvancesThroughAllStages(t *testing.T) {
	log := &callLog{}
	set := fullStageSet(log)
	set.Compositor.(*stubHandler).onExecute = func(project *queue.Project) {
		project.OutputPath = "/media/talk-dubbed.mp4"
	}
	manager, store := newTestManager(t, set)
	ctx := context.Background()

	project, err := store.NewProject(ctx, "/media/talk.mp4", "uk", 1)
	if err != nil {
		t.Fatalf("new project: %v", err)
	}

	finished, err := manager.RunProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("run project: %v", err)
	}
	if finished.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", finished.Status)
	}
	if finished.OutputPath != "/media/talk-dubbed.mp4" {
		t.Fatalf("expected output path persisted, got %q", finished.OutputPath)
	}

	want := []string{
		"transcriber:prepare", "transcriber:execute",
		"translator:prepare", "translator:execute",
		"synthesizer:prepare", "synthesizer:execute",
		"compositor:prepare", "compositor:execute",
	}
	got := log.snapshot()
	if len(got) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRunProjectStopsOnStageFailure(t *testing.T) {
	log := &callLog{}
	set := fullStageSet(log)
	set.Translator.(*stubHandler).executeErr = services.Wrap(
		services.ErrValidation, "translating", "decode transcript", "Stored transcript is corrupt", nil)
	manager, store := newTestManager(t, set)
	ctx := context.Background()

	project, err := store.NewProject(ctx, "/media/talk.mp4", "uk", 1)
	if err != nil {
		t.Fatalf("new project: %v", err)
	}

	if _, err := manager.RunProject(ctx, project.ID); err == nil {
		t.Fatal("expected stage failure to surface")
	}

	stored, err := store.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if stored.Status != queue.StatusFailed {
		t.Fatalf("expected failed status, got %s", stored.Status)
	}
	if !strings.Contains(stored.ErrorMessage, "Stored transcript is corrupt") {
		t.Fatalf("expected stage error message, got %q", stored.ErrorMessage)
	}
	for _, call := range log.snapshot() {
		if strings.HasPrefix(call, "synthesizer") || strings.HasPrefix(call, "compositor") {
			t.Fatalf("later stages must not run after failure: %v", log.snapshot())
		}
	}
}

func TestRunProjectRemovesSynthesizedAudioOnCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, logging.NewNop())

	var audioPath string
	set := fullStageSet(&callLog{})
	set.Synthesizer.(*stubHandler).onExecute = func(project *queue.Project) {
		audioPath = filepath.Join(cfg.Paths.WorkDir, project.ID+"-translated.mp3")
		if err := os.WriteFile(audioPath, []byte("mp3"), 0o644); err != nil {
			t.Errorf("write audio: %v", err)
		}
		project.SynthesisFile = audioPath
	}
	manager.ConfigureStages(set)
	ctx := context.Background()

	project, err := store.NewProject(ctx, "/media/talk.mp4", "uk", 1)
	if err != nil {
		t.Fatalf("new project: %v", err)
	}
	finished, err := manager.RunProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("run project: %v", err)
	}
	if finished.SynthesisFile != "" {
		t.Fatalf("completed project must not reference synthesized audio, got %q", finished.SynthesisFile)
	}
	if _, err := os.Stat(audioPath); !os.IsNotExist(err) {
		t.Fatalf("synthesized audio must be removed after completion, stat err %v", err)
	}
}

func TestRunProjectKeepsSynthesizedAudioOnComposeFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, logging.NewNop())

	var audioPath string
	set := fullStageSet(&callLog{})
	set.Synthesizer.(*stubHandler).onExecute = func(project *queue.Project) {
		audioPath = filepath.Join(cfg.Paths.WorkDir, project.ID+"-translated.mp3")
		if err := os.WriteFile(audioPath, []byte("mp3"), 0o644); err != nil {
			t.Errorf("write audio: %v", err)
		}
		project.SynthesisFile = audioPath
	}
	set.Compositor.(*stubHandler).executeErr = services.Wrap(
		services.ErrExternalTool, "composing", "compose", "Overlay composition failed", nil)
	manager.ConfigureStages(set)
	ctx := context.Background()

	project, err := store.NewProject(ctx, "/media/talk.mp4", "uk", 1)
	if err != nil {
		t.Fatalf("new project: %v", err)
	}
	if _, err := manager.RunProject(ctx, project.ID); err == nil {
		t.Fatal("expected compose failure to surface")
	}

	stored, err := store.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if stored.SynthesisFile != audioPath {
		t.Fatalf("failed project must keep its synthesized audio, got %q", stored.SynthesisFile)
	}
	if _, err := os.Stat(audioPath); err != nil {
		t.Fatalf("synthesized audio must survive a compose failure: %v", err)
	}
}

func TestRunProjectRejectsFailedProject(t *testing.T) {
	manager, store := newTestManager(t, fullStageSet(&callLog{}))
	ctx := context.Background()

	project, err := store.NewProject(ctx, "/media/talk.mp4", "uk", 1)
	if err != nil {
		t.Fatalf("new project: %v", err)
	}
	project.SetFailed("transcription endpoint unreachable")
	if err := store.Update(ctx, project); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := manager.RunProject(ctx, project.ID); err == nil {
		t.Fatal("expected error for failed project")
	}
}

func TestStartProcessesQueueUntilDrained(t *testing.T) {
	log := &callLog{}
	manager, store := newTestManager(t, fullStageSet(log))
	ctx := context.Background()

	project, err := store.NewProject(ctx, "/media/talk.mp4", "uk", 1)
	if err != nil {
		t.Fatalf("new project: %v", err)
	}

	if err := manager.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()

	deadline := time.Now().Add(10 * time.Second)
	for {
		stored, err := store.GetByID(ctx, project.ID)
		if err != nil {
			t.Fatalf("get project: %v", err)
		}
		if stored.Status == queue.StatusCompleted {
			break
		}
		if stored.Status == queue.StatusFailed {
			t.Fatalf("project failed: %s", stored.ErrorMessage)
		}
		if time.Now().After(deadline) {
			t.Fatalf("project stuck in %s", stored.Status)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestStartRollsBackInterruptedProjects(t *testing.T) {
	log := &callLog{}
	manager, store := newTestManager(t, fullStageSet(log))
	ctx := context.Background()

	project, err := store.NewProject(ctx, "/media/talk.mp4", "uk", 1)
	if err != nil {
		t.Fatalf("new project: %v", err)
	}
	// Simulate a crash mid-synthesis.
	project.Status = queue.StatusSynthesizing
	if err := store.Update(ctx, project); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := manager.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()

	deadline := time.Now().Add(10 * time.Second)
	for {
		stored, err := store.GetByID(ctx, project.ID)
		if err != nil {
			t.Fatalf("get project: %v", err)
		}
		if stored.Status == queue.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("project stuck in %s", stored.Status)
		}
		time.Sleep(20 * time.Millisecond)
	}

	calls := log.snapshot()
	var sawSynth bool
	for _, call := range calls {
		if call == "synthesizer:execute" {
			sawSynth = true
		}
	}
	if !sawSynth {
		t.Fatalf("expected rolled back project to rerun synthesis, calls %v", calls)
	}
}

func TestStartRequiresConfiguredStages(t *testing.T) {
	manager, _ := newTestManager(t, workflow.StageSet{})
	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("expected error when no stages configured")
	}
}

func TestStatusReportsStageHealth(t *testing.T) {
	manager, store := newTestManager(t, fullStageSet(&callLog{}))
	ctx := context.Background()

	if _, err := store.NewProject(ctx, "/media/talk.mp4", "uk", 1); err != nil {
		t.Fatalf("new project: %v", err)
	}

	summary := manager.Status(ctx)
	if summary.Running {
		t.Fatal("manager must report not running before Start")
	}
	if summary.QueueStats[queue.StatusPending] != 1 {
		t.Fatalf("expected one pending project, got %v", summary.QueueStats)
	}
	for _, name := range []string{"transcriber", "translator", "synthesizer", "compositor"} {
		health, ok := summary.StageHealth[name]
		if !ok || !health.Ready {
			t.Fatalf("expected healthy %s stage, got %+v", name, summary.StageHealth)
		}
	}
}
