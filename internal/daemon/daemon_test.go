package daemon_test

import (
	"context"
	"testing"

	"redub/internal/config"
	"redub/internal/daemon"
	"redub/internal/logging"
	"redub/internal/queue"
	"redub/internal/stage"
	"redub/internal/testsupport"
	"redub/internal/workflow"
)

type idleHandler struct{}

func (idleHandler) Prepare(ctx context.Context, project *queue.Project) error { return nil }
func (idleHandler) Execute(ctx context.Context, project *queue.Project) error { return nil }
func (idleHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("idle")
}

func newTestDaemon(t *testing.T) (*daemon.Daemon, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := workflow.NewManager(cfg, store, logging.NewNop())
	manager.ConfigureStages(workflow.StageSet{Transcriber: idleHandler{}})

	d, err := daemon.New(cfg, store, logging.NewNop(), manager)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, cfg
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newTestDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("daemon must report running after start")
	}
	if status.LockFilePath == "" || status.QueueDBPath == "" {
		t.Fatalf("status missing paths: %+v", status)
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("daemon must report stopped after stop")
	}
}

func TestDaemonRejectsDoubleStart(t *testing.T) {
	d, _ := newTestDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer d.Stop()

	if err := d.Start(ctx); err == nil {
		t.Fatal("second start must fail")
	}
}

func TestDaemonRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
