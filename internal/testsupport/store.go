package testsupport

import (
	"context"
	"testing"

	"redub/internal/config"
	"redub/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewProject enqueues a project for tests using the provided store.
func NewProject(t testing.TB, store *queue.Store, sourcePath, targetLanguage string, voiceID int) *queue.Project {
	t.Helper()

	project, err := store.NewProject(context.Background(), sourcePath, targetLanguage, voiceID)
	if err != nil {
		t.Fatalf("store.NewProject: %v", err)
	}
	return project
}
