// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"redub/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.VoicesFile = filepath.Join(base, "voices.json")
	cfgVal.Workflow.QueuePollInterval = 1
	return &cfgVal
}

// WriteVoices writes a voice catalog file at the config's voices path.
func WriteVoices(t testing.TB, cfg *config.Config, payload string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(cfg.Paths.VoicesFile), 0o755); err != nil {
		t.Fatalf("mkdir voices dir: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.VoicesFile, []byte(payload), 0o644); err != nil {
		t.Fatalf("write voices file: %v", err)
	}
}
