package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"redub/internal/config"
	"redub/internal/logging"
	"redub/internal/overlay"
	"redub/internal/queue"
	"redub/internal/synthesis"
	"redub/internal/transcription"
	"redub/internal/translation"
	"redub/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) withStore(fn func(cfg *config.Config, store *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

// newLogger builds the logger for commands that run pipeline stages. Daemon
// mode also writes to the log directory.
func (c *commandContext) newLogger(toFile bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if toFile {
		opts.OutputPaths = []string{"stdout", filepath.Join(cfg.Paths.LogDir, "redub.log")}
	}
	return logging.New(opts)
}

// findProject resolves a full or abbreviated project ID and errors when no
// project matches it.
func findProject(cmd *cobra.Command, store *queue.Store, idPrefix string) (*queue.Project, error) {
	project, err := store.FindByIDPrefix(cmd.Context(), idPrefix)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("no project matches id %q", idPrefix)
	}
	return project, nil
}

// buildManager wires the four pipeline stages into a workflow manager.
func buildManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*workflow.Manager, error) {
	catalog, err := synthesis.LoadCatalog(cfg.Paths.VoicesFile)
	if err != nil {
		return nil, err
	}

	manager := workflow.NewManager(cfg, store, logger)
	manager.ConfigureStages(workflow.StageSet{
		Transcriber: transcription.NewHandler(cfg, store, logger),
		Translator:  translation.NewHandler(cfg, store, logger),
		Synthesizer: synthesis.NewHandler(cfg, store, catalog, logger),
		Compositor:  overlay.NewHandler(cfg, store, logger),
	})
	return manager, nil
}
