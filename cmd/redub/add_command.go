package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"redub/internal/config"
	"redub/internal/language"
	"redub/internal/overlay"
	"redub/internal/queue"
	"redub/internal/synthesis"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var languageFlag string
	var voiceFlag int

	cmd := &cobra.Command{
		Use:   "add <video-file>",
		Short: "Queue a video for dubbing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				project, err := enqueueProject(cmd, cfg, store, args[0], languageFlag, voiceFlag)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as project %s (dub to %s)\n",
					language.TitleCase(project.Title), shortID(project.ID), language.DisplayName(project.TargetLanguage))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Target language code (required)")
	cmd.Flags().IntVarP(&voiceFlag, "voice", "v", 0, "Voice catalog id (required)")
	_ = cmd.MarkFlagRequired("language")
	_ = cmd.MarkFlagRequired("voice")
	return cmd
}

func enqueueProject(cmd *cobra.Command, cfg *config.Config, store *queue.Store, sourcePath, languageValue string, voiceID int) (*queue.Project, error) {
	target, err := language.Normalize(languageValue)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("resolve source path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source path %q is a directory", absPath)
	}
	if err := overlay.ValidateVideoExtension(absPath); err != nil {
		return nil, err
	}

	catalog, err := synthesis.LoadCatalog(cfg.Paths.VoicesFile)
	if err != nil {
		return nil, fmt.Errorf("load voice catalog: %w", err)
	}
	if _, err := catalog.Lookup(voiceID); err != nil {
		return nil, err
	}

	return store.NewProject(cmd.Context(), absPath, target, voiceID)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
