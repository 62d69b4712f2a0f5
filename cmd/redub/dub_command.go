package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redub/internal/config"
	"redub/internal/queue"
)

func newDubCommand(ctx *commandContext) *cobra.Command {
	var languageFlag string
	var voiceFlag int

	cmd := &cobra.Command{
		Use:   "dub <video-file>",
		Short: "Dub a single video end to end and wait for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				project, err := enqueueProject(cmd, cfg, store, args[0], languageFlag, voiceFlag)
				if err != nil {
					return err
				}

				logger, err := ctx.newLogger(false)
				if err != nil {
					return err
				}
				manager, err := buildManager(cfg, store, logger)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Dubbing %s (project %s)\n", project.Title, shortID(project.ID))
				finished, err := manager.RunProject(cmd.Context(), project.ID)
				if err != nil {
					return err
				}
				if finished.Status != queue.StatusCompleted {
					return fmt.Errorf("project ended in status %s", finished.Status)
				}
				fmt.Fprintf(out, "Wrote %s\n", finished.OutputPath)
				fmt.Fprintf(out, "Synthesized %.1f seconds of speech\n", finished.UsageSeconds)
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
