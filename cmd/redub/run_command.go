package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"redub/internal/config"
	"redub/internal/daemon"
	"redub/internal/preflight"
	"redub/internal/queue"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process the queue continuously until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				results := preflight.RunAll(cmd.Context(), cfg)
				for _, result := range results {
					marker := "ok"
					if !result.Passed {
						marker = "FAIL"
						if result.Optional {
							marker = "warn"
						}
					}
					fmt.Fprintf(out, "[%4s] %s: %s\n", marker, result.Name, result.Detail)
				}
				if failed := preflight.Failed(results); len(failed) > 0 {
					return fmt.Errorf("preflight failed: %s", failed[0].Name)
				}

				logger, err := ctx.newLogger(true)
				if err != nil {
					return err
				}
				manager, err := buildManager(cfg, store, logger)
				if err != nil {
					return err
				}
				d, err := daemon.New(cfg, store, logger, manager)
				if err != nil {
					return err
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if err := d.Start(runCtx); err != nil {
					return err
				}
				fmt.Fprintln(out, "redub is processing the queue; press Ctrl-C to stop")
				<-runCtx.Done()
				d.Stop()
				return nil
			})
		},
	}
}
