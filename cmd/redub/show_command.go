package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"redub/internal/config"
	"redub/internal/language"
	"redub/internal/queue"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show details for one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				project, err := findProject(cmd, store, args[0])
				if err != nil {
					return err
				}

				rows := [][]string{
					{"ID", project.ID},
					{"Title", language.TitleCase(project.Title)},
					{"Source", project.SourcePath},
					{"Target language", language.DisplayName(project.TargetLanguage)},
					{"Voice", fmt.Sprintf("%d", project.VoiceID)},
					{"Status", string(project.Status)},
					{"Progress", fmt.Sprintf("%s (%.0f%%)", project.ProgressStage, project.ProgressPercent)},
					{"Created", project.CreatedAt.Local().Format(time.DateTime)},
					{"Updated", project.UpdatedAt.Local().Format(time.DateTime)},
				}
				if project.UsageSeconds > 0 {
					rows = append(rows, []string{"Synthesized speech", fmt.Sprintf("%.1f s", project.UsageSeconds)})
				}
				if project.OutputPath != "" {
					rows = append(rows, []string{"Output", project.OutputPath})
				}
				if project.ErrorMessage != "" {
					rows = append(rows, []string{"Error", project.ErrorMessage})
				}

				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Field", "Value"}, rows,
					[]columnAlignment{alignLeft, alignLeft}))
				return nil
			})
		},
	}
}
