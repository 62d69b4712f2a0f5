package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"redub/internal/language"
	"redub/internal/synthesis"
)

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "Voice catalog utilities",
	}
	voicesCmd.AddCommand(newVoicesListCommand(ctx))
	return voicesCmd
}

func newVoicesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List voices available for dubbing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			catalog, err := synthesis.LoadCatalog(cfg.Paths.VoicesFile)
			if err != nil {
				return fmt.Errorf("load voice catalog: %w", err)
			}
			if catalog.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Voice catalog is empty")
				return nil
			}

			voices := catalog.Voices()
			rows := make([][]string, 0, len(voices))
			for _, voice := range voices {
				names := make([]string, 0, len(voice.Languages))
				for _, code := range voice.Languages {
					names = append(names, language.DisplayName(code))
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", voice.VoiceID),
					voice.VoiceName,
					string(voice.Provider),
					strings.Join(names, ", "),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Provider", "Languages"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}
}
