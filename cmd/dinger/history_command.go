package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dinger/internal/history"
	"dinger/internal/logging"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var gamePK int64
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded match decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled || cfg.History.Path == "" {
				return errors.New("match history is disabled in configuration")
			}

			store, err := history.Open(cfg.History.Path, logging.NewNop())
			if err != nil {
				return err
			}
			defer store.Close()

			var entries []history.Entry
			if gamePK > 0 {
				entries, err = store.GameEntries(cmd.Context(), gamePK)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut || !stdoutIsTerminal() {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, "No matches recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.MatchedAt.Local().Format(time.DateTime),
					fmt.Sprintf("%d", entry.GamePK),
					fmt.Sprintf("%d/%d", entry.AtBatIndex, entry.PlayIndex),
					entry.VideoID,
					fmt.Sprintf("%.3f", entry.Score),
					entry.Strategy,
					entry.Category,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Matched At", "Game", "AB/Play", "Video", "Score", "Strategy", "Category"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	cmd.Flags().Int64Var(&gamePK, "game", 0, "Show every decision for one game")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}
