package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytget/yt-mp3/internal/history"
	"github.com/ytget/yt-mp3/internal/model"
)

const historyTitleWidth = 48

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No conversions yet")
				return nil
			}

			headers := []string{"Started", "Title", "State", "Kbps", "Took", "Output / Error"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, historyRow(run))
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Number of runs to show")
	return cmd
}

func historyRow(run *model.Run) []string {
	detail := run.OutputPath
	if run.State == model.StateFailed {
		detail = run.LastError
	}

	bitrate := ""
	if run.BitrateKbps > 0 {
		bitrate = strconv.Itoa(run.BitrateKbps)
	}

	return []string{
		run.StartedAt.Local().Format(time.DateTime),
		truncate(run.GetDisplayTitle(), historyTitleWidth),
		run.State.String(),
		bitrate,
		run.GetElapsedString(),
		detail,
	}
}

func truncate(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	return string(runes[:width-1]) + "…"
}
