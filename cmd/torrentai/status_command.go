package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"torrentai/internal/logging"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show active downloads and recent transfer history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pipe, err := buildPipeline(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			defer pipe.close()
			if pipe.engine == nil {
				return fmt.Errorf("no transfer engine configured; set transfer.url in the config")
			}
			out := cmd.OutOrStdout()

			active, err := pipe.engine.Active(cmd.Context())
			if err != nil {
				return err
			}
			if len(active) == 0 {
				fmt.Fprintln(out, "No active downloads.")
			} else {
				headers := []string{"Name", "Progress", "Rate", "ETA", "Size"}
				aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}
				rows := make([][]string, 0, len(active))
				for _, progress := range active {
					rows = append(rows, []string{
						progress.Name,
						fmt.Sprintf("%.0f%%", progress.PercentDone*100),
						humanize.IBytes(uint64(progress.RateDownload)) + "/s",
						formatETA(progress.ETA, progress.Complete),
						humanize.IBytes(uint64(progress.TotalSize)),
					})
				}
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
			}

			records, err := pipe.engine.History(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return nil
			}
			fmt.Fprintln(out, "Recent transfers:")
			fmt.Fprintln(out, renderHistory(records))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 10, "Number of history entries to show")
	return cmd
}

func formatETA(seconds int64, complete bool) string {
	if complete {
		return "done"
	}
	if seconds < 0 {
		return "-"
	}
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return strconv.FormatInt(seconds, 10) + "s"
}
