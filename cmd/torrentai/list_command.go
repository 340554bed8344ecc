package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"torrentai/internal/logging"
	"torrentai/internal/transfer/history"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List initiated transfers, newest first",
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

			records, err := pipe.engine.History(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No transfers recorded.")
				return nil
			}
			fmt.Fprintln(out, renderHistory(records))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Number of entries to show (0 shows everything)")
	return cmd
}

func renderHistory(records []history.Record) string {
	headers := []string{"When", "Title", "Session", "Hash"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		session := "-"
		if rec.SessionID != "" {
			session = shortID(rec.SessionID)
		}
		rows = append(rows, []string{
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.Title,
			session,
			rec.Hash,
		})
	}
	return renderTable(headers, rows, nil)
}
