package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"torrentai/internal/logging"
	"torrentai/internal/transfer"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download <magnet-link>",
		Short: "Hand a magnet link directly to the transfer engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			magnet := args[0]
			if _, err := transfer.MagnetHash(magnet); err != nil {
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

			// Direct downloads have no search session behind them.
			hash, err := pipe.engine.Initiate(cmd.Context(), magnet, magnet, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Download started (%s)\n", hash)
			return nil
		},
	}
}
