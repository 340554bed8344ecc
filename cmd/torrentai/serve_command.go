package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"torrentai/internal/daemon"
	"torrentai/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the search daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			pipe, err := buildPipeline(cfg, logger)
			if err != nil {
				return err
			}
			defer pipe.close()

			d, err := daemon.New(cfg, pipe.runner, pipe.registry, pipe.engine, logger)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := d.Start(signalCtx); err != nil {
				return err
			}
			defer d.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Daemon listening on %s\n", d.Addr())
			<-signalCtx.Done()
			return nil
		},
	}
}
