package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"torrentai/internal/evaluate"
	"torrentai/internal/logging"
	"torrentai/internal/normalize"
	"torrentai/internal/rank"
	"torrentai/internal/session"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var autoFlag bool
	var yesFlag bool
	var verboseFlag bool

	cmd := &cobra.Command{
		Use:   "search <request...>",
		Short: "Search for content described in plain language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if autoFlag {
				cfg.Search.AutoAction = true
			}

			logger := logging.NewNop()
			if verboseFlag {
				if fromCfg, logErr := logging.NewFromConfig(cfg); logErr == nil {
					logger = fromCfg
				}
			}
			pipe, err := buildPipeline(cfg, logger)
			if err != nil {
				return err
			}
			defer pipe.close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			request := strings.Join(args, " ")
			sess := session.New(signalCtx, request)
			pipe.registry.Add(sess)

			out := cmd.OutOrStdout()
			watchProgress(sess, out)

			runErr := pipe.runner.Run(sess)
			snap := sess.Snapshot()

			if snap.Intent != nil {
				fmt.Fprintf(out, "Interpreted as: %s\n", snap.Intent.Summary())
			}
			for _, failure := range snap.SourceErrors {
				fmt.Fprintf(out, "warning: %s %s for query %q\n", normalize.SourceLabel(failure.Adapter), failure.Kind, failure.Query)
			}
			if runErr != nil {
				return runErr
			}

			ranked, decision := sess.Ranked()
			switch decision {
			case rank.DecisionNoQualifyingResults:
				fmt.Fprintln(out, "No qualifying results.")
				return nil
			case rank.DecisionProceed:
				fmt.Fprintln(out, renderCandidates(ranked))
				fmt.Fprintf(out, "Download started: %s\n", ranked[0].Candidate.Title)
				return nil
			default:
				fmt.Fprintln(out, renderCandidates(ranked))
				return promptConfirmation(cmd, pipe, sess, ranked, yesFlag)
			}
		},
	}

	cmd.Flags().BoolVar(&autoFlag, "auto", false, "Download the top result automatically when it scores above the threshold")
	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Confirm the top result without prompting")
	cmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Emit pipeline logs while searching")
	return cmd
}

// watchProgress prints state changes while the pipeline runs.
func watchProgress(sess *session.Session, out io.Writer) {
	if !isInteractive(out) {
		return
	}
	ch, unsubscribe := sess.Subscribe()
	go func() {
		defer unsubscribe()
		var last session.State
		for snap := range ch {
			if snap.State == last {
				continue
			}
			last = snap.State
			switch snap.State {
			case session.StatePlanning:
				fmt.Fprintln(out, "Interpreting request...")
			case session.StateSearching:
				fmt.Fprintln(out, "Searching sources...")
			case session.StateEvaluating:
				fmt.Fprintf(out, "Evaluating %d candidates...\n", len(snap.Normalized))
			}
			if snap.State.Terminal() || snap.State == session.StateAwaitingConfirmation {
				return
			}
		}
	}()
}

func renderCandidates(ranked []evaluate.Scored) string {
	headers := []string{"#", "Title", "Sources", "Seeders", "Size", "Relevance", "Confidence"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(ranked))
	for i, scored := range ranked {
		size := ""
		if scored.Candidate.SizeBytes > 0 {
			size = humanize.IBytes(uint64(scored.Candidate.SizeBytes))
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			scored.Candidate.Title,
			sourceList(scored.Candidate.Sources),
			strconv.Itoa(scored.Candidate.Seeders),
			size,
			fmt.Sprintf("%.2f", scored.Relevance),
			fmt.Sprintf("%.2f", scored.Confidence),
		})
	}
	return renderTable(headers, rows, aligns)
}

// sourceList renders adapter names for a table cell.
func sourceList(names []string) string {
	labels := make([]string, 0, len(names))
	for _, name := range names {
		labels = append(labels, normalize.SourceLabel(name))
	}
	return strings.Join(labels, ", ")
}

func promptConfirmation(cmd *cobra.Command, pipe *pipeline, sess *session.Session, ranked []evaluate.Scored, yes bool) error {
	out := cmd.OutOrStdout()
	if pipe.engine == nil {
		fmt.Fprintln(out, "No transfer engine configured; copy a magnet link to download manually.")
		return pipe.runner.Dismiss(sess)
	}
	if yes {
		if err := pipe.runner.Confirm(cmd.Context(), sess, 0); err != nil {
			return err
		}
		fmt.Fprintf(out, "Download started: %s\n", ranked[0].Candidate.Title)
		return nil
	}
	if !isInteractive(out) {
		fmt.Fprintf(out, "Session %s is awaiting confirmation; rerun with --yes or confirm via the daemon API.\n", sess.ID())
		return nil
	}

	fmt.Fprintf(out, "Download which result? [1-%d, n to skip]: ", len(ranked))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read selection: %w", err)
	}
	choice := strings.ToLower(strings.TrimSpace(line))
	if choice == "" || choice == "n" || choice == "no" {
		return pipe.runner.Dismiss(sess)
	}
	index, err := strconv.Atoi(choice)
	if err != nil || index < 1 || index > len(ranked) {
		return fmt.Errorf("invalid selection %q", choice)
	}
	if err := pipe.runner.Confirm(context.Background(), sess, index-1); err != nil {
		return err
	}
	fmt.Fprintf(out, "Download started: %s\n", ranked[index-1].Candidate.Title)
	return nil
}
