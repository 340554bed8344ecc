package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List search sessions on the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			sessions, err := client.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions.")
				return nil
			}
			headers := []string{"ID", "State", "Request", "Intent", "Candidates"}
			rows := make([][]string, 0, len(sessions))
			for _, sess := range sessions {
				rows = append(rows, []string{
					shortID(sess.ID),
					sess.State,
					sess.Request,
					sess.Intent,
					strconv.Itoa(sess.Candidates),
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, nil))
			return nil
		},
	}
}

func newConfirmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <session-id> <result-number>",
		Short: "Confirm a ranked result on a parked daemon session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			number, err := strconv.Atoi(args[1])
			if err != nil || number < 1 {
				return fmt.Errorf("invalid result number %q", args[1])
			}
			id, err := resolveSessionID(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			detail, err := client.Confirm(cmd.Context(), id, number-1)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s is now %s\n", shortID(detail.ID), detail.State)
			return nil
		},
	}
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <session-id>",
		Short: "Cancel a running daemon session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			id, err := resolveSessionID(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			if err := client.Cancel(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancellation requested for %s\n", shortID(id))
			return nil
		},
	}
}

// resolveSessionID accepts a full session id or an unambiguous prefix.
func resolveSessionID(cmd *cobra.Command, ctx *commandContext, arg string) (string, error) {
	client, err := ctx.apiClient()
	if err != nil {
		return "", err
	}
	sessions, err := client.Sessions(cmd.Context())
	if err != nil {
		return "", err
	}
	var matches []string
	for _, sess := range sessions {
		if sess.ID == arg {
			return arg, nil
		}
		if strings.HasPrefix(sess.ID, arg) {
			matches = append(matches, sess.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no session matches %q", arg)
	default:
		return "", fmt.Errorf("session id %q is ambiguous (%d matches)", arg, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
