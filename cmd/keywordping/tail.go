package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keywordping/keywordping-go/internal/tailer"
)

var (
	// tail flags
	tailFormat    string
	tailOwner     string
	tailFromStart bool
	tailPoll      bool
)

var tailCmd = &cobra.Command{
	Use:   "tail <file>",
	Short: "Follow an event log and print flagged messages",
	Long: `Follow a JSON Lines event log in real time and print every message
that is flagged as a mention.

Settings are reloaded whenever the settings file or database changes, so
keywords can be edited with "keywordping keywords" while tail is running.

Examples:
  # Follow new events only
  keywordping tail events.jsonl

  # Replay the whole file first, then follow
  keywordping tail events.jsonl --from-start --format pretty

  # Pipe to jq
  keywordping tail events.jsonl | jq 'select(.reason == "vip")'`,
	Args: cobra.ExactArgs(1),
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	tailCmd.Flags().StringVar(&tailOwner, "owner", "",
		"User ID whose keywords are evaluated (default: $"+envOwnerID+" or the READY event)")
	tailCmd.Flags().BoolVar(&tailFromStart, "from-start", false,
		"Process existing events before following")
	tailCmd.Flags().BoolVar(&tailPoll, "poll", false,
		"Poll for changes instead of using file system notifications")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ownerOrEnv(tailOwner), tailFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := followSettings(ctx, st, p.engine); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	cfg := tailer.DefaultConfig()
	cfg.FromStart = tailFromStart
	cfg.Poll = tailPoll

	err = p.host.Follow(ctx, args[0], cfg)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("following %s: %w", args[0], err)
	}
	logger.Info("tail finished", "summary", p.stats.String())
	return nil
}
