package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keywordping/keywordping-go/internal/safefile"
)

var (
	// check flags
	checkFormat string
	checkOwner  string
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Evaluate an event log once and print flagged messages",
	Long: `Read a JSON Lines event log and print every message that would be
flagged as a mention under the current settings.

Each line is a gateway dispatch event. MESSAGE_CREATE events are
evaluated; READY, CHANNEL_CREATE and GUILD_MEMBER_UPDATE events provide
the current user, channel ownership and nicknames. With no file, or "-",
events are read from stdin.

Examples:
  # Check an exported log
  keywordping check events.jsonl --owner 1234567890

  # Pipe from another tool
  cat events.jsonl | keywordping check --format pretty`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	checkCmd.Flags().StringVar(&checkOwner, "owner", "",
		"User ID whose keywords are evaluated (default: $"+envOwnerID+" or the READY event)")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	settings, err := st.Load(ctx)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, _, err := safefile.OpenRegular(args[0])
		if err != nil {
			return fmt.Errorf("opening event log: %w", err)
		}
		defer f.Close()
		in = f
	}

	p, err := newPipeline(ownerOrEnv(checkOwner), checkFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	p.engine.Apply(settings)

	stats, err := p.check(ctx, in)
	logger.Info("check finished", "summary", stats.String())
	return err
}

// check reads every event from in and returns the final counts.
func (p *pipeline) check(ctx context.Context, in io.Reader) (pipelineStats, error) {
	if err := p.host.ReadFrom(ctx, in); err != nil {
		return p.stats, err
	}
	if p.outErr != nil {
		return p.stats, fmt.Errorf("output error: %w", p.outErr)
	}
	return p.stats, nil
}
