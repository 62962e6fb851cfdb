package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/keywordping/keywordping-go/internal/discordhost"
	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

var (
	// discord flags
	discordToken string
	discordOwner string
	notifyRate   float64
	notifyBurst  int
)

var discordCmd = &cobra.Command{
	Use:   "discord",
	Short: "Run as a Discord bot that DMs you flagged messages",
	Long: `Connect to Discord as a bot and watch every guild the bot is in.
Messages that match your keywords or come from your VIP users are sent to
you as a direct message.

The bot needs the Message Content intent enabled in the developer portal.
Settings are reloaded while the bot is running.

Examples:
  DISCORD_TOKEN=... KEYWORDPING_OWNER_ID=1234567890 keywordping discord`,
	Args: cobra.NoArgs,
	RunE: runDiscord,
}

func init() {
	discordCmd.Flags().StringVar(&discordToken, "token", "",
		"Bot token (default: $"+envDiscordToken+")")
	discordCmd.Flags().StringVar(&discordOwner, "owner", "",
		"Your user ID (default: $"+envOwnerID+")")
	discordCmd.Flags().Float64Var(&notifyRate, "notify-rate", float64(discordhost.DefaultNotifyRate),
		"Sustained notifications per second")
	discordCmd.Flags().IntVar(&notifyBurst, "notify-burst", discordhost.DefaultNotifyBurst,
		"Notifications allowed in a burst")

	rootCmd.AddCommand(discordCmd)
}

func runDiscord(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	token := discordToken
	if token == "" {
		token = os.Getenv(envDiscordToken)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var engine *keywordping.Engine
	host, err := discordhost.New(discordhost.Config{
		Token:       token,
		OwnerID:     ownerOrEnv(discordOwner),
		Logger:      logger,
		NotifyRate:  rateLimit(notifyRate),
		NotifyBurst: notifyBurst,
		Explain: func(msg *keywordping.Message) keywordping.Result {
			return engine.Evaluate(msg)
		},
	})
	if err != nil {
		return err
	}

	engine, err = keywordping.NewEngine(host, keywordping.WithLogger(logger))
	if err != nil {
		return err
	}

	if err := followSettings(ctx, st, engine); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	detach := engine.Attach(host)
	defer detach()

	if err := host.Open(); err != nil {
		return err
	}
	defer host.Close()

	logger.Info("listening for messages; press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}

func rateLimit(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return discordhost.DefaultNotifyRate
	}
	return rate.Limit(perSecond)
}
