package main

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

var snowflake = regexp.MustCompile(`^\d+$`)

var guildCmd = &cobra.Command{
	Use:   "guild",
	Short: "Enable or disable keyword pings per guild",
	Long: `Enable or disable keyword pings per guild. Guilds are enabled unless
disabled here; in a disabled guild neither keywords nor VIP users notify.`,
}

var guildListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show disabled guilds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		return printList(cmd.OutOrStdout(), "No disabled guilds.", s.DisabledGuilds())
	},
}

func guildToggleCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <guild-id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if !snowflake.MatchString(id) {
					return fmt.Errorf("invalid guild ID %q", id)
				}
			}
			_, err := updateSettings(cmd, func(s keywordping.Settings) keywordping.Settings {
				for _, id := range args {
					s = s.WithGuildEnabled(id, enabled)
				}
				return s
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d guild(s) %s.\n", len(args), guildState(enabled))
			return nil
		},
	}
}

var guildFlipCmd = &cobra.Command{
	Use:   "toggle <guild-id>",
	Short: "Flip keyword pings in a guild",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if !snowflake.MatchString(id) {
			return fmt.Errorf("invalid guild ID %q", id)
		}
		s, err := updateSettings(cmd, func(s keywordping.Settings) keywordping.Settings {
			return s.ToggleGuild(id)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "guild %s %s.\n", id, guildState(s.GuildEnabled(id)))
		return nil
	},
}

func guildState(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func init() {
	guildCmd.AddCommand(
		guildListCmd,
		guildFlipCmd,
		guildToggleCmd("enable", "Enable keyword pings in guilds", true),
		guildToggleCmd("disable", "Disable keyword pings in guilds", false),
	)
	rootCmd.AddCommand(guildCmd)
}
