package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

var vipCmd = &cobra.Command{
	Use:   "vip",
	Short: "List and edit VIP users",
	Long: `List and edit VIP users. Every message from a VIP user is flagged.

An entry matches a user ID exactly, or a username, display name or guild
nickname ignoring case.`,
}

var vipListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the VIP list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		return printList(cmd.OutOrStdout(), "No VIP users.", s.WhitelistedUsers)
	},
}

var vipAddCmd = &cobra.Command{
	Use:   "add <user>...",
	Short: "Add VIP users",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := updateSettings(cmd, func(s keywordping.Settings) keywordping.Settings {
			return s.WithWhitelistedUsers(appendLines(s.WhitelistedUsers, keywordping.NonBlank(args)...)...)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d VIP user(s) saved.\n", len(s.WhitelistedUsers))
		return nil
	},
}

var vipRemoveCmd = &cobra.Command{
	Use:     "remove <user>...",
	Aliases: []string{"rm"},
	Short:   "Remove VIP users",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := updateSettings(cmd, func(s keywordping.Settings) keywordping.Settings {
			kept, missing := removeLines(s.WhitelistedUsers, args...)
			for _, m := range missing {
				fmt.Fprintf(cmd.ErrOrStderr(), "not found: %s\n", m)
			}
			return s.WithWhitelistedUsers(kept...)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d VIP user(s) saved.\n", len(s.WhitelistedUsers))
		return nil
	},
}

func init() {
	vipCmd.AddCommand(vipListCmd, vipAddCmd, vipRemoveCmd)
	rootCmd.AddCommand(vipCmd)
}
