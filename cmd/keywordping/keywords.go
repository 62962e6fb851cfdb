package main

import (
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/keywordping/keywordping-go/internal/store"
	"github.com/keywordping/keywordping-go/pkg/keywordping"
	"github.com/keywordping/keywordping-go/pkg/keywordping/keyword"
)

var keywordsCmd = &cobra.Command{
	Use:     "keywords",
	Aliases: []string{"kw"},
	Short:   "List and edit keywords",
	Long: `List and edit the keyword list.

Keywords are evaluated in order and the first match wins. Blank lines are
dropped. Lines that look like a regular expression but fail to compile
are kept in the list, reported, and ignored when matching.`,
}

var keywordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the keyword list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		return printList(cmd.OutOrStdout(), "No keywords.", s.Keywords)
	},
}

var keywordsAddCmd = &cobra.Command{
	Use:   "add <keyword>...",
	Short: "Append keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editKeywords(cmd, func(kw []string) []string {
			return appendLines(kw, keywordping.NonBlank(args)...)
		})
	},
}

var keywordsRemoveCmd = &cobra.Command{
	Use:     "remove <keyword>...",
	Aliases: []string{"rm"},
	Short:   "Remove keywords",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editKeywords(cmd, func(kw []string) []string {
			kept, missing := removeLines(kw, args...)
			for _, m := range missing {
				fmt.Fprintf(cmd.ErrOrStderr(), "not found: %s\n", m)
			}
			return kept
		})
	},
}

var keywordsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the keyword list with lines read from stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		text, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), store.MaxFileSize))
		if err != nil {
			return err
		}
		return editKeywords(cmd, func([]string) []string {
			return keywordping.ParseLines(string(text))
		})
	},
}

var keywordsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report keywords that fail to compile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		invalid := keyword.InvalidKeywords(s.Keywords)
		if len(invalid) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All keywords are valid.")
			return nil
		}
		for _, e := range invalid {
			fmt.Fprintln(cmd.OutOrStdout(), e.Error())
		}
		return fmt.Errorf("%d invalid keyword(s)", len(invalid))
	},
}

func init() {
	keywordsCmd.AddCommand(keywordsListCmd, keywordsAddCmd, keywordsRemoveCmd, keywordsSetCmd, keywordsCheckCmd)
	rootCmd.AddCommand(keywordsCmd)
}

// editKeywords applies edit to the keyword list, saves immediately and
// reports invalid patterns in the result.
func editKeywords(cmd *cobra.Command, edit func([]string) []string) error {
	s, err := updateSettings(cmd, func(s keywordping.Settings) keywordping.Settings {
		return s.WithKeywords(edit(s.Keywords)...)
	})
	if err != nil {
		return err
	}

	invalid := lo.Map(keyword.InvalidKeywords(s.Keywords), func(e *keyword.CompileError, _ int) string {
		return e.Raw
	})
	if report := formatInvalid(invalid); report != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), report)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d keyword(s) saved.\n", len(s.Keywords))
	return nil
}
