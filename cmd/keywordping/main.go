// Command keywordping evaluates chat messages against keyword and VIP
// settings and edits those settings.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/keywordping/keywordping-go/internal/settingspath"
	"github.com/keywordping/keywordping-go/internal/store"
)

const (
	envOwnerID      = "KEYWORDPING_OWNER_ID"
	envDiscordToken = "DISCORD_TOKEN"
)

var (
	// global flags
	settingsPath string
	verbose      bool
	envFile      string

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

var rootCmd = &cobra.Command{
	Use:   "keywordping",
	Short: "Turn chat keywords and VIP users into mentions",
	Long: `keywordping flags chat messages that contain one of your keywords or
were written by one of your VIP users, as if they had mentioned you.

Settings are stored in a YAML or JSON file, or a SQLite database when the
path ends in .db, .sqlite or .sqlite3. The location is taken from
--settings, then $KEYWORDPING_SETTINGS, then the user config directory.

Keyword syntax:
  hello             whole word, case-insensitive
  /^bye$/i          regular expression with flags
  @alice:urgent     only messages written by alice
  #555:release      only messages in channel 555
  777:release       only messages in guild 777`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s", "",
		"Settings file (default: $"+settingspath.EnvSettings+" or user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"Load environment variables from this file if it exists")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// openStore opens the settings store selected by --settings and the
// environment.
func openStore() (store.Store, error) {
	path, err := settingspath.Find(settingsPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("using settings", "path", path)
	return store.Open(path, store.WithLogger(logger))
}

// ownerOrEnv returns flag if set, else the owner ID from the environment.
func ownerOrEnv(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(envOwnerID)
}
