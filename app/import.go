package app

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/corpauth/corpauth/internal/daemon"
	"github.com/corpauth/corpauth/internal/user"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import-users <file>",
	Short: "Import users from a JSON file into the local user store",
	Long: `Import users from a JSON file into the local user store. Each entry
names a directory account and the roles to assign; existing users are
skipped and per-user failures do not abort the batch.`,
	Args: cobra.ExactArgs(1),
	PreRun: func(_ *cobra.Command, _ []string) {
		if err := loadConfig(); err != nil {
			panic(err)
		}
	},
	RunE: func(_ *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		var entries []user.ImportEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}

		summary := daemon.New(&cfg).Importer().Import(context.Background(), entries)

		log.Info().
			Int("created", summary.Created).
			Int("skipped", summary.Skipped).
			Int("errors", len(summary.Errors)).
			Msg("user import finished")

		for _, e := range summary.Errors {
			log.Warn().Str("username", e.Username).Str("reason", e.Reason).Msg("user was not imported")
		}

		return nil
	},
}
