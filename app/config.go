package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpauth/corpauth/internal/config"
)

func init() { //nolint: gochecknoinits
	configCmd.Flags().BoolVar(&dumpJSON, "json", false, "Dump the configuration as JSON")

	rootCmd.AddCommand(configCmd)
}

var (
	dumpJSON bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		PreRun: func(_ *cobra.Command, _ []string) {
			if err := loadConfig(); err != nil {
				panic(err)
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			dump := config.DumpConfig
			if dumpJSON {
				dump = config.DumpConfigJSON
			}

			out, err := dump(cfg)
			if err != nil {
				return err
			}

			fmt.Println(out)

			return nil
		},
	}
)
