package app

import (
	"github.com/spf13/cobra"

	"github.com/corpauth/corpauth/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}

var (
	devMode bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the CorpAuth token service",
		PreRun: func(_ *cobra.Command, _ []string) {
			if err := loadConfig(); err != nil {
				panic(err)
			}

			if devMode {
				cfg.DevMode = true
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d := daemon.New(&cfg)

			go func() {
				if err := d.Start(); err != nil {
					panic(err)
				}
			}()

			d.WaitShutdown()

			return nil
		},
	}
)
