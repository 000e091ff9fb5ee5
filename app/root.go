// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/corpauth/corpauth/internal/config"
	"github.com/corpauth/corpauth/internal/logger"
)

var (
	configPath string // Path to the configuration directory
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "corpauth",
		Short: "CorpAuth is the corporate token-issuance service",
		Long: `CorpAuth is the corporate token-issuance service. It validates
directory (LDAP) credentials and delegated Entra ID tokens, reconciles the
authenticated profile against the local user store and mints signed access
and identity tokens.`,
		Args: cobra.OnlyValidArgs,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration directory")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration and initializes the global logger.
func loadConfig() error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}
