package main

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/internal/config"
)

var (
	configFlags struct {
		Force bool
	}
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.Encode(cmd.OutOrStdout(), cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to print config")
		}
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgPath
		if path == "" {
			path = config.DefaultPath()
		}
		if _, err := os.Stat(path); err == nil && !configFlags.Force {
			log.Fatal().Str("path", path).Msg("Config file already exists; use --force to overwrite")
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Fatal().Err(err).Msg("Failed to check config file")
		}

		if err := config.Save(path, config.Default()); err != nil {
			log.Fatal().Err(err).Msg("Failed to write config")
		}
		log.Info().Str("path", path).Msg("Config written")
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&configFlags.Force, "force", false, "Overwrite an existing config file")
}
