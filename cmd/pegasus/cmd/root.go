/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/pegasus/pkg/config"
	"github.com/ssargent/pegasus/pkg/di"
)

var container *di.Container

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pegasus",
	Short: "Pegasus - append-only segment writer",
	Long: `Pegasus writes typed rows into immutable, append-only segment files.

A segment is the raw concatenation of fixed-width row encodings. The row
layout of every segment written by the CLI is recorded in a catalog so it
can be read back later.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container != nil {
			return nil
		}
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")

		cfg, err := loadConfig(configPath, dataDir)
		if err != nil {
			return err
		}
		container = di.NewContainer(cfg, cmd.ErrOrStderr())
		return nil
	},
}

// SetContainer injects the dependency container, mainly for tests
func SetContainer(c *di.Container) {
	container = c
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.GetDefaultConfigPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for segments (overrides the config file)")
}

// loadConfig reads configPath when it exists and falls back to defaults otherwise
func loadConfig(configPath, dataDir string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" && config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
