package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-gt511/internal/config"
)

var (
	cmdConfig = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long:  ``,
		Args:  cobra.NoArgs,
		RunE:  runConfig,
	}
)

func init() {
	rootCmd.AddCommand(cmdConfig)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return config.Dump(os.Stdout, cfg)
}
