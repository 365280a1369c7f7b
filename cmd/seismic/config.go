package main

import (
	"fmt"
	"io"

	"seismic-sim/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := printConfig(cmd.OutOrStdout(), cfg); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func printConfig(w io.Writer, cfg config.Config) error {
	out, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("YAML marshal failed: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing configuration: %w", err)
	}
	return nil
}
