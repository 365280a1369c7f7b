// Command seismic runs the seismic survey simulation headless or in a window.
package main

import (
	"fmt"
	"os"

	"seismic-sim/internal/config"
	_ "seismic-sim/internal/geology"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	configPath string // YAML file layered over the defaults
	logLevel   string // logrus level name
)

var rootCmd = &cobra.Command{
	Use:   "seismic",
	Short: "Seismic wave and oil reservoir simulation",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

func init() {
	defaults := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML configuration file")
	flags.StringVar(&logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
	defaults.Bind(flags)
}

// loadConfig reads --config over the defaults and then applies every
// configuration flag set on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	overrides := pflag.NewFlagSet("overrides", pflag.ContinueOnError)
	cfg.Bind(overrides)
	var err error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if err != nil || overrides.Lookup(f.Name) == nil {
			return
		}
		err = overrides.Set(f.Name, f.Value.String())
	})
	if err != nil {
		return cfg, fmt.Errorf("applying flags: %w", err)
	}
	return cfg, cfg.Validate()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
