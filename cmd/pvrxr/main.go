// pvrxr is the companion tool for the OpenXR shim: it probes the native
// HMD service, serves the diagnostic HTTP surface, and can run a
// simulated service for development.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pvrxr/pvrxr/internal/config"
	"github.com/pvrxr/pvrxr/internal/pvr"
	"github.com/pvrxr/pvrxr/internal/runtime"
)

var (
	flagConfig  string
	flagSocket  string
	flagVerbose bool
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     "pvrxr",
		Short:   "Companion tool for the pvrxr OpenXR runtime shim",
		Version: runtime.PrettyName(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagVerbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/pvrxr/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagSocket, "socket", "", "HMD service socket path override")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSimulateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges the config file with command-line overrides and
// applies the configured log level unless --verbose already raised it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagSocket != "" {
		cfg.SocketPath = flagSocket
	}

	if !flagVerbose {
		if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	}
	return cfg, nil
}

// newServiceClient builds the HMD service client from config.
func newServiceClient(cfg config.Config) *pvr.Client {
	return pvr.NewClient(
		pvr.WithSocketPath(cfg.SocketPath),
		pvr.WithTimeout(cfg.DialTimeout()),
	)
}
