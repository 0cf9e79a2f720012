package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	_ "nycetl/internal/storage/all"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "nycetl",
	Short:         "Ingest NYC open-data extracts into a relational database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "nycetl.toml", "path to the TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the CLI logger. Console output on stderr; debug level only
// when asked for.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := newLogger()
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
