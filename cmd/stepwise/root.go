package main

import (
	"io"

	"github.com/YuminosukeSato/stepwise/pkg/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stepwise",
		Short:         "Forward stepwise regression for ensemble parameters",
		Long:          `Selects the input parameters (and their interactions) that best explain a response across the realizations of an ensemble.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(
		NewFitCmd(),
		NewExpandCmd(),
	)
	return rootCmd
}

// setupLogging points the package logger and the warning sink at w.
func setupLogging(w io.Writer, level string) error {
	if err := log.SetupLogger(w, level); err != nil {
		return err
	}
	lvl, _ := log.ParseLevel(level)
	zl := zerolog.New(w).With().Timestamp().Logger().Level(zerologLevel(lvl))
	log.InstallZerologWarnings(zl)
	return nil
}

func zerologLevel(l log.Level) zerolog.Level {
	switch l {
	case log.LevelDebug:
		return zerolog.DebugLevel
	case log.LevelWarn:
		return zerolog.WarnLevel
	case log.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
