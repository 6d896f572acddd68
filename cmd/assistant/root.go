package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/af-corp/content-assistant/internal/config"
	"github.com/af-corp/content-assistant/internal/telemetry"
)

// app is the state shared by every subcommand once the root pre-run is done.
type app struct {
	configDir string
	envFile   string

	loader    *config.Loader
	logger    *slog.Logger
	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "assistant",
		Short:         "Content assistant backend",
		Long:          "Generates social posts, threads, polls, newsletters and images through a configured language model provider.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logCloser != nil {
				return a.logCloser.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configDir, "config", "configs", "path to configuration directory")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before configuration")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newGenerateCmd(a))
	rootCmd.AddCommand(newPromptCmd(a))

	return rootCmd
}

func (a *app) init() error {
	// Variables already set in the environment win over the file.
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}

	bootstrap := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	a.loader = config.NewLoader(a.configDir, bootstrap)
	if err := a.loader.Load(); err != nil {
		return err
	}

	a.logger, a.logCloser = telemetry.NewLogger(a.loader.Config().Telemetry, os.Stderr)
	slog.SetDefault(a.logger)
	return nil
}
