package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/candidateboard/internal/config"
	"github.com/okian/candidateboard/pkg/logger"
)

var version = "dev"

// cli carries state shared by every subcommand once the root has loaded
// configuration and initialised logging.
type cli struct {
	cfg *config.Config
	log logger.Logger
}

func newRootCommand() *cobra.Command {
	st := &cli{}

	cmd := &cobra.Command{
		Use:   "candidateboard",
		Short: "Rank, query and export evaluated candidates",
		Long: `candidateboard ranks evaluated candidates by the mean of their three
sub-scores, aggregates scores per skill and serves the results over HTTP.

Configuration is layered: defaults, then the YAML file named by BOARD_CONFIG,
then BOARD_* environment variables.`,
		Version:      version,
		SilenceUsage: true,
	}

	configPath := cmd.PersistentFlags().String("config", "", "YAML config file (overrides BOARD_CONFIG)")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if *configPath != "" {
			if err := os.Setenv(config.FileEnv, *configPath); err != nil {
				return fmt.Errorf("set %s: %w", config.FileEnv, err)
			}
		}
		return st.init(cmd)
	}

	cmd.AddCommand(newServeCommand(st))
	cmd.AddCommand(newGenerateCommand(st))
	cmd.AddCommand(newExportCommand(st))
	cmd.AddCommand(newRankCommand(st))

	return cmd
}

func (st *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	st.cfg = cfg
	st.log = log
	return nil
}

func execute() error {
	return newRootCommand().Execute()
}
