package commands

import (
	"context"
	"fmt"
	"os"

	"jobpipe/internal/config"
	"jobpipe/internal/logging"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	baseDir string

	cfg      config.Config
	logger   zerolog.Logger
	closeLog func() error
	runID    string
)

var rootCmd = &cobra.Command{
	Use:           "jobpipe",
	Short:         "jobpipe ingests, cleans and enriches job postings.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		var err error
		logger, closeLog, err = logging.New(logging.Options{
			Level: cfg.Log.Level,
			File:  cfg.Resolve(cfg.Log.File),
		})
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		_, res := config.NormalizeAndValidate(cfg)
		for _, w := range res.Warnings {
			logger.Warn().Str("config", cfgPath).Msg(w)
		}
		runID = uuid.NewString()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "jobpipe.yml", "Path to the YAML config file.")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "Override base_dir from the config.")
}

func loadConfig() error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if baseDir != "" {
		c.BaseDir = baseDir
	}
	cfg = c
	return nil
}

// ExecuteContext runs the CLI and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if closeLog != nil {
		_ = closeLog()
		closeLog = nil
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
