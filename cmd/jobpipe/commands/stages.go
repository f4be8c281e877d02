package commands

import (
	"context"
	"time"

	"jobpipe/internal/clean"
	"jobpipe/internal/enrich"
	"jobpipe/internal/ingest"
	"jobpipe/internal/logging"
	"jobpipe/internal/scheduler"

	"github.com/google/uuid"

	"github.com/spf13/cobra"
)

type stage struct {
	name string
	run  func(ctx context.Context) error
}

func ingestStage() stage {
	return stage{name: "ingest", run: func(ctx context.Context) error {
		_, err := ingest.New(cfg, logging.ForStage(logger, "ingest", runID), runID).Run(ctx)
		return err
	}}
}

func cleanStage() stage {
	return stage{name: "clean", run: func(ctx context.Context) error {
		_, err := clean.New(cfg, logging.ForStage(logger, "clean", runID), runID).Run(ctx)
		return err
	}}
}

func enrichStage() stage {
	return stage{name: "enrich", run: func(ctx context.Context) error {
		_, err := enrich.New(cfg, logging.ForStage(logger, "enrich", runID), runID).Run(ctx)
		return err
	}}
}

// runStages stops at the first failing stage.
func runStages(ctx context.Context, stages ...stage) error {
	for _, s := range stages {
		logger.Info().Str("stage", s.name).Str("run_id", runID).Msg("stage starting")
		if err := s.run(ctx); err != nil {
			logger.Error().Err(err).Str("stage", s.name).Str("run_id", runID).Msg("stage failed")
			return err
		}
	}
	return nil
}

func stageCommand(use, short string, s func() stage) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStages(cmd.Context(), s())
		},
	}
}

var every time.Duration

var runCmd = &cobra.Command{
	Use:   "run [--every <interval>]",
	Short: "Run ingest, clean and enrich in order, stopping at the first failure.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if every <= 0 {
			return runStages(cmd.Context(), ingestStage(), cleanStage(), enrichStage())
		}
		logger.Info().Dur("every", every).Msg("scheduled mode, stop with ctrl-c")
		scheduler.Every(cmd.Context(), every, "pipeline", logger, func(ctx context.Context) error {
			runID = uuid.NewString()
			return runStages(ctx, ingestStage(), cleanStage(), enrichStage())
		})
		return nil
	},
}

func init() {
	runCmd.Flags().DurationVar(&every, "every", 0, "Repeat the pipeline on this interval until interrupted (0 runs once).")
	rootCmd.AddCommand(
		stageCommand("ingest", "Fetch postings from the job board API into the SQLite store.", ingestStage),
		stageCommand("clean", "Clean the stored postings into the cleaned spreadsheet.", cleanStage),
		stageCommand("enrich", "Join the cleaned data with the auxiliary sources.", enrichStage),
		runCmd,
	)
}
