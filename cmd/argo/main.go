// Command argo exposes the six pipeline steps directly. run-step and
// run-steps each wrap one Engine.RunStep/RunSteps call, run-range calls
// RunSteps once per day, and schema prints the config JSON schema.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxtech-lab/argo-core/internal/config"
	"github.com/rxtech-lab/argo-core/internal/engine"
	"github.com/rxtech-lab/argo-core/internal/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func parseStep(name string) (engine.Step, error) {
	step := engine.Step(name)
	if !step.Valid() {
		return "", fmt.Errorf("unknown step %q", name)
	}

	return step, nil
}

func runStepAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	target := cmd.Timestamp("target")

	step, err := parseStep(cmd.String("step"))
	if err != nil {
		return err
	}

	eng, _, err := buildEngine(ctx, cfg, target, log)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	if err := eng.RunStep(ctx, target, step); err != nil {
		return fmt.Errorf("run-step %s failed: %w", step, err)
	}

	log.Sugar().Infof("step %s completed for %s", step, target.Format(time.RFC3339))

	return nil
}

func runStepsAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	target := cmd.Timestamp("target")

	eng, _, err := buildEngine(ctx, cfg, target, log)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	if err := eng.RunSteps(ctx, target, engine.Steps); err != nil {
		return fmt.Errorf("run-steps failed: %w", err)
	}

	log.Sugar().Infof("all steps completed for %s", target.Format(time.RFC3339))

	return nil
}

// runRangeAction drives the whole pipeline once per day across a closed
// date range, advancing the simulated exchange cursor before each
// iteration. An interrupt is checked before each daily iteration and stops
// the loop there; artifacts of completed steps stay persisted.
func runRangeAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	start := cmd.Timestamp("start")
	end := cmd.Timestamp("end")

	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	eng, exchangeClient, err := buildEngine(ctx, cfg, start, log)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	totalDays := int(end.Sub(start).Hours()/24) + 1
	bar := progressbar.New(totalDays)

	for target := start; !target.After(end); target = target.AddDate(0, 0, 1) {
		if ctx.Err() != nil {
			fmt.Println("\nInterrupted, stopping at step boundary")

			return ctx.Err()
		}

		exchangeClient.AdvanceTo(target)

		if err := eng.RunSteps(ctx, target, engine.Steps); err != nil {
			return fmt.Errorf("run-range failed at %s: %w", target.Format(time.DateOnly), err)
		}

		bar.Add(1) //nolint:errcheck
	}

	log.Sugar().Infof("ran %d iterations from %s to %s", totalDays, start.Format(time.DateOnly), end.Format(time.DateOnly))

	return nil
}

func schemaAction(_ context.Context, _ *cli.Command) error {
	cfg := config.Empty()

	out, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate config schema: %w", err)
	}

	fmt.Println(out)

	return nil
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "Path to the engine configuration file (YAML)",
		Value:    "config/argo.yaml",
		Required: false,
	}
}

func targetFlag() cli.Flag {
	return &cli.TimestampFlag{
		Name:    "target",
		Aliases: []string{"t"},
		Usage:   "Target datetime for this iteration, `YYYY-MM-DDTHH:MM:SS` (defaults to now)",
		Value:   time.Now(),
		Config: cli.TimestampConfig{
			Layouts: []string{"2006-01-02T15:04:05", "2006-01-02"},
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "argo",
		Usage: "Run the strategy engine's six pipeline steps",
		Commands: []*cli.Command{
			{
				Name:  "run-step",
				Usage: "Run a single pipeline step for one target datetime",
				Flags: []cli.Flag{
					configFlag(),
					targetFlag(),
					&cli.StringFlag{
						Name:     "step",
						Aliases:  []string{"s"},
						Usage:    "One of: calculate_signals, construct_portfolio, create_entry_orders, create_exit_orders, submit_entry_orders, submit_exit_orders",
						Required: true,
					},
				},
				Action: runStepAction,
			},
			{
				Name:   "run-steps",
				Usage:  "Run every pipeline step in order for one target datetime",
				Flags:  []cli.Flag{configFlag(), targetFlag()},
				Action: runStepsAction,
			},
			{
				Name:  "run-range",
				Usage: "Run every pipeline step daily across a closed date range (backtest)",
				Flags: []cli.Flag{
					configFlag(),
					&cli.TimestampFlag{
						Name:     "start",
						Usage:    "First target date, `YYYY-MM-DD`",
						Required: true,
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02"},
						},
					},
					&cli.TimestampFlag{
						Name:     "end",
						Usage:    "Last target date (inclusive), `YYYY-MM-DD`",
						Required: true,
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02"},
						},
					},
				},
				Action: runRangeAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the engine configuration's JSON schema",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
