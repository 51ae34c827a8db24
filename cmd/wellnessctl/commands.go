package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/modules/experiment"
	"github.com/aristath/wellness/internal/modules/whatif"
	"github.com/aristath/wellness/pkg/logger"
)

type rootOptions struct {
	file     string
	dbPath   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "wellnessctl",
		Short:         "Action packs, what-if projections and experiments over a series file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "Series file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database holding profile state (in-memory when empty)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(actionPackCmd(opts))
	rootCmd.AddCommand(whatIfCmd(opts))
	rootCmd.AddCommand(experimentCmd(opts))

	return rootCmd
}

// run opens an env for the command, hands it to fn and prints fn's result as JSON.
func run(cmd *cobra.Command, opts *rootOptions, fn func(*env) (interface{}, error)) error {
	log := logger.New(logger.Config{
		Level:  opts.logLevel,
		Pretty: true,
		Output: cmd.ErrOrStderr(),
	})

	e, err := openEnv(opts, log)
	if err != nil {
		return err
	}
	defer e.close()

	out, err := fn(e)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// actionPackCmd prints the pack for one insight, or for the top permitted one.
func actionPackCmd(opts *rootOptions) *cobra.Command {
	var insightID string

	cmd := &cobra.Command{
		Use:   "action-pack",
		Short: "Build the action pack for an insight",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(e *env) (interface{}, error) {
				if insightID == "" {
					perms := e.profiles.Permissions(e.profileID)
					insight, pack := e.synthesizer.Top(e.doc.Insights, perms)
					return map[string]interface{}{"insight": insight, "actionPack": pack}, nil
				}
				for _, insight := range e.doc.Insights {
					if insight.ID == insightID {
						return map[string]interface{}{"insight": insight, "actionPack": e.synthesizer.Build(insight)}, nil
					}
				}
				return nil, fmt.Errorf("insight %q not found", insightID)
			})
		},
	}

	cmd.Flags().StringVar(&insightID, "id", "", "Insight ID (defaults to the top permitted insight)")
	return cmd
}

// whatIfCmd runs a projection. Flags left unset fall back to the profile's
// saved simulator preferences, and the final request is saved back.
func whatIfCmd(opts *rootOptions) *cobra.Command {
	var (
		x, y     string
		lag      int
		scenario float64
		baseline int
	)

	cmd := &cobra.Command{
		Use:   "whatif",
		Short: "Project the effect of changing one metric on another",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			return run(cmd, opts, func(e *env) (interface{}, error) {
				prefs := e.profiles.SimulatorPrefs(e.profileID)
				if flags.Changed("x") {
					prefs.X = domain.MetricKey(x)
				}
				if flags.Changed("y") {
					prefs.Y = domain.MetricKey(y)
				}
				if flags.Changed("lag") {
					prefs.Lag = lag
				}
				if flags.Changed("scenario") {
					prefs.Scenario = scenario
				}
				if flags.Changed("baseline") {
					prefs.BaselineDays = baseline
				}

				res, err := e.whatIf.Simulate(e.doc.Series, e.profiles.Permissions(e.profileID), whatif.Request{
					X:            prefs.X,
					Y:            prefs.Y,
					LagDays:      prefs.Lag,
					Scenario:     prefs.Scenario,
					BaselineDays: prefs.BaselineDays,
				})
				if err != nil {
					return nil, err
				}
				if err := e.profiles.SaveSimulatorPrefs(e.profileID, prefs); err != nil {
					return nil, fmt.Errorf("failed to save simulator preferences: %w", err)
				}
				return res, nil
			})
		},
	}

	cmd.Flags().StringVar(&x, "x", "", "Driver metric key")
	cmd.Flags().StringVar(&y, "y", "", "Outcome metric key")
	cmd.Flags().IntVar(&lag, "lag", 0, "Lag in days (0 or 1)")
	cmd.Flags().Float64Var(&scenario, "scenario", 0, "Value the driver metric is moved to")
	cmd.Flags().IntVar(&baseline, "baseline", 0, "Baseline window in days")
	return cmd
}

func experimentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Start, inspect or reset the active experiment",
	}

	var baselineDays int
	start := &cobra.Command{
		Use:   "start",
		Short: "Start an experiment from the top action pack",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(e *env) (interface{}, error) {
				perms := e.profiles.Permissions(e.profileID)
				_, pack := e.synthesizer.Top(e.doc.Insights, perms)
				return e.experiments.Start(e.profileID, e.doc.Series, pack, baselineDays)
			})
		},
	}
	start.Flags().IntVar(&baselineDays, "baseline", 30, "Baseline window in days (30, 60 or 90)")

	status := &cobra.Command{
		Use:   "status",
		Short: "Evaluate the active experiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(e *env) (interface{}, error) {
				eval, err := e.experiments.Evaluate(
					e.profileID,
					e.doc.Series,
					e.profiles.Permissions(e.profileID),
					e.profiles.Goals(e.profileID),
				)
				if errors.Is(err, experiment.ErrNoActiveExperiment) {
					return map[string]string{"state": "suggested"}, nil
				}
				return eval, err
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Clear the active experiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(e *env) (interface{}, error) {
				if err := e.experiments.Reset(e.profileID); err != nil {
					return nil, err
				}
				return map[string]string{"state": "suggested"}, nil
			})
		},
	}

	cmd.AddCommand(start, status, reset)
	return cmd
}
