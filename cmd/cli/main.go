package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gomonte/adapters/excel"
	"gomonte/adapters/rng"
	"gomonte/adapters/scenario"
	"gomonte/app"
	"gomonte/internal/config"
	"gomonte/internal/estimator"
	"gomonte/internal/report"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "montecli",
		Short: "Weighted Monte Carlo estimation over categorical payout tables",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newCompareCmd(),
		newConvergeCmd(),
		newCheckCmd(),
		newScenariosCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService assembles the full stack from environment configuration.
func newService() (*app.SimulationService, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	return app.NewSimulationService(
		estimator.New(rng.NewSeededAdapter()),
		excel.NewTableLoader(),
		scenario.NewStore(cfg.Scenario.Dir),
		app.Defaults{
			Trials:      cfg.Sim.DefaultTrials,
			Seed:        cfg.Sim.DefaultSeed,
			MaxTrials:   cfg.Sim.MaxTrials,
			MaxWorkers:  cfg.Sim.MaxWorkers,
			CodeVersion: cfg.Sim.CodeVersion,
		},
	), nil
}

func newRunCmd() *cobra.Command {
	var (
		trials       int64
		seed         int64
		workers      int
		mode         string
		scenarioName string
		format       string
		level        float64
	)

	cmd := &cobra.Command{
		Use:   "run [table-file]",
		Short: "Run one weighted estimation over a payout table",
		Long: `Run one estimation over a payout table from an .xlsx/.csv file or a named
scenario. Same seed, same result, bit for bit.

Example: montecli run roulette.xlsx --trials 1000000 --seed 42`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			src, err := sourceFromArgs(args, scenarioName)
			if err != nil {
				return err
			}

			req := app.RunRequest{
				Source:  src,
				Trials:  trials,
				Workers: workers,
				Mode:    app.ProposalMode(mode),
				Level:   level,
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			fmt.Printf("🎲 Estimating %s...\n\n", describeSource(src))
			resp, err := svc.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printRun(resp, format)
		},
	}

	cmd.Flags().Int64Var(&trials, "trials", 0, "Trial count (0 uses the configured default)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic runs")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count (0 uses the configured default)")
	cmd.Flags().StringVar(&mode, "mode", "as-given", "Proposal mode: as-given, plain, zero-variance")
	cmd.Flags().StringVar(&scenarioName, "scenario", "", "Run a named scenario instead of a file")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown, html, json")
	cmd.Flags().Float64Var(&level, "level", 0.95, "Confidence level for the interval")

	return cmd
}

func newCompareCmd() *cobra.Command {
	var (
		ladder       []int64
		seed         int64
		workers      int
		mode         string
		scenarioName string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "compare [table-file]",
		Short: "Run plain and weighted estimation side by side",
		Long: `Run the same table with and without weight correction on one seed,
across a ladder of trial budgets, and report the variance reduction.

Example: montecli compare roulette.xlsx --ladder 10000,100000,1000000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			src, err := sourceFromArgs(args, scenarioName)
			if err != nil {
				return err
			}

			req := app.CompareRequest{
				Source:  src,
				Ladder:  ladder,
				Workers: workers,
				Mode:    app.ProposalMode(mode),
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			fmt.Printf("⚖️  Comparing plain vs weighted on %s...\n\n", describeSource(src))
			resp, err := svc.Compare(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printCompare(resp, format)
		},
	}

	cmd.Flags().Int64SliceVar(&ladder, "ladder", nil, "Trial budgets to compare at (default: the configured trial count)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed shared by both sides")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count (0 uses the configured default)")
	cmd.Flags().StringVar(&mode, "mode", "as-given", "Proposal for the weighted side: as-given, zero-variance")
	cmd.Flags().StringVar(&scenarioName, "scenario", "", "Compare a named scenario instead of a file")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown, html, json")

	return cmd
}

func newConvergeCmd() *cobra.Command {
	var (
		trialCounts  []int64
		replicates   int
		seed         int64
		workers      int
		mode         string
		scenarioName string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "converge [table-file]",
		Short: "Sweep replicate batches across trial budgets",
		Long: `Run replicate batches at each trial budget and report how the spread of
the estimates shrinks, next to the ratio the root-n law predicts.

Example: montecli converge roulette.xlsx --trial-counts 10000,1000000 --replicates 8`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			src, err := sourceFromArgs(args, scenarioName)
			if err != nil {
				return err
			}

			req := app.ConvergeRequest{
				Source:      src,
				TrialCounts: trialCounts,
				Replicates:  replicates,
				Workers:     workers,
				Mode:        app.ProposalMode(mode),
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			fmt.Printf("📈 Sweeping %s...\n\n", describeSource(src))
			resp, err := svc.Converge(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printConverge(resp, format)
		},
	}

	cmd.Flags().Int64SliceVar(&trialCounts, "trial-counts", nil, "Trial budgets to sweep (default: 10000,1000000)")
	cmd.Flags().IntVar(&replicates, "replicates", 8, "Independent runs per budget")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Base seed; replicate r runs on seed+r")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count (0 uses the configured default)")
	cmd.Flags().StringVar(&mode, "mode", "as-given", "Proposal mode: as-given, plain, zero-variance")
	cmd.Flags().StringVar(&scenarioName, "scenario", "", "Sweep a named scenario instead of a file")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown, html, json")

	return cmd
}

func newCheckCmd() *cobra.Command {
	var (
		scenarioName string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "check [table-file]",
		Short: "Validate a payout table without running trials",
		Long: `Load and validate a payout table, then report its analytic expectation,
hash, and the zero-variance proposal when one exists.

Example: montecli check roulette.xlsx`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			src, err := sourceFromArgs(args, scenarioName)
			if err != nil {
				return err
			}

			resp, err := svc.Check(cmd.Context(), app.CheckRequest{Source: src})
			if err != nil {
				fmt.Printf("❌ %s failed validation\n", describeSource(src))
				return err
			}
			return printCheck(src, resp, format)
		},
	}

	cmd.Flags().StringVar(&scenarioName, "scenario", "", "Check a named scenario instead of a file")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json")

	return cmd
}

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenario catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			names, err := svc.Scenarios(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("No scenarios found")
				return nil
			}

			fmt.Printf("📋 %d scenario(s):\n", len(names))
			for _, name := range names {
				fmt.Printf("  • %s\n", name)
			}
			return nil
		},
	}
}

// sourceFromArgs builds the table source from the positional file argument
// or the --scenario flag, exactly one of which must be given.
func sourceFromArgs(args []string, scenarioName string) (app.TableSource, error) {
	src := app.TableSource{Scenario: scenarioName}
	if len(args) == 1 {
		src.TablePath = args[0]
	}
	if src.TablePath == "" && src.Scenario == "" {
		return app.TableSource{}, fmt.Errorf("give a table file or --scenario")
	}
	if src.TablePath != "" && src.Scenario != "" {
		return app.TableSource{}, fmt.Errorf("give a table file or --scenario, not both")
	}
	return src, nil
}

func describeSource(src app.TableSource) string {
	if src.Scenario != "" {
		return fmt.Sprintf("scenario %q", src.Scenario)
	}
	return src.TablePath
}

func printRun(resp *app.RunResponse, format string) error {
	if format == "json" {
		return printJSON(resp)
	}

	truth := resp.Expectation
	out, err := report.NewRenderer().RenderRun(report.RunView{
		Record: resp.Record,
		Truth:  &truth,
		Interval: &report.Interval{
			Level: resp.Interval.Level,
			Lower: resp.Interval.Lower,
			Upper: resp.Interval.Upper,
		},
	}, report.Format(format))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func printCompare(resp *app.CompareResponse, format string) error {
	if format == "json" {
		return printJSON(resp)
	}

	view := report.CompareView{Truth: resp.Expectation}
	for _, pair := range resp.Pairs {
		view.Pairs = append(view.Pairs, report.ComparePair{
			Trials:            pair.Trials,
			Plain:             pair.Plain,
			Weighted:          pair.Weighted,
			VarianceReduction: pair.VarianceReduction,
		})
	}

	out, err := report.NewRenderer().RenderComparison(view, report.Format(format))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func printConverge(resp *app.ConvergeResponse, format string) error {
	if format == "json" {
		return printJSON(resp)
	}

	view := report.ConvergeView{
		Truth:         resp.Expectation,
		ExpectedRatio: resp.ExpectedRatio,
		ObservedRatio: resp.ObservedRatio,
	}
	for _, point := range resp.Points {
		view.Points = append(view.Points, report.ConvergePoint{
			Trials:   point.Trials,
			Estimate: point.Summary.Mean,
			AbsError: point.MeanAbsError,
			StdError: point.Summary.StdDev,
		})
	}

	out, err := report.NewRenderer().RenderConvergence(view, report.Format(format))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func printCheck(src app.TableSource, resp *app.CheckResponse, format string) error {
	if format == "json" {
		return printJSON(resp)
	}

	kind := "plain"
	if resp.Weighted {
		kind = "weighted"
	}
	fmt.Printf("✅ %s is a valid %s table with %d outcomes\n", describeSource(src), kind, len(resp.Outcomes))
	fmt.Printf("   Expectation: %.6f\n", resp.Expectation)
	fmt.Printf("   Hash: %.12s\n", resp.TableHash)

	if len(resp.ZeroVariance) > 0 {
		cells := make([]string, len(resp.ZeroVariance))
		for i, q := range resp.ZeroVariance {
			cells[i] = fmt.Sprintf("%.4f", q)
		}
		fmt.Printf("   Zero-variance proposal: %s\n", strings.Join(cells, ", "))
	} else {
		fmt.Println("   Zero-variance proposal: undefined (needs strictly positive payoffs)")
	}
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
