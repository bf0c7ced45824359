package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/effectsim/internal/automation"
	"github.com/san-kum/effectsim/internal/fallout"
)

var (
	trials     int
	seed       uint64
	speedSigma float64
	dirSigma   float64
)

func batchCommands() []*cobra.Command {
	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a scripted sequence of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	addScenarioFlags(scriptCmd)

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "dose distribution at a target under wind uncertainty",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addScenarioFlags(monteCarloCmd)
	monteCarloCmd.Flags().Float64Var(&targetX, "target-x", 20, "target easting from the map origin (km)")
	monteCarloCmd.Flags().Float64Var(&targetY, "target-y", 0, "target northing from the map origin (km)")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 500, "number of trials")
	monteCarloCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 = from clock)")
	monteCarloCmd.Flags().Float64Var(&speedSigma, "speed-sigma", 2, "wind speed standard deviation (m/s)")
	monteCarloCmd.Flags().Float64Var(&dirSigma, "dir-sigma", 15, "wind direction standard deviation (degrees)")
	monteCarloCmd.Flags().Float64Var(&threshold, "threshold", 300, "dose threshold for the exceedance probability (R)")

	return []*cobra.Command{scriptCmd, monteCarloCmd}
}

func runScript(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	script, err := automation.LoadScript(args[0])
	if err != nil {
		return err
	}
	tabs, err := loadTables()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if script.Name != "" {
		fmt.Printf("script: %s\n", script.Name)
	}
	if script.Description != "" {
		fmt.Printf("%s\n", script.Description)
	}
	fmt.Println()

	results, err := automation.RunScript(ctx, script, base, tabs, log)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}

	w := newTabWriter()
	fmt.Fprintln(w, "STEP\tYIELD\tWIND\tFROM\tPEAK DOSE\tPEAK AT\tRUN")
	for _, r := range results {
		runID := "-"
		if r.Save {
			m := doseMetrics(r.Field, r.Config.Output.Thresholds, r.Config.Output.Density)
			if runID, err = st.Save(r.Field, m); err != nil {
				return err
			}
		}
		sc := r.Field.Scenario
		peak, x, _ := r.Field.PeakDose()
		fmt.Fprintf(w, "%s\t%g kt\t%.2f m/s\t%g°\t%.4g R\t%.1f km\t%s\n",
			r.Name, sc.YieldKt, sc.Wind.Speed, sc.Wind.Direction, peak, x/1e3, runID)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	tabs, err := loadTables()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mc := automation.MonteCarloConfig{
		Base:        cfg.FalloutScenario(),
		Target:      r2.Vec{X: targetX * 1e3, Y: targetY * 1e3},
		Uncertainty: automation.WindUncertainty{Speed: speedSigma, Direction: dirSigma},
		Trials:      trials,
		Seed:        seed,
		Threshold:   threshold,
	}
	res, err := automation.RunMonteCarlo(ctx, mc, tabs)
	if err != nil {
		return err
	}

	sc := mc.Base
	fmt.Printf("burst: %g kt, wind %.2f ± %g m/s from %g ± %g°\n", sc.YieldKt, sc.Wind.Speed, speedSigma, sc.Wind.Direction, dirSigma)
	fmt.Printf("target: %.1f km east, %.1f km north\n", targetX, targetY)
	fmt.Printf("trials: %d (%d skipped)\n\n", len(res.Doses), res.Skipped)

	w := newTabWriter()
	fmt.Fprintln(w, "STATISTIC\tDOSE (R)")
	fmt.Fprintf(w, "mean\t%.4g\n", res.Mean)
	fmt.Fprintf(w, "std dev\t%.4g\n", res.StdDev)
	fmt.Fprintf(w, "median\t%.4g\n", res.P50)
	fmt.Fprintf(w, "90th percentile\t%.4g\n", res.P90)
	fmt.Fprintf(w, "99th percentile\t%.4g\n", res.P99)
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nP(dose > %g R) = %.3f\n", threshold, res.Exceedance)

	if sc.YieldKt < fallout.ReliableYieldKt {
		fmt.Println("warning: yield below 100 kt, close-in dose is underestimated")
	}
	return nil
}
