package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/effectsim/internal/analysis"
	"github.com/san-kum/effectsim/internal/effects"
	"github.com/san-kum/effectsim/internal/export"
	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/metrics"
	"github.com/san-kum/effectsim/internal/optim"
	"github.com/san-kum/effectsim/internal/units"
)

var (
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int

	rangeFrom     float64
	rangeTo       float64
	rangeStep     float64
	pressureUnit  string
	profileSVGOut string

	targetX  float64
	targetY  float64
	vary     []string
	minimize bool
)

func analysisCommands() []*cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "evaluate a scenario over a range of yields",
		Args:  cobra.NoArgs,
		RunE:  sweepYield,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 10, "lowest yield (kt)")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 10000, "highest yield (kt)")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 7, "number of yields, log spaced")
	sweepCmd.Flags().Float64Var(&density, "density", 0, "population density per km² for expected fatalities")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "dose areas, extents and lethality for a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&density, "density", 0, "population density per km² for expected fatalities")

	overpressureCmd := &cobra.Command{
		Use:   "overpressure",
		Short: "peak blast overpressure against ground range",
		Args:  cobra.NoArgs,
		RunE:  overpressureProfile,
	}
	overpressureCmd.Flags().Float64Var(&yield, "yield", 1000, "yield (kt)")
	overpressureCmd.Flags().Float64Var(&hob, "hob", 1200, "height of burst (m)")
	overpressureCmd.Flags().Float64Var(&rangeFrom, "from", 500, "first ground range (m)")
	overpressureCmd.Flags().Float64Var(&rangeTo, "to", 20000, "last ground range (m)")
	overpressureCmd.Flags().Float64Var(&rangeStep, "step", 500, "ground range step (m)")
	overpressureCmd.Flags().StringVar(&pressureUnit, "unit", "kpa", "pressure unit (pa, kpa, psi, bar, kg/cm2)")
	overpressureCmd.Flags().StringVar(&profileSVGOut, "svg", "", "also write the profile to an SVG file")

	worstCmd := &cobra.Command{
		Use:   "worst-case",
		Short: "search scenario parameters for the largest dose at a target",
		Long:  "worst-case evaluates every combination of the --vary ranges and reports the one giving the largest accumulated dose at the target",
		Args:  cobra.NoArgs,
		RunE:  worstCase,
	}
	addScenarioFlags(worstCmd)
	worstCmd.Flags().Float64Var(&targetX, "target-x", 20, "target easting from the map origin (km)")
	worstCmd.Flags().Float64Var(&targetY, "target-y", 0, "target northing from the map origin (km)")
	worstCmd.Flags().StringArrayVar(&vary, "vary", []string{optim.ParamWindFrom + "=0:350:10"}, "parameter range name=lo:hi:step (repeatable)")
	worstCmd.Flags().BoolVar(&minimize, "best", false, "report the smallest dose instead")

	return []*cobra.Command{sweepCmd, analyzeCmd, overpressureCmd, worstCmd}
}

func sweepYield(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("density") && cfg.Output.Density > 0 {
		density = cfg.Output.Density
	}
	yields, err := analysis.LogSteps(sweepFrom, sweepTo, sweepSteps)
	if err != nil {
		return err
	}
	tabs, err := loadTables()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := analysis.SweepOptions{
		Thresholds: cfg.Output.Thresholds,
		Lethality:  analysis.DefaultLethality(),
		Density:    density,
	}
	points, err := analysis.YieldSweep(ctx, cfg.FalloutScenario(), yields, cfg.FalloutGrid(), tabs, opts, log)
	if err != nil {
		return err
	}

	w := newTabWriter()
	header := "YIELD\tPEAK DOSE\tPEAK AT"
	for _, th := range cfg.Output.Thresholds {
		header += fmt.Sprintf("\t> %g R", th)
	}
	if density > 0 {
		header += "\tFATALITIES"
	}
	fmt.Fprintln(w, header+"\tNOTE")

	peaks := make([]float64, len(points))
	for i, p := range points {
		peaks[i] = math.Log10(math.Max(p.PeakDose, 1e-6))
		line := fmt.Sprintf("%.4g kt\t%.4g R\t%.1f km", p.YieldKt, p.PeakDose, p.PeakX/1e3)
		for _, th := range cfg.Output.Thresholds {
			area := p.Metrics[metrics.NewAreaAbove(th).Name()]
			line += fmt.Sprintf("\t%.4g km²", area/1e6)
		}
		if density > 0 {
			line += fmt.Sprintf("\t%.0f", p.Fatalities)
		}
		note := ""
		if p.LowReliability {
			note = "low reliability"
		}
		fmt.Fprintln(w, line+"\t"+note)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(peaks) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(peaks,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("log10 peak dose (R), %g to %g kt", sweepFrom, sweepTo)),
		))
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	f, saved, err := loadRunField(args[0])
	if err != nil {
		return err
	}

	thresholds := []float64{100, 300, 1000}
	if cfgThresholds := thresholdsFromMetrics(saved); len(cfgThresholds) > 0 {
		thresholds = cfgThresholds
	}

	fmt.Printf("run: %s\n", args[0])
	fmt.Printf("yield: %g kt  source table: %s\n\n", f.Scenario.YieldKt, f.Source.Table)

	w := newTabWriter()
	fmt.Fprintln(w, "QUANTITY\tPEAK\tINTEGRAL\tCOVERAGE")
	for _, q := range fallout.Quantities {
		values, err := f.Quantity(q.Name)
		if err != nil {
			return err
		}
		// arrival has no cell integral and falls back to the node rule
		cells, _ := f.CellIntegral(q.Name)
		r := metrics.ApplyCells(values, cells, f.CellArea(), metrics.NewPeak(), metrics.NewIntegral(), metrics.NewCoverage(0))
		fmt.Fprintf(w, "%s (%s)\t%.4g\t%.4g\t%.1f%%\n", q.Name, q.Unit, r["peak"], r["integral"], 100*r["coverage"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	w = newTabWriter()
	fmt.Fprintln(w, "DOSE\tAREA\tDOWNWIND\tCROSSWIND")
	for _, th := range thresholds {
		area := metrics.Apply(f.Dose, f.CellArea(), metrics.NewAreaAbove(th))
		dx, dy, ok := fallout.Extent(f.X, f.Y, f.Dose, th)
		if !ok {
			fmt.Fprintf(w, "> %g R\t0 km²\t-\t-\n", th)
			continue
		}
		fmt.Fprintf(w, "> %g R\t%.4g km²\t%.1f km\t%.1f km\n", th, area[metrics.NewAreaAbove(th).Name()]/1e6, dx/1e3, dy/1e3)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	l := analysis.DefaultLethality()
	fmt.Println()
	fmt.Printf("lethality (ERD): LD10 %.0f R, LD50 %.0f R, LD90 %.0f R\n", l.LD(0.1), l.LD(0.5), l.LD(0.9))
	lethal := metrics.Apply(l.FractionField(f.ERD), f.CellArea(), metrics.NewAreaAbove(0.5))
	fmt.Printf("area above 50%% lethality: %.4g km²\n", lethal[metrics.NewAreaAbove(0.5).Name()]/1e6)
	if density > 0 {
		fmt.Printf("expected fatalities at %g per km²: %.0f\n", density, l.ExpectedFatalities(f.ERD, f.CellArea(), density))
	}

	if f.LowReliability {
		fmt.Println("\nwarning: yield below 100 kt, close-in dose is underestimated")
	}
	return nil
}

// thresholdsFromMetrics recovers the area thresholds a run was saved with.
func thresholdsFromMetrics(results map[string]float64) []float64 {
	var out []float64
	for _, name := range metrics.Names(results) {
		var th float64
		if _, err := fmt.Sscanf(name, "area_above_%g", &th); err == nil {
			out = append(out, th)
		}
	}
	sort.Float64s(out)
	return out
}

func overpressureProfile(cmd *cobra.Command, args []string) error {
	if !(rangeStep > 0) || !(rangeTo >= rangeFrom) {
		return fmt.Errorf("need step > 0 and to >= from")
	}
	if _, err := units.Convert(1, "pa", pressureUnit); err != nil {
		return err
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	op, err := effects.NewOverpressure(cat)
	if err != nil {
		return err
	}

	var ranges []float64
	for r := rangeFrom; r <= rangeTo; r += rangeStep {
		ranges = append(ranges, r)
	}
	samples, err := op.Profile(yield, hob, ranges)
	if err != nil {
		return err
	}

	fmt.Printf("yield: %g kt  height of burst: %g m\n\n", yield, hob)
	w := newTabWriter()
	fmt.Fprintf(w, "RANGE\tSCALED\tPRESSURE (%s)\n", pressureUnit)
	xs := make([]float64, len(samples))
	ps := make([]float64, len(samples))
	for i, s := range samples {
		p, _ := units.Convert(s.Pressure, "pa", pressureUnit)
		xs[i], ps[i] = s.Range/1e3, p
		fmt.Fprintf(w, "%.2f km\t%.1f m/kt^⅓\t%.4g\n", s.Range/1e3, effects.Scaled(s.Range, yield), p)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(samples) < len(ranges) {
		fmt.Printf("\n%d ranges lie outside the overpressure curves\n", len(ranges)-len(samples))
	}

	if len(ps) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ps,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("overpressure (%s) vs range", pressureUnit)),
		))
	}

	if profileSVGOut != "" {
		svg := export.ProfileSVG(xs, ps, 640, 320, string(theme(nil).Accent))
		if err := os.WriteFile(profileSVGOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("profile written to %s\n", profileSVGOut)
	}
	return nil
}

// parseVary reads name=lo:hi:step ranges.
func parseVary(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, s := range specs {
		name, rng, ok := strings.Cut(s, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid range %q, want name=lo:hi:step", s)
		}
		bounds, err := parseFloats(strings.Split(rng, ":"))
		if err != nil {
			return nil, nil, fmt.Errorf("range %q: %w", s, err)
		}
		if len(bounds) != 3 {
			return nil, nil, fmt.Errorf("invalid range %q, want name=lo:hi:step", s)
		}
		steps, err := optim.Steps(bounds[0], bounds[1], bounds[2])
		if err != nil {
			return nil, nil, err
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, steps)
	}
	return names, ranges, nil
}

func worstCase(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseVary(vary)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	if minimize {
		g.Minimize()
	}
	tabs, err := loadTables()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	target := r2.Vec{X: targetX * 1e3, Y: targetY * 1e3}
	res, err := g.Search(ctx, cfg.FalloutScenario(), tabs, optim.DoseAt(target))
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"evaluated": res.Evaluated,
		"skipped":   res.Skipped,
	}).Info("search finished")

	fmt.Printf("target: %.1f km east, %.1f km north\n", targetX, targetY)
	fmt.Printf("dose: %.4g R (%d scenarios, %d skipped)\n", res.Value, res.Evaluated, res.Skipped)
	for _, name := range names {
		fmt.Printf("  %s: %g\n", name, res.Params[name])
	}
	return nil
}
