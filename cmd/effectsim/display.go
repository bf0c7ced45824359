package main

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/tui"
	"github.com/san-kum/effectsim/internal/viz"
)

func displayCommands() []*cobra.Command {
	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot dose and arrival along the wind axis",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 12, "plot height")
	plotCmd.Flags().Float64Var(&offset, "offset", 0, "crosswind offset of the profile (km)")

	mapCmd := &cobra.Command{
		Use:   "map [run_id]",
		Short: "draw a saved field as a shaded terminal map",
		Args:  cobra.ExactArgs(1),
		RunE:  mapRun,
	}
	mapCmd.Flags().StringVarP(&quantity, "quantity", "q", fallout.QuantityDose, "field quantity (deposition, arrival, dose, erd)")
	mapCmd.Flags().IntVar(&width, "width", 100, "map width in characters")
	mapCmd.Flags().IntVar(&height, "height", 30, "map height in characters")
	mapCmd.Flags().IntVar(&levelCount, "levels", 5, "number of decade contour levels")
	mapCmd.Flags().Float64Var(&threshold, "outline", 0, "also outline nodes above this value")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "explore a fallout field interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			tabs, err := loadTables()
			if err != nil {
				return err
			}
			return tui.RunExplorer(cfg.FalloutScenario(), cfg.FalloutGrid(), tabs, theme(cfg))
		},
	}
	addScenarioFlags(exploreCmd)

	return []*cobra.Command{plotCmd, mapCmd, exploreCmd}
}

// resample reduces data to at most n points by nearest-index picking.
func resample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*(len(data)-1)/(n-1)]
	}
	return out
}

// log10Floor maps values to log10 with a floor so empty cells stay plottable.
func log10Floor(data []float64, floor float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = math.Log10(math.Max(v, floor))
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	f, _, err := loadRunField(args[0])
	if err != nil {
		return err
	}

	j := f.CrosswindIndex(offset * 1e3)
	dose := f.Dose[j]
	arrival := f.Arrival[j]

	peak := 0.0
	for _, v := range dose {
		peak = math.Max(peak, v)
	}
	if !(peak > 0) {
		return fmt.Errorf("no dose along crosswind offset %g km", f.Y[j]/1e3)
	}

	fmt.Printf("run: %s\n", args[0])
	fmt.Printf("yield: %g kt  wind: %.2f m/s from %g°\n", f.Scenario.YieldKt, f.Scenario.Wind.Speed, f.Scenario.Wind.Direction)
	fmt.Printf("profile: %.1f to %.1f km downwind, %.2f km crosswind\n\n", f.X[0]/1e3, f.X[len(f.X)-1]/1e3, f.Y[j]/1e3)

	graph := asciigraph.Plot(resample(log10Floor(dose, peak*1e-6), width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("log10 dose (R) vs downwind distance"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(resample(arrival, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("arrival time (h) vs downwind distance"),
	)
	fmt.Println(graph)

	if f.LowReliability {
		fmt.Println("\nwarning: yield below 100 kt, close-in dose is underestimated")
	}
	return nil
}

func mapRun(cmd *cobra.Command, args []string) error {
	f, _, err := loadRunField(args[0])
	if err != nil {
		return err
	}
	q, err := f.Quantity(quantity)
	if err != nil {
		return err
	}

	peak, _, _ := fallout.Peak(q)
	levels := viz.DecadeLevels(peak, levelCount)
	if levels == nil {
		return fmt.Errorf("%s is zero everywhere on the grid", quantity)
	}
	t := theme(nil)

	fmt.Printf("%s, %.0f to %.0f km downwind, %.0f to %.0f km crosswind\n",
		quantity, f.X[0]/1e3, f.X[len(f.X)-1]/1e3, f.Y[0]/1e3, f.Y[len(f.Y)-1]/1e3)
	fmt.Print(viz.ShadeColor(f.X, f.Y, q, levels, width, height, t))
	fmt.Println(viz.Legend(levels, quantityUnit(quantity), t))

	if threshold > 0 {
		fmt.Printf("\nnodes above %g %s:\n", threshold, quantityUnit(quantity))
		fmt.Println(viz.Outline(f.X, f.Y, q, threshold, width, height/2).String())
		if dx, dy, ok := fallout.Extent(f.X, f.Y, q, threshold); ok {
			fmt.Printf("extent: %.1f km downwind x %.1f km crosswind\n", dx/1e3, dy/1e3)
		}
	}
	return nil
}
