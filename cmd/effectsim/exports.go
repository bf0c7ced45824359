package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/effectsim/internal/export"
	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/storage"
	"github.com/san-kum/effectsim/internal/viz"
)

var cellSize float64

func exportCommands() []*cobra.Command {
	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's field to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := loadRunField(args[0])
			if err != nil {
				return err
			}
			out := outputPath(args[0], ".csv")
			if err := storage.ExportCSV(out, f); err != nil {
				return err
			}
			fmt.Printf("exported to %s\n", out)
			return nil
		},
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run's field and metrics to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, results, err := loadRunField(args[0])
			if err != nil {
				return err
			}
			out := outputPath(args[0], ".json")
			if err := storage.ExportJSON(out, f, results); err != nil {
				return err
			}
			fmt.Printf("exported to %s\n", out)
			return nil
		},
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a banded field map to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file")
	exportSVGCmd.Flags().StringVarP(&quantity, "quantity", "q", fallout.QuantityDose, "field quantity")
	exportSVGCmd.Flags().IntVar(&levelCount, "levels", 5, "number of decade contour levels")
	exportSVGCmd.Flags().Float64Var(&cellSize, "cell", 4, "pixels per grid node")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "export a log-scaled heat map with contours to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file")
	exportPNGCmd.Flags().StringVarP(&quantity, "quantity", "q", fallout.QuantityDose, "field quantity")
	exportPNGCmd.Flags().IntVar(&levelCount, "levels", 5, "number of decade contour levels")
	exportPNGCmd.Flags().IntVar(&width, "width", 20, "image width (cm)")
	exportPNGCmd.Flags().IntVar(&height, "height", 12, "image height (cm)")

	return []*cobra.Command{exportCSVCmd, exportJSONCmd, exportSVGCmd, exportPNGCmd}
}

func outputPath(runID, ext string) string {
	if outFile != "" {
		return outFile
	}
	return runID + ext
}

// quantityLevels resolves the quantity flag on f with decade levels below
// its peak.
func quantityLevels(f *fallout.Field) ([][]float64, []float64, error) {
	q, err := f.Quantity(quantity)
	if err != nil {
		return nil, nil, err
	}
	peak, _, _ := fallout.Peak(q)
	levels := viz.DecadeLevels(peak, levelCount)
	if levels == nil {
		return nil, nil, fmt.Errorf("%s is zero everywhere on the grid", quantity)
	}
	return q, levels, nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	f, _, err := loadRunField(args[0])
	if err != nil {
		return err
	}
	q, levels, err := quantityLevels(f)
	if err != nil {
		return err
	}

	svg := export.FieldSVG(f, q, levels, cellSize, theme(nil))
	out := outputPath(args[0], ".svg")
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", out)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	f, _, err := loadRunField(args[0])
	if err != nil {
		return err
	}
	q, levels, err := quantityLevels(f)
	if err != nil {
		return err
	}

	out := outputPath(args[0], ".png")
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	defer file.Close()

	title := fmt.Sprintf("%s, %g kt (%s)", quantity, f.Scenario.YieldKt, quantityUnit(quantity))
	w, h := vg.Length(width)*vg.Centimeter, vg.Length(height)*vg.Centimeter
	if err := export.HeatmapPNG(file, f, q, levels, title, theme(nil), w, h); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", out)
	return nil
}
