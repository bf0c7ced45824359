package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/metrics"
)

// RenderSummary reports a field's scenario, source term, peak and metric
// results as a themed panel.
func RenderSummary(f *fallout.Field, results map[string]float64, t Theme) string {
	st := NewStyles(t)
	sc := f.Scenario

	row := func(label, value string) string {
		return st.Label.Render(fmt.Sprintf("%-20s", label)) + st.Value.Render(value)
	}

	peak, px, py := f.PeakDose()
	lines := []string{
		st.Title.Render(fmt.Sprintf("WSEG-10 fallout, %g kt", sc.YieldKt)),
		row("fission fraction", fmt.Sprintf("%g", sc.FissionFraction)),
		row("height of burst", fmt.Sprintf("%g m", sc.HeightOfBurst)),
		row("wind", fmt.Sprintf("%.1f m/s from %g°", sc.Wind.Speed, sc.Wind.Direction)),
		row("shear", fmt.Sprintf("%g (m/s)/km", sc.Shear)),
		row("horizon", fmt.Sprintf("%g h", sc.Horizon)),
		"",
		row("source table", f.Source.Table),
		row("cloud height", fmt.Sprintf("%.0f m", f.Source.CloudHeight)),
		row("cloud sigma", fmt.Sprintf("%.0f m", f.Source.CloudSigma)),
		row("time constant", fmt.Sprintf("%.2f h", f.Source.TimeConstant)),
		"",
		row("peak dose", fmt.Sprintf("%.4g R at (%.1f, %.1f) km", peak, px/1e3, py/1e3)),
		row("deposit on grid", fmt.Sprintf("%.1f%% of source", 100*f.TotalDeposit()/f.Source.Activity)),
		row("centreline", Sparkline(f.Centerline(f.Dose), 40)),
	}

	if len(results) > 0 {
		lines = append(lines, "")
		for _, name := range metrics.Names(results) {
			lines = append(lines, row(name, fmt.Sprintf("%.4g", results[name])))
		}
	}
	if f.LowReliability {
		lines = append(lines, "", st.Warning.Render("low reliability: yield below 100 kt, cloud stem not modelled"))
	}

	return st.Panel.Render(strings.Join(lines, "\n"))
}

// Legend lists the contour levels with their theme colours.
func Legend(levels []float64, unit string, t Theme) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		sw := lipgloss.NewStyle().Foreground(t.Band(i, len(levels))).Render("██")
		parts[i] = fmt.Sprintf("%s ≥%g %s", sw, l, unit)
	}
	return strings.Join(parts, "  ")
}
