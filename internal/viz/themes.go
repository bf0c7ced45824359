package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour scheme for reports, maps and exports. Bands run
// from the lowest hazard level to the highest.
type Theme struct {
	Name       string
	Title      lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Bands      []lipgloss.Color
}

var (
	ThemeDefault = Theme{
		Name:       "default",
		Title:      lipgloss.Color("#ffffff"),
		Text:       lipgloss.Color("#dddddd"),
		Muted:      lipgloss.Color("#666688"),
		Accent:     lipgloss.Color("#00ccff"),
		Background: lipgloss.Color("#0a0a0a"),
		Warning:    lipgloss.Color("#ffaa00"),
		Error:      lipgloss.Color("#ff4444"),
		Bands: []lipgloss.Color{
			"#ffff99", // yellow
			"#ffcc33",
			"#ff8800",
			"#ff3300",
			"#aa0044", // crimson
		},
	}

	ThemeRetro = Theme{
		Name:       "retro",
		Title:      lipgloss.Color("#00ff00"), // green phosphor
		Text:       lipgloss.Color("#00cc00"),
		Muted:      lipgloss.Color("#005500"),
		Accent:     lipgloss.Color("#88ff88"),
		Background: lipgloss.Color("#001100"),
		Warning:    lipgloss.Color("#ffff00"),
		Error:      lipgloss.Color("#ff0000"),
		Bands:      []lipgloss.Color{"#003300", "#006600", "#009900", "#00cc00", "#00ff00"},
	}

	ThemeMinimal = Theme{
		Name:       "minimal",
		Title:      lipgloss.Color("#ffffff"),
		Text:       lipgloss.Color("#cccccc"),
		Muted:      lipgloss.Color("#888888"),
		Accent:     lipgloss.Color("#0088ff"),
		Background: lipgloss.Color("#000000"),
		Warning:    lipgloss.Color("#ffaa00"),
		Error:      lipgloss.Color("#ff0000"),
		Bands:      []lipgloss.Color{"#dddddd", "#aaaaaa", "#777777", "#444444", "#111111"},
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Title:      lipgloss.Color("#e0f0ff"),
		Text:       lipgloss.Color("#b0d0ee"),
		Muted:      lipgloss.Color("#4488aa"),
		Accent:     lipgloss.Color("#ffd700"),
		Background: lipgloss.Color("#001a33"),
		Warning:    lipgloss.Color("#ffcc00"),
		Error:      lipgloss.Color("#ff4444"),
		Bands:      []lipgloss.Color{"#cceeff", "#66bbee", "#0077be", "#004488", "#001a55"},
	}

	Themes = []Theme{
		ThemeDefault,
		ThemeRetro,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDefault
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Band returns the colour for band i of n, spreading the theme's bands
// over n levels by interpolating between neighbours.
func (t Theme) Band(i, n int) lipgloss.Color {
	if len(t.Bands) == 0 || n <= 0 {
		return t.Text
	}
	if n == 1 {
		return t.Bands[len(t.Bands)-1]
	}
	pos := float64(i) / float64(n-1) * float64(len(t.Bands)-1)
	lo := int(pos)
	if lo >= len(t.Bands)-1 {
		return t.Bands[len(t.Bands)-1]
	}
	return Blend(t.Bands[lo], t.Bands[lo+1], pos-float64(lo))
}
