package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/effectsim/internal/config"
	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/storage"
	"github.com/san-kum/effectsim/internal/tables"
	"github.com/san-kum/effectsim/internal/viz"
)

var (
	dataDir   string
	logLevel  string
	themeName string

	configFile string
	preset     string

	yield       float64
	yieldUnit   string
	fission     float64
	hob         float64
	windSpeed   float64
	windUnit    string
	windFrom    float64
	shear       float64
	horizon     float64
	groundZeroX float64
	groundZeroY float64

	downwind  float64
	upwind    float64
	crosswind float64
	nx        int
	ny        int

	quantity   string
	outFile    string
	width      int
	height     int
	threshold  float64
	offset     float64
	levelCount int
	density    float64

	log = logrus.New()
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "effectsim",
		Short:        "nuclear weapon effects calculator",
		Long:         "effectsim evaluates WSEG-10 fallout fields and blast overpressure from tabulated source data",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "evaluate a fallout scenario and save the run",
		Args:  cobra.NoArgs,
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().Float64Var(&density, "density", 0, "population density per km² for expected fatalities")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show the summary of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenario presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("available presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				s := p.Scenario
				fmt.Printf("  %-16s %8g kt  wind %5.2f m/s from %3g°  shear %g (m/s)/km\n",
					name, s.YieldKt, s.WindSpeed, s.WindDirection, s.Shear)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, presetsCmd)
	rootCmd.AddCommand(displayCommands()...)
	rootCmd.AddCommand(exportCommands()...)
	rootCmd.AddCommand(tableCommands()...)
	rootCmd.AddCommand(analysisCommands()...)
	rootCmd.AddCommand(batchCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

func theme(cfg *config.Config) viz.Theme {
	if themeName != "" || cfg == nil {
		return viz.GetTheme(themeName)
	}
	return viz.GetTheme(cfg.Output.Theme)
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir, log)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func loadCatalog() (*tables.Catalog, error) {
	return tables.Default(log)
}

func loadTables() (fallout.Tables, error) {
	cat, err := loadCatalog()
	if err != nil {
		return fallout.Tables{}, err
	}
	return fallout.LoadTables(cat)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("density") && cfg.Output.Density > 0 {
		density = cfg.Output.Density
	}

	tabs, err := loadTables()
	if err != nil {
		return err
	}

	f, err := fallout.Evaluate(cfg.FalloutScenario(), cfg.FalloutGrid(), tabs)
	if err != nil {
		return err
	}
	results := doseMetrics(f, cfg.Output.Thresholds, density)

	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := st.Save(f, results)
	if err != nil {
		return err
	}

	fmt.Println(viz.RenderSummary(f, results, theme(cfg)))
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, log)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := newTabWriter()
	fmt.Fprintln(w, "ID\tTIME\tYIELD\tWIND\tFROM\tHOB\tPEAK DOSE\tLOW REL")
	for _, run := range runs {
		sc := run.Scenario
		fmt.Fprintf(w, "%s\t%s\t%g kt\t%.2f m/s\t%g°\t%g m\t%s\t%v\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			sc.YieldKt,
			sc.WindSpeed,
			sc.WindDirection,
			sc.HeightOfBurst,
			formatMetric(run.Metrics, "peak"),
			run.LowReliability,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, log)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	f, err := st.LoadField(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("saved: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Println(viz.Separator(60))
	fmt.Println(viz.RenderSummary(f, meta.Metrics, theme(nil)))
	return nil
}

func formatMetric(results map[string]float64, name string) string {
	v, ok := results[name]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.4g", v)
}
