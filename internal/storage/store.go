package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/effectsim/internal/fallout"
)

const (
	metadataFile = "metadata.json"
	fieldFile    = "field.csv"
)

var (
	ErrRunNotFound = errors.New("storage: run not found")
	ErrCorruptRun  = errors.New("storage: corrupt run data")
)

var fieldHeader = []string{
	"x_m", "y_m",
	"deposition_r_h", "arrival_h", "dose_r", "erd_r",
	"cell_deposit_r_h_m2", "cell_dose_r_m2", "cell_erd_r_m2",
}

type Store struct {
	baseDir string
	log     logrus.FieldLogger
}

func New(baseDir string, log logrus.FieldLogger) *Store {
	return &Store{baseDir: baseDir, log: log}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type ScenarioRecord struct {
	YieldKt         float64 `json:"yield_kt"`
	FissionFraction float64 `json:"fission_fraction"`
	HeightOfBurst   float64 `json:"height_of_burst_m"`
	GroundZeroX     float64 `json:"ground_zero_x_m"`
	GroundZeroY     float64 `json:"ground_zero_y_m"`
	WindSpeed       float64 `json:"wind_speed_mps"`
	WindDirection   float64 `json:"wind_direction_deg"`
	Shear           float64 `json:"shear_mps_per_km"`
	Horizon         float64 `json:"horizon_h"`
}

type GridRecord struct {
	DownwindMin  float64 `json:"downwind_min_m"`
	DownwindMax  float64 `json:"downwind_max_m"`
	CrosswindMin float64 `json:"crosswind_min_m"`
	CrosswindMax float64 `json:"crosswind_max_m"`
	Nx           int     `json:"nx"`
	Ny           int     `json:"ny"`
}

type SourceRecord struct {
	Table        string  `json:"table"`
	CloudHeight  float64 `json:"cloud_height_m"`
	CloudSigma   float64 `json:"cloud_sigma_m"`
	TimeConstant float64 `json:"time_constant_h"`
	Activity     float64 `json:"activity_r_h_m2"`
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Timestamp      time.Time          `json:"timestamp"`
	Scenario       ScenarioRecord     `json:"scenario"`
	Grid           GridRecord         `json:"grid"`
	Source         SourceRecord       `json:"source"`
	LowReliability bool               `json:"low_reliability"`
	Metrics        map[string]float64 `json:"metrics"`
}

func recordScenario(sc fallout.Scenario) ScenarioRecord {
	return ScenarioRecord{
		YieldKt:         sc.YieldKt,
		FissionFraction: sc.FissionFraction,
		HeightOfBurst:   sc.HeightOfBurst,
		GroundZeroX:     sc.GroundZero.X,
		GroundZeroY:     sc.GroundZero.Y,
		WindSpeed:       sc.Wind.Speed,
		WindDirection:   sc.Wind.Direction,
		Shear:           sc.Shear,
		Horizon:         sc.Horizon,
	}
}

func (r ScenarioRecord) Scenario() fallout.Scenario {
	return fallout.Scenario{
		YieldKt:         r.YieldKt,
		FissionFraction: r.FissionFraction,
		HeightOfBurst:   r.HeightOfBurst,
		GroundZero:      r2.Vec{X: r.GroundZeroX, Y: r.GroundZeroY},
		Wind:            fallout.Wind{Speed: r.WindSpeed, Direction: r.WindDirection},
		Shear:           r.Shear,
		Horizon:         r.Horizon,
	}
}

func (r GridRecord) Grid() fallout.Grid {
	return fallout.Grid{
		DownwindMin: r.DownwindMin, DownwindMax: r.DownwindMax,
		CrosswindMin: r.CrosswindMin, CrosswindMax: r.CrosswindMax,
		Nx: r.Nx, Ny: r.Ny,
	}
}

// NewMetadata describes f for saving or export.
func NewMetadata(id string, f *fallout.Field, metrics map[string]float64) RunMetadata {
	g := f.Grid
	return RunMetadata{
		ID:        id,
		Timestamp: time.Now(),
		Scenario:  recordScenario(f.Scenario),
		Grid: GridRecord{
			DownwindMin: g.DownwindMin, DownwindMax: g.DownwindMax,
			CrosswindMin: g.CrosswindMin, CrosswindMax: g.CrosswindMax,
			Nx: g.Nx, Ny: g.Ny,
		},
		Source: SourceRecord{
			Table:        f.Source.Table,
			CloudHeight:  f.Source.CloudHeight,
			CloudSigma:   f.Source.CloudSigma,
			TimeConstant: f.Source.TimeConstant,
			Activity:     f.Source.Activity,
		},
		LowReliability: f.LowReliability,
		Metrics:        metrics,
	}
}

func runName(sc fallout.Scenario) string {
	return fmt.Sprintf("wseg10_%gkt_%d", sc.YieldKt, time.Now().UnixNano())
}

// Save writes f and its metrics as a new run and returns the run id. The
// metadata is written last, so List never reports a run whose field is
// missing; on failure the run directory is removed.
func (s *Store) Save(f *fallout.Field, metrics map[string]float64) (runID string, err error) {
	runID = runName(f.Scenario)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			runID = ""
			if rmErr := os.RemoveAll(runDir); rmErr != nil {
				s.log.WithField("dir", runDir).WithError(rmErr).Warn("removing incomplete run")
			}
		}
	}()

	if err = ExportCSV(filepath.Join(runDir, fieldFile), f); err != nil {
		return
	}
	if err = writeMetadata(filepath.Join(runDir, metadataFile), NewMetadata(runID, f, metrics)); err != nil {
		return
	}

	s.log.WithFields(logrus.Fields{
		"run":      runID,
		"yield_kt": f.Scenario.YieldKt,
		"nodes":    f.Nx() * f.Ny(),
	}).Info("run saved")
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// List returns saved runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			s.log.WithField("dir", entry.Name()).WithError(err).Debug("skipping run directory")
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRun, runID, err)
	}
	return &meta, nil
}

// LoadField rebuilds the field of a saved run.
func (s *Store) LoadField(runID string) (*fallout.Field, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(s.baseDir, runID, fieldFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := ReadCSV(file, meta.Grid.Grid())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	f.Scenario = meta.Scenario.Scenario()
	f.Frame = fallout.NewFrame(f.Scenario.GroundZero, f.Scenario.Wind.Direction)
	f.LowReliability = meta.LowReliability
	f.Source = fallout.SourceTerm{
		Table:        meta.Source.Table,
		YieldKt:      meta.Scenario.YieldKt,
		CloudHeight:  meta.Source.CloudHeight,
		CloudSigma:   meta.Source.CloudSigma,
		TimeConstant: meta.Source.TimeConstant,
		Activity:     meta.Source.Activity,
	}
	return f, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one record per node, crosswind rows outermost.
func WriteCSV(w io.Writer, f *fallout.Field) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fieldHeader); err != nil {
		return err
	}
	row := make([]string, len(fieldHeader))
	for j, y := range f.Y {
		for i, x := range f.X {
			row[0] = formatFloat(x)
			row[1] = formatFloat(y)
			row[2] = formatFloat(f.Deposition[j][i])
			row[3] = formatFloat(f.Arrival[j][i])
			row[4] = formatFloat(f.Dose[j][i])
			row[5] = formatFloat(f.ERD[j][i])
			row[6] = formatFloat(cellValue(f.Cells.Deposition, i, j))
			row[7] = formatFloat(cellValue(f.Cells.Dose, i, j))
			row[8] = formatFloat(cellValue(f.Cells.ERD, i, j))
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellValue(c [][]float64, i, j int) float64 {
	if c == nil {
		return 0
	}
	return c[j][i]
}

// ReadCSV parses the output of WriteCSV for grid.
func ReadCSV(r io.Reader, grid fallout.Grid) (*fallout.Field, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(fieldHeader)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRun, err)
	}
	if len(records) != grid.Nx*grid.Ny+1 {
		return nil, fmt.Errorf("%w: expected %d nodes, got %d", ErrCorruptRun, grid.Nx*grid.Ny, len(records)-1)
	}

	f := &fallout.Field{
		Grid:       grid,
		X:          make([]float64, grid.Nx),
		Y:          make([]float64, grid.Ny),
		Deposition: matrix(grid.Ny, grid.Nx),
		Arrival:    matrix(grid.Ny, grid.Nx),
		Dose:       matrix(grid.Ny, grid.Nx),
		ERD:        matrix(grid.Ny, grid.Nx),
		Cells: fallout.CellIntegrals{
			Deposition: matrix(grid.Ny, grid.Nx),
			Dose:       matrix(grid.Ny, grid.Nx),
			ERD:        matrix(grid.Ny, grid.Nx),
		},
	}
	targets := [][][]float64{
		f.Deposition, f.Arrival, f.Dose, f.ERD,
		f.Cells.Deposition, f.Cells.Dose, f.Cells.ERD,
	}

	vals := make([]float64, len(fieldHeader))
	for n, rec := range records[1:] {
		for k, s := range rec {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrCorruptRun, n+2, err)
			}
			vals[k] = v
		}
		j, i := n/grid.Nx, n%grid.Nx
		f.X[i], f.Y[j] = vals[0], vals[1]
		for k, m := range targets {
			m[j][i] = vals[k+2]
		}
	}
	return f, nil
}

func matrix(ny, nx int) [][]float64 {
	m := make([][]float64, ny)
	for j := range m {
		m[j] = make([]float64, nx)
	}
	return m
}
