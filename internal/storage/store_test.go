package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/tables"
)

func testField(t *testing.T) *fallout.Field {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	cat, err := tables.Default(log)
	if err != nil {
		t.Fatal(err)
	}
	tabs, err := fallout.LoadTables(cat)
	if err != nil {
		t.Fatal(err)
	}
	sc := fallout.Scenario{YieldKt: 200, Wind: fallout.Wind{Speed: 8, Direction: 300}, Shear: 0.5}
	f, err := fallout.Evaluate(sc, fallout.Symmetric(60e3, 15e3, 13, 7), tabs)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestStoreSaveLoad(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	st := New(t.TempDir(), log)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	f := testField(t)
	runID, err := st.Save(f, map[string]float64{"peak": 12.5})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.InfoLevel || entry.Data["run"] != runID {
		t.Errorf("expected info entry for run %s, got %v", runID, entry)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario.YieldKt != 200 || meta.Scenario.Shear != 0.5 {
		t.Errorf("expected scenario round trip, got %+v", meta.Scenario)
	}
	if meta.Metrics["peak"] != 12.5 {
		t.Errorf("expected peak 12.5, got %f", meta.Metrics["peak"])
	}
	if meta.LowReliability {
		t.Error("expected 200 kt run to be reliable")
	}

	got, err := st.LoadField(runID)
	if err != nil {
		t.Fatalf("load field failed: %v", err)
	}
	for j := range f.Y {
		for i := range f.X {
			if got.Dose[j][i] != f.Dose[j][i] || got.Arrival[j][i] != f.Arrival[j][i] {
				t.Fatalf("node (%d, %d) differs after reload", i, j)
			}
		}
	}
	if got.X[12] != f.X[12] || got.Y[6] != f.Y[6] {
		t.Error("expected node coordinates to round trip")
	}
	if got.Source.Activity != f.Source.Activity {
		t.Errorf("expected activity %g, got %g", f.Source.Activity, got.Source.Activity)
	}
	if got.TotalDeposit() != f.TotalDeposit() {
		t.Error("expected identical total deposit after reload")
	}
	if got.Cells.Dose[3][6] != f.Cells.Dose[3][6] {
		t.Error("expected cell integrals to round trip")
	}
}

func TestStoreSaveFailureLeavesNoRun(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	dir := t.TempDir()
	st := New(dir, log)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	// NaN cannot be encoded as JSON
	runID, err := st.Save(testField(t), map[string]float64{"peak": math.NaN()})
	if err == nil {
		t.Fatal("expected error for unencodable metrics")
	}
	if runID != "" {
		t.Errorf("expected no run id, got %q", runID)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected the run directory removed, found %d entries", len(entries))
	}
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected no listed runs, got %v, %v", runs, err)
	}
}

func TestStoreList(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	dir := t.TempDir()
	st := New(dir, log)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(testField(t), nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "stray"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreMissingRun(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	st := New(t.TempDir(), log)
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if runs, err := New(filepath.Join(t.TempDir(), "absent"), log).List(); err != nil || len(runs) != 0 {
		t.Errorf("expected empty list for missing dir, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	dir := t.TempDir()
	st := New(dir, log)

	runID, err := st.Save(testField(t), nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, fieldFile} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestReadCSVRejectsShortData(t *testing.T) {
	f := testField(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, f); err != nil {
		t.Fatal(err)
	}
	grid := f.Grid
	grid.Nx++
	if _, err := ReadCSV(&buf, grid); !errors.Is(err, ErrCorruptRun) {
		t.Errorf("expected ErrCorruptRun, got %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	f := testField(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, f, map[string]float64{"coverage": 0.25}); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Scenario.YieldKt != 200 || len(got.Dose) != f.Ny() || len(got.Dose[0]) != f.Nx() {
		t.Errorf("unexpected export %+v", got.RunMetadata)
	}
	if got.Metrics["coverage"] != 0.25 {
		t.Errorf("expected coverage 0.25, got %g", got.Metrics["coverage"])
	}
}
