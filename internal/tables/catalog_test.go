package tables

import (
	"encoding/csv"
	"errors"
	"io/fs"
	"math"
	"strconv"
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/effectsim/internal/graph"
)

func loadDefault(t *testing.T) *Catalog {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	c, err := Default(log)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return c
}

func TestDefaultCatalog(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	c, err := Default(log)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	want := map[string]string{
		WSEG10SourceLow:        KindGrid,
		WSEG10SourceHigh:       KindGrid,
		WSEG10Bio:              KindGrid,
		SovietMachOverpressure: KindFamily,
	}
	list := c.List()
	if len(list) != len(want) {
		t.Fatalf("expected %d tables, got %d", len(want), len(list))
	}
	for _, info := range list {
		if want[info.ID] != info.Kind {
			t.Errorf("%s: expected kind %s, got %s", info.ID, want[info.ID], info.Kind)
		}
		if info.Samples == 0 {
			t.Errorf("%s: expected samples", info.ID)
		}
	}
	if len(hook.Entries) != len(want) {
		t.Errorf("expected one debug entry per table, got %d", len(hook.Entries))
	}
}

// Every record in every shipped file must come back bit for bit.
func TestShippedTablesRoundTrip(t *testing.T) {
	c := loadDefault(t)
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		t.Fatal(err)
	}

	for _, info := range c.List() {
		t.Run(info.ID, func(t *testing.T) {
			f, err := sub.Open(info.File)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			rows, err := csv.NewReader(f).ReadAll()
			if err != nil {
				t.Fatal(err)
			}

			nAxes := len(info.Axes)
			for n, row := range rows[1:] {
				vals := make([]float64, len(row))
				for i, s := range row {
					vals[i], err = strconv.ParseFloat(s, 64)
					if err != nil {
						t.Fatal(err)
					}
				}
				coords, want := vals[:nAxes], vals[nAxes:]

				if info.Kind == KindFamily {
					got, err := c.Interpolate(info.ID, coords...)
					if err != nil {
						t.Fatalf("record %d: %v", n+1, err)
					}
					if got != want[0] {
						t.Errorf("record %d: expected %v, got %v", n+1, want[0], got)
					}
					continue
				}

				tab, err := c.Table(info.ID)
				if err != nil {
					t.Fatal(err)
				}
				got, err := tab.InterpolateAll(coords...)
				if err != nil {
					t.Fatalf("record %d: %v", n+1, err)
				}
				for i := range want {
					if got[i] != want[i] {
						t.Errorf("record %d column %s: expected %v, got %v", n+1, info.Columns[i], want[i], got[i])
					}
				}
			}
		})
	}
}

func TestLowYieldSourceUpperBound(t *testing.T) {
	c := loadDefault(t)

	if _, err := c.Interpolate(WSEG10SourceLow, 10); err != nil {
		t.Fatalf("expected 10 kt inside the low-yield table, got %v", err)
	}

	_, err := c.Interpolate(WSEG10SourceLow, math.Nextafter(10, 11))
	if !errors.Is(err, graph.ErrOutOfDomain) {
		t.Fatalf("expected ErrOutOfDomain just above 10 kt, got %v", err)
	}
	var ood *graph.OutOfDomainError
	if !errors.As(err, &ood) {
		t.Fatalf("expected *graph.OutOfDomainError, got %T", err)
	}
	if ood.Axis != "yield_kt" || ood.Bound != graph.Upper || ood.Limit != 10 {
		t.Errorf("expected yield_kt upper bound 10, got %s %s %g", ood.Axis, ood.Bound, ood.Limit)
	}
	if ood.Table != WSEG10SourceLow {
		t.Errorf("expected table %s, got %s", WSEG10SourceLow, ood.Table)
	}
}

func TestSourceRegimesMeet(t *testing.T) {
	c := loadDefault(t)
	lo, _ := c.Table(WSEG10SourceLow)
	hi, _ := c.Table(WSEG10SourceHigh)
	a, err := lo.InterpolateAll(10)
	if err != nil {
		t.Fatal(err)
	}
	b, err := hi.InterpolateAll(10)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("column %d: regimes disagree at 10 kt: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestBioDecreasesWithArrival(t *testing.T) {
	c := loadDefault(t)
	prev := math.Inf(1)
	for ta := 0.5; ta <= 720; ta *= 1.1 {
		v, err := c.Interpolate(WSEG10Bio, ta)
		if err != nil {
			t.Fatalf("t=%g: %v", ta, err)
		}
		if v >= prev {
			t.Fatalf("bio not decreasing at %g h: %g after %g", ta, v, prev)
		}
		prev = v
	}
	if _, err := c.Interpolate(WSEG10Bio, 721); !errors.Is(err, graph.ErrOutOfDomain) {
		t.Errorf("expected ErrOutOfDomain past 30 days, got %v", err)
	}
}

func TestUnknownTable(t *testing.T) {
	c := loadDefault(t)
	if _, err := c.Interpolate("nope", 1); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable, got %v", err)
	}
	if _, err := c.Table(SovietMachOverpressure); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable for a family requested as grid, got %v", err)
	}
	if _, err := c.Family(WSEG10Bio); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable for a grid requested as family, got %v", err)
	}
}

const gridManifest = `tables:
  - id: t
    kind: grid
    file: t.csv
    axes:
      - {name: a}
      - {name: b, scale: log}
    columns:
      - {name: v}
`

const familyManifest = `tables:
  - id: f
    kind: family
    file: f.csv
    param: {name: p}
    axes:
      - {name: x}
    columns:
      - {name: v}
`

func TestLoadGridAnyRecordOrder(t *testing.T) {
	fsys := fstest.MapFS{
		ManifestFile: {Data: []byte(gridManifest)},
		"t.csv":      {Data: []byte("a,b,v\n1,10,4\n0,1,1\n1,1,3\n0,10,2\n")},
	}
	log, _ := logtest.NewNullLogger()
	c, err := Load(fsys, log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := c.Interpolate("t", 0.5, math.Sqrt(10))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-2.5) > 1e-12 {
		t.Errorf("expected 2.5, got %g", got)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		file     string
		data     string
	}{
		{"bad header", gridManifest, "t.csv", "a,c,v\n0,1,1\n"},
		{"missing cell", gridManifest, "t.csv", "a,b,v\n0,1,1\n0,10,2\n1,1,3\n"},
		{"repeated cell", gridManifest, "t.csv", "a,b,v\n0,1,1\n0,1,2\n1,1,3\n1,10,4\n"},
		{"not a number", gridManifest, "t.csv", "a,b,v\n0,1,x\n"},
		{"split curve", familyManifest, "f.csv", "p,x,v\n1,0,0\n1,1,1\n2,0,0\n2,1,1\n1,2,2\n"},
		{"empty", familyManifest, "f.csv", "p,x,v\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				ManifestFile: {Data: []byte(tt.manifest)},
				tt.file:      {Data: []byte(tt.data)},
			}
			log, _ := logtest.NewNullLogger()
			if _, err := Load(fsys, log); !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestLoadRejectsUnorderedFamily(t *testing.T) {
	fsys := fstest.MapFS{
		ManifestFile: {Data: []byte(familyManifest)},
		"f.csv":      {Data: []byte("p,x,v\n1,0,0\n1,2,1\n1,1,2\n2,0,0\n2,1,1\n")},
	}
	log, _ := logtest.NewNullLogger()
	if _, err := Load(fsys, log); !errors.Is(err, graph.ErrInvalidTable) {
		t.Errorf("expected graph.ErrInvalidTable, got %v", err)
	}
}
