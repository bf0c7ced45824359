package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/effectsim/internal/fallout"
)

type ExportData struct {
	RunMetadata
	X          []float64   `json:"x_m"`
	Y          []float64   `json:"y_m"`
	Deposition [][]float64 `json:"deposition_r_h"`
	Arrival    [][]float64 `json:"arrival_h"`
	Dose       [][]float64 `json:"dose_r"`
	ERD        [][]float64 `json:"erd_r"`

	CellDeposit [][]float64 `json:"cell_deposit_r_h_m2"`
	CellDose    [][]float64 `json:"cell_dose_r_m2"`
	CellERD     [][]float64 `json:"cell_erd_r_m2"`
}

func exportData(f *fallout.Field, metrics map[string]float64) ExportData {
	return ExportData{
		RunMetadata: NewMetadata("", f, metrics),
		X:           f.X,
		Y:           f.Y,
		Deposition:  f.Deposition,
		Arrival:     f.Arrival,
		Dose:        f.Dose,
		ERD:         f.ERD,
		CellDeposit: f.Cells.Deposition,
		CellDose:    f.Cells.Dose,
		CellERD:     f.Cells.ERD,
	}
}

// WriteJSON encodes the field, its scenario and metrics to w.
func WriteJSON(w io.Writer, f *fallout.Field, metrics map[string]float64) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(f, metrics))
}

func ExportJSON(path string, f *fallout.Field, metrics map[string]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, f, metrics)
}

func ExportCSV(path string, f *fallout.Field) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
