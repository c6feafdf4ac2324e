package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/theramap/insights-cli/internal/model"
)

// XLSXOptions configures which sheet an XLSX import reads.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ParseClinicsXLSX reads clinic records from a headered XLSX sheet.
func ParseClinicsXLSX(path string, opts XLSXOptions) ([]model.ClinicRecord, error) {
	rows, idx, err := readXLSX(path, opts)
	if err != nil {
		return nil, err
	}

	var clinics []model.ClinicRecord
	for i, row := range rows {
		c, err := clinicFromRow(row, idx)
		if err != nil {
			zap.L().Warn("fetcher: skipping clinic row",
				zap.Int("row", i+2),
				zap.Error(err),
			)
			continue
		}
		clinics = append(clinics, c)
	}
	return clinics, nil
}

// ParseCentersXLSX reads population centers from a headered XLSX sheet.
func ParseCentersXLSX(path string, opts XLSXOptions) ([]model.PopulationCenter, error) {
	rows, idx, err := readXLSX(path, opts)
	if err != nil {
		return nil, err
	}

	var centers []model.PopulationCenter
	for i, row := range rows {
		pc, err := centerFromRow(row, idx)
		if err != nil {
			zap.L().Warn("fetcher: skipping center row",
				zap.Int("row", i+2),
				zap.Error(err),
			)
			continue
		}
		centers = append(centers, pc)
	}
	return centers, nil
}

func readXLSX(path string, opts XLSXOptions) ([][]string, map[string]int, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, nil, eris.New("xlsx: empty sheet")
	}

	idx := columnIndex(rowToStrings(sheet.Rows[0]))
	var rows [][]string
	for _, row := range sheet.Rows[1:] {
		rows = append(rows, rowToStrings(row))
	}
	return rows, idx, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
