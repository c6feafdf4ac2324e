package fetcher

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/theramap/insights-cli/internal/model"
)

// ParseClinicsCSV reads clinic records from a headered CSV stream.
// Rows that fail to parse are skipped and logged, not fatal; a single
// bad row in a large directory export should not sink the import.
func ParseClinicsCSV(r io.Reader) ([]model.ClinicRecord, error) {
	rows, idx, err := readCSV(r)
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

// ParseCentersCSV reads population centers from a headered CSV stream.
func ParseCentersCSV(r io.Reader) ([]model.PopulationCenter, error) {
	rows, idx, err := readCSV(r)
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

func readCSV(r io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, eris.New("csv: empty input")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: read header")
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "csv: read row")
		}
		rows = append(rows, record)
	}

	return rows, columnIndex(header), nil
}
