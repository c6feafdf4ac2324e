// Package fetcher parses clinic directory and population center data
// from CSV and XLSX sources.
package fetcher

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/theramap/insights-cli/internal/model"
)

// clinicColumns is the canonical header set for clinic imports. Column
// order in the source does not matter; unknown columns are ignored.
var clinicColumns = []string{
	"id", "name", "city", "state", "latitude", "longitude",
	"phone", "email", "website", "services", "cost_level",
	"teletherapy", "verified", "notes",
}

// centerColumns is the canonical header set for population center imports.
var centerColumns = []string{"city", "state", "latitude", "longitude", "population"}

// columnIndex maps a header row to column positions, keyed by the
// lowercased header name.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func clinicFromRow(row []string, idx map[string]int) (model.ClinicRecord, error) {
	c := model.ClinicRecord{
		ID:      cell(row, idx, "id"),
		Name:    cell(row, idx, "name"),
		City:    cell(row, idx, "city"),
		State:   strings.ToUpper(cell(row, idx, "state")),
		Phone:   cell(row, idx, "phone"),
		Email:   cell(row, idx, "email"),
		Website: cell(row, idx, "website"),
		Notes:   cell(row, idx, "notes"),
	}

	if c.Name == "" {
		return c, eris.New("fetcher: clinic row missing name")
	}

	if lat := cell(row, idx, "latitude"); lat != "" {
		v, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return c, eris.Wrapf(err, "fetcher: parse latitude for %s", c.Name)
		}
		c.Latitude = &v
	}
	if lon := cell(row, idx, "longitude"); lon != "" {
		v, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return c, eris.Wrapf(err, "fetcher: parse longitude for %s", c.Name)
		}
		c.Longitude = &v
	}

	c.Services = splitServices(cell(row, idx, "services"))
	c.Cost = parseCost(cell(row, idx, "cost_level"))
	c.Teletherapy = parseBool(cell(row, idx, "teletherapy"))
	c.Verified = parseBool(cell(row, idx, "verified"))

	return c, nil
}

func centerFromRow(row []string, idx map[string]int) (model.PopulationCenter, error) {
	pc := model.PopulationCenter{
		City:  cell(row, idx, "city"),
		State: strings.ToUpper(cell(row, idx, "state")),
	}

	if pc.City == "" {
		return pc, eris.New("fetcher: center row missing city")
	}

	var err error
	if pc.Latitude, err = strconv.ParseFloat(cell(row, idx, "latitude"), 64); err != nil {
		return pc, eris.Wrapf(err, "fetcher: parse latitude for %s", pc.City)
	}
	if pc.Longitude, err = strconv.ParseFloat(cell(row, idx, "longitude"), 64); err != nil {
		return pc, eris.Wrapf(err, "fetcher: parse longitude for %s", pc.City)
	}
	if pc.Population, err = strconv.Atoi(cell(row, idx, "population")); err != nil {
		return pc, eris.Wrapf(err, "fetcher: parse population for %s", pc.City)
	}

	return pc, nil
}

// splitServices splits a semicolon-separated service list into trimmed,
// non-empty tags.
func splitServices(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func parseCost(s string) model.CostLevel {
	switch strings.ToLower(s) {
	case "free":
		return model.CostFree
	case "low-cost", "low cost", "sliding-scale", "sliding scale":
		return model.CostLowCost
	default:
		return model.CostMarketRate
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}
