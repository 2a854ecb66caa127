package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RosterRow is one entry from the legacy patient roster. DOB stays in the
// roster's MM/DD/YYYY form until query time.
type RosterRow struct {
	FirstName string
	LastName  string
	DOB       string
}

// LoadRoster reads the roster file, choosing the parser by extension.
// Spreadsheets from ops teams arrive as .xlsx; everything else is treated
// as CSV.
func LoadRoster(path string) ([]RosterRow, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadRosterXLSX(path)
	}
	return loadRosterCSV(path)
}

func loadRosterCSV(path string) ([]RosterRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening roster file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing roster CSV: %w", err)
	}

	return rosterFromRows(records)
}

func loadRosterXLSX(path string) ([]RosterRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening roster workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("error reading roster sheet: %w", err)
	}

	return rosterFromRows(rows)
}

// rosterFromRows maps a header row plus data rows into roster entries.
// Column order is not assumed; the header names are.
func rosterFromRows(rows [][]string) ([]RosterRow, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"First Name", "Last Name", "DOB"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("roster is missing required column %q", required)
		}
	}

	cell := func(row []string, name string) string {
		i := columns[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var roster []RosterRow
	for _, row := range rows[1:] {
		entry := RosterRow{
			FirstName: cell(row, "First Name"),
			LastName:  cell(row, "Last Name"),
			DOB:       cell(row, "DOB"),
		}
		// Trailing blank spreadsheet rows are common; skip them
		if entry.FirstName == "" && entry.LastName == "" && entry.DOB == "" {
			continue
		}
		roster = append(roster, entry)
	}

	return roster, nil
}
