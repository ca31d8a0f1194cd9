// Package export writes aggregated result tables to files. Two formats are
// supported: CSV for pipeline consumption and Excel for hand-off to people,
// the latter with a second sheet recording the query that produced the data.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
)

// Option is one query parameter recorded alongside exported data so a
// spreadsheet remains self-describing after it leaves the machine.
type Option struct {
	Name  string
	Value string
}

// QueryOptions renders the request fields worth recording with an export.
func QueryOptions(req domain.QueryRequest) []Option {
	opts := []Option{
		{Name: "start_date", Value: req.StartDate},
		{Name: "end_date", Value: req.EndDate},
		{Name: "search_type", Value: req.SearchType},
		{Name: "dimensions", Value: fmt.Sprintf("%v", req.Dimensions)},
	}
	if req.Account != "" {
		opts = append(opts, Option{Name: "account", Value: req.Account})
	}
	if !req.Filter.IsZero() {
		opts = append(opts, Option{Name: "domain_filter", Value: req.Filter.Domain()})
	}
	return opts
}

// cellString renders one table cell. Absent cells are empty, matching how
// nulls read in a spreadsheet.
func cellString(row domain.Row, col string) string {
	v, ok := row[col]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// WriteCSV writes the table to path with a header row.
func WriteCSV(path string, table domain.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			record[i] = cellString(row, col)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// Sheet names in the Excel workbook.
const (
	dataSheet    = "Data"
	optionsSheet = "Options"
)

// WriteExcel writes the table to an .xlsx workbook at path. The Data sheet
// holds the rows; the Options sheet records the query parameters.
func WriteExcel(path string, table domain.Table, options []Option) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the data sheet.
	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("naming data sheet: %w", err)
	}

	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	for i, row := range table.Rows {
		cells := make([]any, len(table.Columns))
		for j, col := range table.Columns {
			if v, ok := row[col]; ok {
				cells[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		if err := f.SetSheetRow(dataSheet, cell, &cells); err != nil {
			return fmt.Errorf("writing data row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(optionsSheet); err != nil {
		return fmt.Errorf("creating options sheet: %w", err)
	}
	sort.SliceStable(options, func(i, j int) bool { return options[i].Name < options[j].Name })
	for i, opt := range options {
		row := []any{opt.Name, opt.Value}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		if err := f.SetSheetRow(optionsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing option row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
