package services

import (
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
	"github.com/sitepulse-labs/sitepulse-cli/internal/logger"
)

// Aggregate concatenates per-site frames into one table. Empty frames are
// skipped; remaining frames merge by column-set union so a site missing a
// column loses no rows (missing cells stay null). The first non-empty frame
// fixes the shape; frames tagged with the other dimension layout are dropped
// with a warning, so a "keys" column and key-1..key-N columns never land in
// the same table. The result is always a non-nil table, explicitly empty
// when every input was.
func Aggregate(frames []domain.Frame) domain.Table {
	table := domain.Table{Columns: []string{}, Rows: []domain.Row{}}

	var shape domain.Shape
	shapeFixed := false
	seen := make(map[string]bool)
	for _, f := range frames {
		if f.Empty() {
			continue
		}
		if !shapeFixed {
			shape = f.Shape
			shapeFixed = true
		} else if f.Shape != shape {
			logger.Warn("Dropping %d row(s) with mismatched dimension layout", len(f.Rows))
			continue
		}
		for _, col := range f.Columns {
			if !seen[col] {
				seen[col] = true
				table.Columns = append(table.Columns, col)
			}
		}
		table.Rows = append(table.Rows, f.Rows...)
	}
	return table
}
