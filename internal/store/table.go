// Package store abstracts the spreadsheet that tracking numbers are read
// from and enriched results are written back to. CSV and XLSX files are
// supported, selected by file extension.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Canonical column headers in the output table. The tracking-number column
// is renamed to TrackingHeader regardless of which alias the source used;
// the derived columns are appended after the original columns.
const (
	TrackingHeader   = "Tracking Number"
	StatusHeader     = "Stav"
	LastUpdateHeader = "Last Update"
	ActionHeader     = "Action Required"
)

// OutputSuffix is inserted before the extension when no explicit output
// path is given, so repeated runs land on the same destination.
const OutputSuffix = "_updated"

// SchemaError reports a source table with no recognizable tracking-number
// column. It carries both the columns found and the accepted aliases so the
// user can fix the header.
type SchemaError struct {
	Found    []string
	Accepted []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf(
		"could not find tracking number column; available columns: %s; expected one of: %s",
		strings.Join(e.Found, ", "), strings.Join(e.Accepted, ", "),
	)
}

// Record is one row of the table. Status, LastUpdate and ActionRequired are
// the derived columns, mutated in place by the sync loop and written out on
// every persist.
type Record struct {
	TrackingNumber string
	Status         string
	LastUpdate     string
	ActionRequired string

	// cells holds the row's original (non-derived) columns.
	cells []string
}

// Table is a loaded spreadsheet keyed by the tracking-number column. Row
// order is the source order and is preserved across persists.
type Table struct {
	source  string
	headers []string
	records []*Record
}

// Load reads the table at path and locates the tracking-number column among
// the accepted header aliases, checking aliases in order. The column is
// renamed to the canonical header. Derived columns left over from a
// previous run are absorbed rather than duplicated.
func Load(path string, aliases []string) (*Table, error) {
	grid, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, &SchemaError{Accepted: aliases}
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = strings.TrimSpace(h)
	}

	trackingIdx := -1
	for _, alias := range aliases {
		for i, h := range headers {
			if h == alias {
				trackingIdx = i
				break
			}
		}
		if trackingIdx >= 0 {
			break
		}
	}
	if trackingIdx < 0 {
		return nil, &SchemaError{Found: headers, Accepted: aliases}
	}
	headers[trackingIdx] = TrackingHeader

	// A source that already carries derived columns (for example the
	// _updated file of an earlier run) keeps its values instead of growing
	// duplicate columns.
	derived := map[string]int{StatusHeader: -1, LastUpdateHeader: -1, ActionHeader: -1}
	var originals []int
	for i, h := range headers {
		if _, ok := derived[h]; ok && derived[h] < 0 {
			derived[h] = i
			continue
		}
		originals = append(originals, i)
	}

	t := &Table{source: path}
	for _, i := range originals {
		t.headers = append(t.headers, headers[i])
	}

	for _, row := range grid[1:] {
		rec := &Record{}
		cell := func(idx int) string {
			if idx >= 0 && idx < len(row) {
				return row[idx]
			}
			return ""
		}
		for _, i := range originals {
			rec.cells = append(rec.cells, cell(i))
		}
		rec.TrackingNumber = cell(trackingIdx)
		rec.Status = cell(derived[StatusHeader])
		rec.LastUpdate = cell(derived[LastUpdateHeader])
		rec.ActionRequired = cell(derived[ActionHeader])
		t.records = append(t.records, rec)
	}

	return t, nil
}

// Records returns the table's rows in source order. Callers mutate the
// derived fields in place; Persist writes whatever is current.
func (t *Table) Records() []*Record {
	return t.records
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.records)
}

// Source returns the path the table was loaded from.
func (t *Table) Source() string {
	return t.source
}

// DefaultOutputPath derives the destination used when none is given:
// the source path with OutputSuffix inserted before the extension.
func DefaultOutputPath(source string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + OutputSuffix + ext
}

// Persist writes the full table (original columns plus derived columns) to
// dest, or to DefaultOutputPath(source) when dest is empty. The write goes
// to a temporary file in the destination directory and is renamed into
// place, so a failed persist never leaves a partial destination.
func (t *Table) Persist(dest string) error {
	if dest == "" {
		dest = DefaultOutputPath(t.source)
	}

	grid := make([][]string, 0, len(t.records)+1)
	header := make([]string, 0, len(t.headers)+3)
	header = append(header, t.headers...)
	header = append(header, StatusHeader, LastUpdateHeader, ActionHeader)
	grid = append(grid, header)

	for _, rec := range t.records {
		row := make([]string, 0, len(header))
		row = append(row, rec.cells...)
		for len(row) < len(t.headers) {
			row = append(row, "")
		}
		row = append(row, rec.Status, rec.LastUpdate, rec.ActionRequired)
		grid = append(grid, row)
	}

	dir := filepath.Dir(dest)
	tmp := filepath.Join(dir, "."+filepath.Base(dest)+".tmp"+filepath.Ext(dest))
	if err := writeGrid(tmp, grid); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
