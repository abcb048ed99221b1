// Package ingest loads ensemble CSV exports and turns them into datasets the
// selector can work on.
//
// Parameter files hold one row per (ENSEMBLE, REAL) with one column per
// input parameter. Response files may hold several rows per realization
// (for example one per DATE or zone) and are filtered and then aggregated to
// a single value per realization before being joined with the parameters.
package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/stepwise/pkg/errors"
)

// Well-known column names in ensemble exports.
const (
	RealColumn     = "REAL"
	EnsembleColumn = "ENSEMBLE"
	DateColumn     = "DATE"
)

// Frame is a table of raw string cells with a header row.
type Frame struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// ReadCSV reads a comma separated table with a header row.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewModelError("ingest.ReadCSV", "empty input", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.Wrap(err, "ingest.ReadCSV: header")
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "ingest.ReadCSV")
	}
	return NewFrame(header, rows)
}

// NewFrame builds a Frame. Every row must have len(header) cells.
func NewFrame(header []string, rows [][]string) (*Frame, error) {
	f := &Frame{
		header: append([]string(nil), header...),
		index:  make(map[string]int, len(header)),
		rows:   rows,
	}
	for i, h := range f.header {
		h = strings.TrimSpace(h)
		f.header[i] = h
		if _, dup := f.index[h]; dup {
			return nil, errors.NewConfigurationError("ingest.NewFrame", "column", "duplicate column name", h)
		}
		f.index[h] = i
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, errors.NewInputShapeError("ingest", "row "+strconv.Itoa(i+1),
				[]int{len(header)}, []int{len(row)})
		}
	}
	return f, nil
}

// Header returns the column names.
func (f *Frame) Header() []string { return append([]string(nil), f.header...) }

// NRows returns the number of data rows.
func (f *Frame) NRows() int { return len(f.rows) }

// Has reports whether the frame has the column.
func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Values returns the cells of one column.
func (f *Frame) Values(col string) ([]string, error) {
	j, ok := f.index[col]
	if !ok {
		return nil, errors.NewConfigurationError("Frame.Values", "column", "not found", col)
	}
	out := make([]string, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[j]
	}
	return out, nil
}

// Unique returns the distinct values of col in order of first appearance.
func (f *Frame) Unique(col string) ([]string, error) {
	values, err := f.Values(col)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

// Ensembles lists the ensembles present in the frame.
func (f *Frame) Ensembles() ([]string, error) {
	return f.Unique(EnsembleColumn)
}

func (f *Frame) where(keep func(row []string) bool) *Frame {
	out := &Frame{header: f.header, index: f.index}
	for _, row := range f.rows {
		if keep(row) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// FilterEquals keeps rows whose col cell matches any of values. Cells match
// when the strings are equal or when both parse to the same number.
func (f *Frame) FilterEquals(col string, values ...string) (*Frame, error) {
	j, ok := f.index[col]
	if !ok {
		return nil, errors.NewConfigurationError("Frame.FilterEquals", "column", "not found", col)
	}
	return f.where(func(row []string) bool {
		for _, v := range values {
			if cellEquals(row[j], v) {
				return true
			}
		}
		return false
	}), nil
}

// FilterRange keeps rows whose col cell is a number within [lo, hi].
func (f *Frame) FilterRange(col string, lo, hi float64) (*Frame, error) {
	j, ok := f.index[col]
	if !ok {
		return nil, errors.NewConfigurationError("Frame.FilterRange", "column", "not found", col)
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return f.where(func(row []string) bool {
		v, err := parseFloat(row[j])
		return err == nil && v >= lo && v <= hi
	}), nil
}

// Drop returns a frame without the named columns. Unknown names are ignored.
func (f *Frame) Drop(cols ...string) *Frame {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	var keep []int
	var header []string
	for j, h := range f.header {
		if !drop[h] {
			keep = append(keep, j)
			header = append(header, h)
		}
	}
	rows := make([][]string, len(f.rows))
	for i, row := range f.rows {
		r := make([]string, len(keep))
		for k, j := range keep {
			r[k] = row[j]
		}
		rows[i] = r
	}
	out, _ := NewFrame(header, rows)
	return out
}

// Sanitized renames columns so that ':' and ',' become '_'. Renaming that
// produces duplicate names is an error.
func (f *Frame) Sanitized() (*Frame, error) {
	header := make([]string, len(f.header))
	for i, h := range f.header {
		header[i] = SanitizeName(h)
	}
	return NewFrame(header, f.rows)
}

// SanitizeName replaces ':' and ',' with '_'.
func SanitizeName(name string) string {
	return strings.NewReplacer(":", "_", ",", "_").Replace(name)
}

func cellEquals(cell, want string) bool {
	if strings.TrimSpace(cell) == strings.TrimSpace(want) {
		return true
	}
	a, errA := parseFloat(cell)
	b, errB := parseFloat(want)
	return errA == nil && errB == nil && a == b
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Keep returns a frame with only the named columns, in the given order.
func (f *Frame) Keep(cols ...string) (*Frame, error) {
	idx := make([]int, len(cols))
	for k, c := range cols {
		j, ok := f.index[c]
		if !ok {
			return nil, errors.NewConfigurationError("Frame.Keep", "column", "not found", c)
		}
		idx[k] = j
	}
	rows := make([][]string, len(f.rows))
	for i, row := range f.rows {
		r := make([]string, len(idx))
		for k, j := range idx {
			r[k] = row[j]
		}
		rows[i] = r
	}
	return NewFrame(cols, rows)
}
