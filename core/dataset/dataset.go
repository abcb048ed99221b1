// Package dataset holds the rectangular numeric table the selector works on:
// one row per realization, ordered uniquely named float64 columns.
//
// A Dataset is immutable. Accessors hand out copies and every derivation
// (WithColumns, Drop, Select) returns a new Dataset, so a caller's table can
// never be modified by the engine.
package dataset

import (
	"github.com/YuminosukeSato/stepwise/core/parallel"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Column is a named numeric series.
type Column struct {
	Name   string
	Values []float64
}

// Dataset is an ordered set of equally long numeric columns.
type Dataset struct {
	names []string
	index map[string]int
	cols  [][]float64
	nrows int
}

// New builds a Dataset from columns. Values are copied. All columns must
// have the same length and distinct non-empty names.
func New(columns ...Column) (*Dataset, error) {
	d := &Dataset{
		names: make([]string, 0, len(columns)),
		index: make(map[string]int, len(columns)),
		cols:  make([][]float64, 0, len(columns)),
	}
	for i, c := range columns {
		if i == 0 {
			d.nrows = len(c.Values)
		}
		if err := d.add(c.Name, append([]float64(nil), c.Values...)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MustNew is New that panics on error. Intended for tests and literals.
func MustNew(columns ...Column) *Dataset {
	d, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dataset) add(name string, values []float64) error {
	if name == "" {
		return errors.NewConfigurationError("dataset.New", "column", "name must not be empty", nil)
	}
	if _, dup := d.index[name]; dup {
		return errors.NewConfigurationError("dataset.New", "column", "duplicate column name", name)
	}
	if len(values) != d.nrows {
		return errors.NewInputShapeError("dataset", name, []int{d.nrows}, []int{len(values)})
	}
	d.index[name] = len(d.names)
	d.names = append(d.names, name)
	d.cols = append(d.cols, values)
	return nil
}

// NRows returns the number of realizations.
func (d *Dataset) NRows() int { return d.nrows }

// NCols returns the number of columns.
func (d *Dataset) NCols() int { return len(d.names) }

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	return append([]string(nil), d.names...)
}

// Has reports whether the dataset has a column called name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]float64, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, errors.NewConfigurationError("Dataset.Column", "column", "not found", name)
	}
	return append([]float64(nil), d.cols[i]...), nil
}

// WithColumns returns a new Dataset with extra appended after the existing
// columns. The receiver is unchanged.
func (d *Dataset) WithColumns(extra ...Column) (*Dataset, error) {
	out := d.shallowCopy(len(extra))
	if len(d.names) == 0 && len(extra) > 0 {
		out.nrows = len(extra[0].Values)
	}
	for _, c := range extra {
		if err := out.add(c.Name, append([]float64(nil), c.Values...)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Drop returns a new Dataset without the named columns. Unknown names are ignored.
func (d *Dataset) Drop(names ...string) *Dataset {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := &Dataset{index: make(map[string]int), nrows: d.nrows}
	for i, n := range d.names {
		if skip[n] {
			continue
		}
		out.index[n] = len(out.names)
		out.names = append(out.names, n)
		out.cols = append(out.cols, d.cols[i])
	}
	return out
}

// Select returns a new Dataset with only the named columns, in the given order.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	out := &Dataset{index: make(map[string]int, len(names)), nrows: d.nrows}
	for _, n := range names {
		i, ok := d.index[n]
		if !ok {
			return nil, errors.NewConfigurationError("Dataset.Select", "column", "not found", n)
		}
		if err := out.add(n, d.cols[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Matrix returns an NRows×len(names) matrix of the named columns.
// With intercept true a trailing column of ones is appended.
func (d *Dataset) Matrix(intercept bool, names ...string) (*mat.Dense, error) {
	cols := make([][]float64, len(names))
	for j, n := range names {
		i, ok := d.index[n]
		if !ok {
			return nil, errors.NewConfigurationError("Dataset.Matrix", "column", "not found", n)
		}
		cols[j] = d.cols[i]
	}
	return DesignMatrix(d.nrows, cols, intercept)
}

// Vector returns the named column as a vector.
func (d *Dataset) Vector(name string) (*mat.VecDense, error) {
	values, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.NewModelError("Dataset.Vector", "empty data", errors.ErrEmptyData)
	}
	return mat.NewVecDense(len(values), values), nil
}

// DesignMatrix lays out cols side by side as an n×len(cols) matrix, plus a
// trailing ones column when intercept is set.
func DesignMatrix(n int, cols [][]float64, intercept bool) (*mat.Dense, error) {
	width := len(cols)
	if intercept {
		width++
	}
	if n == 0 || width == 0 {
		return nil, errors.NewModelError("dataset.DesignMatrix", "empty data", errors.ErrEmptyData)
	}
	for j, c := range cols {
		if len(c) != n {
			return nil, errors.NewDimensionError("dataset.DesignMatrix", n, len(c), j)
		}
	}

	X := mat.NewDense(n, width, nil)
	parallel.Rows(n, func(start, end int) {
		for i := start; i < end; i++ {
			for j, c := range cols {
				X.Set(i, j, c[i])
			}
			if intercept {
				X.Set(i, width-1, 1.0)
			}
		}
	})
	return X, nil
}

func (d *Dataset) shallowCopy(extra int) *Dataset {
	out := &Dataset{
		names: make([]string, len(d.names), len(d.names)+extra),
		index: make(map[string]int, len(d.names)+extra),
		cols:  make([][]float64, len(d.cols), len(d.cols)+extra),
		nrows: d.nrows,
	}
	copy(out.names, d.names)
	copy(out.cols, d.cols)
	for k, v := range d.index {
		out.index[k] = v
	}
	return out
}
