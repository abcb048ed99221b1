package ingest

import (
	"math"
	"sort"
	"strings"

	"github.com/YuminosukeSato/stepwise/core/dataset"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"github.com/YuminosukeSato/stepwise/pkg/log"
)

// Aggregation combines several response rows of one realization.
type Aggregation string

const (
	AggregateSum  Aggregation = "sum"
	AggregateMean Aggregation = "mean"
)

// ParseAggregation validates an aggregation name.
func ParseAggregation(s string) (Aggregation, error) {
	switch a := Aggregation(strings.ToLower(strings.TrimSpace(s))); a {
	case AggregateSum, AggregateMean:
		return a, nil
	default:
		return "", errors.NewConfigurationError("ingest.ParseAggregation", "aggregation", "expected sum or mean", s)
	}
}

// Numeric converts the frame into a dataset, skipping the columns in drop.
// Empty or unparsable cells become NaN. Columns without a single numeric
// cell are left out and reported with a DataConversionWarning.
func (f *Frame) Numeric(drop ...string) (*dataset.Dataset, error) {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	logger := log.GetLogger().With(log.ComponentKey, "ingest")

	var cols []dataset.Column
	for j, name := range f.header {
		if skip[name] {
			continue
		}
		values := make([]float64, len(f.rows))
		parsed := 0
		for i, row := range f.rows {
			v, err := parseFloat(row[j])
			if err != nil {
				values[i] = math.NaN()
				continue
			}
			values[i] = v
			parsed++
		}
		if parsed == 0 && len(f.rows) > 0 {
			errors.Warn(errors.NewDataConversionWarning(name, "string", "float64", "no numeric values, column dropped"))
			logger.Warn("Dropping non-numeric column",
				log.OperationKey, log.OperationIngest,
				log.ColumnKey, name,
			)
			continue
		}
		cols = append(cols, dataset.Column{Name: name, Values: values})
	}
	return dataset.New(cols...)
}

// AggregateByRealization groups response rows by REAL and combines the
// response column with agg. The result has columns REAL and response,
// ordered by realization number.
func AggregateByRealization(f *Frame, response string, agg Aggregation) (*dataset.Dataset, error) {
	const op = "ingest.AggregateByRealization"
	if _, err := ParseAggregation(string(agg)); err != nil {
		return nil, err
	}
	reals, err := f.Values(RealColumn)
	if err != nil {
		return nil, err
	}
	values, err := f.Values(response)
	if err != nil {
		return nil, err
	}

	type group struct {
		sum   float64
		count int
	}
	groups := make(map[float64]*group)
	for i := range reals {
		r, err := parseFloat(reals[i])
		if err != nil {
			return nil, errors.NewConfigurationError(op, RealColumn, "realization must be numeric", reals[i])
		}
		v, err := parseFloat(values[i])
		if err != nil {
			v = math.NaN()
		}
		g, ok := groups[r]
		if !ok {
			g = &group{}
			groups[r] = g
		}
		g.sum += v
		g.count++
	}

	keys := make([]float64, 0, len(groups))
	for r := range groups {
		keys = append(keys, r)
	}
	sort.Float64s(keys)

	out := make([]float64, len(keys))
	for i, r := range keys {
		g := groups[r]
		out[i] = g.sum
		if agg == AggregateMean {
			out[i] /= float64(g.count)
		}
	}
	return dataset.New(
		dataset.Column{Name: RealColumn, Values: keys},
		dataset.Column{Name: response, Values: out},
	)
}

// MergeOnRealization inner-joins responses and parameters on REAL. The
// result holds the response columns followed by the parameter columns, in
// the order of responses' rows, without REAL, ENSEMBLE and forceOut.
func MergeOnRealization(params, responses *dataset.Dataset, forceOut ...string) (*dataset.Dataset, error) {
	const op = "ingest.MergeOnRealization"
	pReal, err := params.Column(RealColumn)
	if err != nil {
		return nil, err
	}
	rReal, err := responses.Column(RealColumn)
	if err != nil {
		return nil, err
	}

	rowOf := make(map[float64]int, len(pReal))
	for i, r := range pReal {
		if _, dup := rowOf[r]; dup {
			return nil, errors.NewConfigurationError(op, RealColumn, "duplicate realization in parameters", r)
		}
		rowOf[r] = i
	}
	var pRows, rRows []int
	for i, r := range rReal {
		if j, ok := rowOf[r]; ok {
			rRows = append(rRows, i)
			pRows = append(pRows, j)
		}
	}
	if len(rRows) == 0 {
		return nil, errors.NewConfigurationError(op, RealColumn, "no common realizations", nil)
	}

	skip := map[string]bool{RealColumn: true, EnsembleColumn: true}
	for _, c := range forceOut {
		skip[c] = true
	}

	var cols []dataset.Column
	take := func(ds *dataset.Dataset, rows []int) error {
		for _, name := range ds.Names() {
			if skip[name] {
				continue
			}
			src, err := ds.Column(name)
			if err != nil {
				return err
			}
			dst := make([]float64, len(rows))
			for k, i := range rows {
				dst[k] = src[i]
			}
			cols = append(cols, dataset.Column{Name: name, Values: dst})
		}
		return nil
	}
	if err := take(responses, rRows); err != nil {
		return nil, err
	}
	if err := take(params, pRows); err != nil {
		return nil, err
	}
	return dataset.New(cols...)
}

// CheckRealizations verifies that both frames contain the same set of
// (ENSEMBLE, REAL) runs.
func CheckRealizations(params, responses *Frame) error {
	for _, col := range []string{EnsembleColumn, RealColumn} {
		a, err := params.Unique(col)
		if err != nil {
			return err
		}
		b, err := responses.Unique(col)
		if err != nil {
			return err
		}
		sort.Strings(a)
		sort.Strings(b)
		if strings.Join(a, "\x00") != strings.Join(b, "\x00") {
			return errors.NewValueError("ingest.CheckRealizations",
				"parameter and response files have different runs in "+col)
		}
	}
	return nil
}
