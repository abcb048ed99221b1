// Package interaction generates multiplicative interaction columns.
//
// For degree d every unordered combination of 2..d distinct predictor
// columns becomes a new column holding the row-wise product of its members.
// Combinations are enumerated in input column order, so names such as "A*B"
// are reproducible across runs.
package interaction

import (
	"strings"

	"github.com/YuminosukeSato/stepwise/core/dataset"
	"github.com/YuminosukeSato/stepwise/core/parallel"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
)

// Separator joins constituent names in an interaction term name.
const Separator = "*"

// MaxGeneratedColumns bounds how many columns Expand will materialize.
const MaxGeneratedColumns = 1 << 16

// Spec describes one generated interaction column.
type Spec struct {
	Name         string
	Constituents []string
}

// Order is the number of constituents.
func (s Spec) Order() int { return len(s.Constituents) }

// Name joins constituents with Separator.
func Name(constituents []string) string {
	return strings.Join(constituents, Separator)
}

// Combinations returns every k-subset of {0..n-1} as ascending index slices,
// in lexicographic order. k > n or k < 1 yields nil.
func Combinations(n, k int) [][]int {
	if k < 1 || k > n {
		return nil
	}
	var out [][]int
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		out = append(out, append([]int(nil), idx...))

		// advance the rightmost index that still has room
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// Count returns how many columns Expand generates for n predictors,
// i.e. Σ C(n,k) for k = 2..degree. The result saturates at limit+1.
func Count(n, degree, limit int) int {
	total := 0
	for k := 2; k <= degree && k <= n; k++ {
		c := 1
		for i := 1; i <= k; i++ {
			c = c * (n - k + i) / i
			if c > limit {
				return limit + 1
			}
		}
		total += c
		if total > limit {
			return limit + 1
		}
	}
	return total
}

// Expand returns a new dataset with the original columns followed by every
// interaction column of order 2..degree built from the predictors (all
// columns except response). Degree 0 and 1 return ds unchanged. ds itself is
// never modified.
func Expand(ds *dataset.Dataset, response string, degree int) (*dataset.Dataset, []Spec, error) {
	if degree < 0 {
		return nil, nil, errors.NewConfigurationError("interaction.Expand", "degree", "must not be negative", degree)
	}
	if !ds.Has(response) {
		return nil, nil, errors.NewConfigurationError("interaction.Expand", "response", "column not found", response)
	}
	if degree <= 1 {
		return ds, nil, nil
	}

	var predictors []string
	for _, name := range ds.Names() {
		if name != response {
			predictors = append(predictors, name)
		}
	}

	if n := Count(len(predictors), degree, MaxGeneratedColumns); n > MaxGeneratedColumns {
		return nil, nil, errors.NewConfigurationError("interaction.Expand", "degree",
			"too many interaction columns", degree)
	}

	values := make([][]float64, len(predictors))
	for i, name := range predictors {
		v, err := ds.Column(name)
		if err != nil {
			return nil, nil, err
		}
		values[i] = v
	}

	nrows := ds.NRows()
	var (
		specs []Spec
		cols  []dataset.Column
	)
	for k := 2; k <= degree; k++ {
		for _, combo := range Combinations(len(predictors), k) {
			members := make([]string, k)
			for i, idx := range combo {
				members[i] = predictors[idx]
			}
			name := Name(members)
			if ds.Has(name) {
				return nil, nil, errors.NewConfigurationError("interaction.Expand", "column",
					"interaction name collides with an existing column", name)
			}

			specs = append(specs, Spec{Name: name, Constituents: members})
			cols = append(cols, dataset.Column{Name: name, Values: product(nrows, values, combo)})
		}
	}

	out, err := ds.WithColumns(cols...)
	if err != nil {
		return nil, nil, err
	}
	return out, specs, nil
}

func product(n int, values [][]float64, combo []int) []float64 {
	out := make([]float64, n)
	parallel.Rows(n, func(start, end int) {
		for i := start; i < end; i++ {
			p := 1.0
			for _, idx := range combo {
				p *= values[idx][i]
			}
			out[i] = p
		}
	})
	return out
}
