package ingest

import (
	"math"

	"github.com/YuminosukeSato/stepwise/pkg/errors"
)

// FilterType selects how a Filter matches rows.
type FilterType string

const (
	// FilterSingle keeps rows equal to one value.
	FilterSingle FilterType = "single"
	// FilterMulti keeps rows equal to any of the values.
	FilterMulti FilterType = "multi"
	// FilterRange keeps rows between the smallest and largest value.
	FilterRange FilterType = "range"
)

// Filter restricts response rows before aggregation.
type Filter struct {
	Name   string     `yaml:"name" json:"name"`
	Type   FilterType `yaml:"type" json:"type"`
	Values []string   `yaml:"values" json:"values"`
}

// Validate checks the filter type and value count.
func (flt Filter) Validate() error {
	const op = "Filter.Validate"
	if flt.Name == "" {
		return errors.NewConfigurationError(op, "filter.name", "must not be empty", nil)
	}
	switch flt.Type {
	case FilterSingle:
		if len(flt.Values) != 1 {
			return errors.NewConfigurationError(op, "filter.values", "single filter takes exactly one value", flt.Values)
		}
	case FilterMulti:
		if len(flt.Values) == 0 {
			return errors.NewConfigurationError(op, "filter.values", "multi filter needs at least one value", flt.Values)
		}
	case FilterRange:
		if len(flt.Values) == 0 {
			return errors.NewConfigurationError(op, "filter.values", "range filter needs at least one bound", flt.Values)
		}
		for _, v := range flt.Values {
			if _, err := parseFloat(v); err != nil {
				return errors.NewConfigurationError(op, "filter.values", "range bounds must be numeric", v)
			}
		}
	default:
		return errors.NewConfigurationError(op, "filter.type", "expected single, multi or range", flt.Type)
	}
	return nil
}

// ApplyFilters applies filters in order.
func ApplyFilters(f *Frame, filters []Filter) (*Frame, error) {
	out := f
	for _, flt := range filters {
		if err := flt.Validate(); err != nil {
			return nil, err
		}
		var err error
		switch flt.Type {
		case FilterSingle, FilterMulti:
			out, err = out.FilterEquals(flt.Name, flt.Values...)
		case FilterRange:
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, s := range flt.Values {
				v, _ := parseFloat(s)
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
			out, err = out.FilterRange(flt.Name, lo, hi)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
