package ingest

import (
	"github.com/YuminosukeSato/stepwise/core/dataset"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"github.com/YuminosukeSato/stepwise/pkg/log"
)

// Selection describes which slice of the ensemble data to model.
type Selection struct {
	Ensemble    string
	Response    string
	Parameters  []string // empty means every parameter column
	ForceOut    []string
	Filters     []Filter
	Aggregation Aggregation
}

// Prepare filters and aggregates the responses of one ensemble, joins them
// with that ensemble's parameters and returns the modelling dataset along
// with the sanitized response name.
func Prepare(params, responses *Frame, sel Selection) (*dataset.Dataset, string, error) {
	const op = "ingest.Prepare"
	if sel.Response == "" {
		return nil, "", errors.NewConfigurationError(op, "response", "must not be empty", nil)
	}
	agg := sel.Aggregation
	if agg == "" {
		agg = AggregateSum
	}

	rf := responses
	pf := params
	if sel.Ensemble != "" {
		var err error
		if rf, err = rf.FilterEquals(EnsembleColumn, sel.Ensemble); err != nil {
			return nil, "", err
		}
		if pf, err = pf.FilterEquals(EnsembleColumn, sel.Ensemble); err != nil {
			return nil, "", err
		}
	}
	rf, err := ApplyFilters(rf, sel.Filters)
	if err != nil {
		return nil, "", err
	}
	if rf.NRows() == 0 {
		return nil, "", errors.NewConfigurationError(op, "filters", "no response rows left after filtering", sel.Filters)
	}

	if len(sel.Parameters) > 0 {
		pf, err = pf.Keep(append([]string{RealColumn}, sel.Parameters...)...)
		if err != nil {
			return nil, "", err
		}
	}
	pf = pf.Drop(EnsembleColumn)
	if pf, err = pf.Sanitized(); err != nil {
		return nil, "", err
	}

	respDS, err := AggregateByRealization(rf, sel.Response, agg)
	if err != nil {
		return nil, "", err
	}
	response := SanitizeName(sel.Response)
	if response != sel.Response {
		if respDS, err = dataset.New(
			dataset.Column{Name: RealColumn, Values: mustColumn(respDS, RealColumn)},
			dataset.Column{Name: response, Values: mustColumn(respDS, sel.Response)},
		); err != nil {
			return nil, "", err
		}
	}

	paramDS, err := pf.Numeric()
	if err != nil {
		return nil, "", err
	}
	forceOut := make([]string, len(sel.ForceOut))
	for i, c := range sel.ForceOut {
		forceOut[i] = SanitizeName(c)
	}
	merged, err := MergeOnRealization(paramDS, respDS, forceOut...)
	if err != nil {
		return nil, "", err
	}

	log.GetLogger().Debug("Prepared dataset",
		log.ComponentKey, "ingest",
		log.OperationKey, log.OperationIngest,
		log.ResponseKey, response,
		log.SamplesKey, merged.NRows(),
		log.FeaturesKey, merged.NCols()-1,
	)
	return merged, response, nil
}

func mustColumn(ds *dataset.Dataset, name string) []float64 {
	v, _ := ds.Column(name)
	return v
}
