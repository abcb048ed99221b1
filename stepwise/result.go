package stepwise

import (
	"github.com/YuminosukeSato/stepwise/core/dataset"
	"github.com/YuminosukeSato/stepwise/linear"
	"github.com/YuminosukeSato/stepwise/metrics"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// StopReason explains why the forward search ended.
type StopReason int

const (
	// StopExhausted means every candidate was selected.
	StopExhausted StopReason = iota
	// StopMaxTerms means the selected set reached maxTerms.
	StopMaxTerms
	// StopNoImprovement means the best candidate did not raise adjusted R².
	StopNoImprovement
	// StopNoCandidates means every remaining candidate was skipped in a round.
	StopNoCandidates
	// StopDegreesOfFreedom means a trial model left fewer than one residual
	// degree of freedom and the search was aborted.
	StopDegreesOfFreedom
)

func (r StopReason) String() string {
	switch r {
	case StopExhausted:
		return "exhausted"
	case StopMaxTerms:
		return "max_terms"
	case StopNoImprovement:
		return "no_improvement"
	case StopNoCandidates:
		return "no_candidates"
	case StopDegreesOfFreedom:
		return "degrees_of_freedom"
	default:
		return "unknown"
	}
}

// Step records one committed round of the search.
type Step struct {
	Round int
	Term  string
	// Added lists the columns moved into the model, constituents first.
	Added []string
	Score float64
}

// FittedModel is the outcome of a search: the final OLS refit of the
// selected terms. Maps are keyed by the term names used in the dataset.
type FittedModel struct {
	Response  string
	Terms     []string
	Intercept float64

	Coefficients map[string]float64
	PValues      map[string]float64
	StdErrors    map[string]float64
	TValues      map[string]float64

	InterceptStdError float64
	InterceptPValue   float64

	R2         float64
	AdjustedR2 float64
	RMSE       float64
	MAE        float64
	Rank       int
	DFModel    int
	DFResid    int
	NObs       int

	Steps   []Step
	Stopped StopReason

	ols *linear.OLS
}

func newFittedModel(response string, terms []string, ols *linear.OLS, steps []Step, stopped StopReason) *FittedModel {
	fm := &FittedModel{
		Response:     response,
		Terms:        append([]string(nil), terms...),
		Intercept:    ols.Intercept(),
		Coefficients: make(map[string]float64, len(terms)),
		PValues:      make(map[string]float64, len(terms)),
		StdErrors:    make(map[string]float64, len(terms)),
		TValues:      make(map[string]float64, len(terms)),
		R2:           ols.R2(),
		AdjustedR2:   ols.AdjustedR2(),
		RMSE:         ols.RMSE(),
		MAE:          ols.MAE(),
		Rank:         ols.Rank(),
		DFModel:      ols.DFModel(),
		DFResid:      ols.DFResid(),
		NObs:         ols.NObs(),
		Steps:        steps,
		Stopped:      stopped,
		ols:          ols,
	}
	coef, pv, se, tv := ols.Coefficients(), ols.PValues(), ols.StdErrors(), ols.TValues()
	for i, name := range terms {
		fm.Coefficients[name] = coef[i]
		fm.PValues[name] = pv[i]
		fm.StdErrors[name] = se[i]
		fm.TValues[name] = tv[i]
	}
	fm.InterceptStdError, _, fm.InterceptPValue = ols.InterceptStats()
	return fm
}

// Predict evaluates the model on ds, which must contain every selected term.
func (m *FittedModel) Predict(ds *dataset.Dataset) ([]float64, error) {
	if m.ols == nil {
		return nil, errors.NewNotFittedError("FittedModel", "Predict")
	}
	n := ds.NRows()
	if len(m.Terms) == 0 {
		out := make([]float64, n)
		for i := range out {
			out[i] = m.Intercept
		}
		return out, nil
	}
	X, err := ds.Matrix(false, m.Terms...)
	if err != nil {
		return nil, err
	}
	pred, err := m.ols.Predict(X)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, pred), nil
}

// Score returns R² of the model on ds, which must contain the response and
// every selected term.
func (m *FittedModel) Score(ds *dataset.Dataset) (float64, error) {
	if m.ols == nil {
		return 0, errors.NewNotFittedError("FittedModel", "Score")
	}
	y, err := ds.Vector(m.Response)
	if err != nil {
		return 0, err
	}
	if len(m.Terms) > 0 {
		X, err := ds.Matrix(false, m.Terms...)
		if err != nil {
			return 0, err
		}
		return m.ols.Score(X, y)
	}
	pred, err := m.Predict(ds)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, mat.NewVecDense(len(pred), pred))
}

// Clone returns a deep copy. The underlying fit is shared since it is never
// modified after the search.
func (m *FittedModel) Clone() *FittedModel {
	c := *m
	c.Terms = append([]string(nil), m.Terms...)
	c.Coefficients = cloneMap(m.Coefficients)
	c.PValues = cloneMap(m.PValues)
	c.StdErrors = cloneMap(m.StdErrors)
	c.TValues = cloneMap(m.TValues)
	c.Steps = make([]Step, len(m.Steps))
	for i, s := range m.Steps {
		s.Added = append([]string(nil), s.Added...)
		c.Steps[i] = s
	}
	return &c
}

func cloneMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
