// Package stepwise implements forward stepwise selection of linear-regression
// terms using adjusted R² as the sole criterion.
//
// Each round fits one trial model per remaining candidate and commits the
// candidate with the highest score, provided it strictly improves on the
// committed model. The search is greedy: it stops at the first round that
// does not improve. Interaction candidates carry their constituent base terms
// with them, so a selected "A*B" always comes with "A" and "B".
package stepwise

import (
	"math"
	"sort"
	"time"

	"github.com/YuminosukeSato/stepwise/core/dataset"
	"github.com/YuminosukeSato/stepwise/interaction"
	"github.com/YuminosukeSato/stepwise/linear"
	"github.com/YuminosukeSato/stepwise/metrics"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"github.com/YuminosukeSato/stepwise/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// Selector runs forward stepwise searches. A Selector holds configuration
// only and may be reused; each search works on its own state.
type Selector struct {
	logger       log.Logger
	interactions []Term
	degree       int
	cache        *Cache
}

// NewSelector creates a Selector.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{logger: log.GetLogger()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.ComponentKey, "stepwise")
	return s
}

// Select runs a forward stepwise search on ds without expanding it.
func Select(ds *dataset.Dataset, response string, forceIn []string, maxTerms int, opts ...Option) (*FittedModel, error) {
	return NewSelector(opts...).Select(ds, response, forceIn, maxTerms)
}

// GenModel expands ds with interaction columns up to degree (when degree > 1)
// and then runs the search.
func GenModel(ds *dataset.Dataset, response string, forceIn []string, maxTerms, degree int, opts ...Option) (*FittedModel, error) {
	opts = append(opts, WithInteractionDegree(degree))
	return NewSelector(opts...).Run(ds, response, forceIn, maxTerms)
}

// Run expands ds according to WithInteractionDegree, consults the cache and
// runs Select.
func (s *Selector) Run(ds *dataset.Dataset, response string, forceIn []string, maxTerms int) (*FittedModel, error) {
	if s.degree < 0 {
		return nil, errors.NewConfigurationError("stepwise.Run", "degree", "must not be negative", s.degree)
	}

	var key uint64
	if s.cache != nil {
		key = Fingerprint(ds, response, forceIn, maxTerms, s.degree, s.interactions...)
		if m, ok := s.cache.Get(key); ok {
			s.logger.Debug("Using cached model", log.ResponseKey, response)
			return m, nil
		}
	}

	expanded := ds
	if s.degree > 1 {
		var (
			specs []interaction.Spec
			err   error
		)
		expanded, specs, err = interaction.Expand(ds, response, s.degree)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("Expanded interaction terms",
			log.OperationKey, log.OperationExpand,
			log.DegreeKey, s.degree,
			log.FeaturesKey, expanded.NCols()-1,
		)
		sub := *s
		sub.interactions = append(append([]Term(nil), s.interactions...), TermsFromSpecs(specs)...)
		s = &sub
	}

	m, err := s.Select(expanded, response, forceIn, maxTerms)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(key, m)
	}
	return m, nil
}

// Select runs the forward search and returns the final OLS refit of the
// selected terms.
func (s *Selector) Select(ds *dataset.Dataset, response string, forceIn []string, maxTerms int) (_ *FittedModel, err error) {
	defer errors.Recover(&err, "stepwise.Select")
	start := time.Now()

	st, err := s.newSearch(ds, response, forceIn, maxTerms)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Starting forward selection",
		log.OperationKey, log.OperationSelect,
		log.ResponseKey, response,
		log.SamplesKey, st.n,
		log.CandidatesKey, len(st.remaining),
		log.SelectedTermsKey, len(st.selected),
	)

	stopped, err := st.run()
	if err != nil {
		return nil, err
	}

	m, err := st.refit(stopped)
	if err != nil {
		s.logger.Error("Final refit failed",
			log.ErrAttrKey, err,
			log.ResponseKey, response,
			log.StopReasonKey, stopped.String(),
		)
		return nil, err
	}

	s.logger.Info("Forward selection finished",
		log.ResponseKey, response,
		log.SelectedTermsKey, len(m.Terms),
		log.StopReasonKey, stopped.String(),
		log.AdjustedR2Key, m.AdjustedR2,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return m, nil
}

type search struct {
	logger log.Logger

	ds       *dataset.Dataset
	response string
	y        *mat.VecDense
	yMean    float64
	sst      float64
	n        int
	maxTerms int

	terms     map[string]Term
	selected  []string
	chosen    map[string]bool
	remaining []string
	current   float64
	steps     []Step
}

func (s *Selector) newSearch(ds *dataset.Dataset, response string, forceIn []string, maxTerms int) (*search, error) {
	const op = "stepwise.Select"
	if ds == nil || ds.NRows() == 0 {
		return nil, errors.NewConfigurationError(op, "dataset", "must contain at least one row", nil)
	}
	if !ds.Has(response) {
		return nil, errors.NewConfigurationError(op, "response", "column not found", response)
	}
	if maxTerms < 0 {
		return nil, errors.NewConfigurationError(op, "maxTerms", "must not be negative", maxTerms)
	}

	terms := make(map[string]Term, ds.NCols())
	for _, name := range ds.Names() {
		if name != response {
			terms[name] = BaseTerm(name)
		}
	}
	for _, t := range s.interactions {
		if _, ok := terms[t.Name]; !ok {
			return nil, errors.NewConfigurationError(op, "interaction", "column not found", t.Name)
		}
		for _, c := range t.Constituents {
			if _, ok := terms[c]; !ok {
				return nil, errors.NewConfigurationError(op, "interaction", "constituent not found", c)
			}
		}
		terms[t.Name] = t
	}

	st := &search{
		logger:   s.logger,
		ds:       ds,
		response: response,
		n:        ds.NRows(),
		maxTerms: maxTerms,
		terms:    terms,
		chosen:   make(map[string]bool, len(forceIn)),
	}

	seen := make(map[string]bool, len(forceIn))
	for _, name := range forceIn {
		switch {
		case name == response:
			return nil, errors.NewConfigurationError(op, "forceIn", "must not contain the response", name)
		case seen[name]:
			return nil, errors.NewConfigurationError(op, "forceIn", "duplicate term", name)
		}
		t, ok := terms[name]
		if !ok {
			return nil, errors.NewConfigurationError(op, "forceIn", "term not found", name)
		}
		seen[name] = true
		for _, c := range t.Constituents {
			st.commit(c)
		}
		st.commit(name)
	}
	if maxTerms < len(st.selected) {
		return nil, errors.NewConfigurationError(op, "maxTerms", "smaller than the number of forced terms", maxTerms)
	}

	for name := range terms {
		if !st.chosen[name] {
			st.remaining = append(st.remaining, name)
		}
	}
	sort.Strings(st.remaining)

	y, err := ds.Vector(response)
	if err != nil {
		return nil, err
	}
	st.y = y
	st.sst, st.yMean = metrics.TotalSumOfSquares(y.RawVector().Data)
	if st.sst == 0 || !errors.IsFinite(st.sst) {
		return nil, errors.NewUnidentifiableModelError(op, "response has zero or non-finite variance")
	}
	return st, nil
}

func (st *search) commit(name string) {
	if st.chosen[name] {
		return
	}
	st.chosen[name] = true
	st.selected = append(st.selected, name)
}

// trial returns the columns a candidate would add to the selected set.
func (st *search) trial(name string) []string {
	t := st.terms[name]
	var added []string
	for _, c := range t.Constituents {
		if !st.chosen[c] {
			added = append(added, c)
		}
	}
	return append(added, name)
}

func (st *search) run() (StopReason, error) {
	for round := 1; ; round++ {
		if len(st.remaining) == 0 {
			return StopExhausted, nil
		}
		if len(st.selected) >= st.maxTerms {
			return StopMaxTerms, nil
		}

		st.logger.Debug("Evaluating candidates",
			log.RoundKey, round,
			log.CandidatesKey, len(st.remaining),
			log.CurrentScoreKey, st.current,
		)

		var (
			best      = math.Inf(-1)
			bestName  string
			bestAdded []string
			evaluated int
		)
		for _, name := range st.remaining {
			added := st.trial(name)
			if len(st.selected)+len(added) > st.maxTerms {
				continue
			}
			cols := append(append([]string(nil), st.selected...), added...)
			p := len(cols)
			if st.n-p-1 < 1 {
				st.logger.Info("Not enough residual degrees of freedom, stopping search",
					log.RoundKey, round,
					log.TermKey, name,
					log.SamplesKey, st.n,
				)
				return StopDegreesOfFreedom, nil
			}

			score, ok, err := st.score(cols, name, round)
			if err != nil {
				return 0, err
			}
			if !ok {
				continue
			}
			evaluated++
			if score > best {
				best, bestName, bestAdded = score, name, added
			}
		}

		if evaluated == 0 {
			return StopNoCandidates, nil
		}
		if !(best > st.current) {
			st.logger.Debug("Best candidate does not improve the model",
				log.RoundKey, round,
				log.TermKey, bestName,
				log.ScoreKey, best,
				log.CurrentScoreKey, st.current,
			)
			return StopNoImprovement, nil
		}

		for _, name := range bestAdded {
			st.commit(name)
		}
		st.remaining = without(st.remaining, bestAdded)
		st.current = best
		st.steps = append(st.steps, Step{Round: round, Term: bestName, Added: bestAdded, Score: best})

		st.logger.Info("Committed term",
			log.RoundKey, round,
			log.TermKey, bestName,
			log.ScoreKey, best,
			log.SelectedTermsKey, len(st.selected),
		)
	}
}

// score fits the trial model and returns its adjusted R². ok is false when
// the candidate has to be skipped.
func (st *search) score(cols []string, name string, round int) (score float64, ok bool, err error) {
	X, err := st.ds.Matrix(true, cols...)
	if err != nil {
		return 0, false, err
	}
	beta, _, err := linear.NormalEquations(X, st.y)
	if err != nil {
		if !errors.Is(err, errors.ErrSingularMatrix) {
			return 0, false, err
		}
		errors.Warn(errors.NewSingularMatrixWarning(name, round, "XᵀX is not invertible"))
		st.logger.Warn("Skipping candidate with singular design",
			log.RoundKey, round,
			log.TermKey, name,
			log.ErrorCodeKey, log.ErrorSingularMatrix,
		)
		return 0, false, nil
	}

	var fitted mat.VecDense
	fitted.MulVec(X, beta)
	ss := metrics.ExplainedSumOfSquares(fitted.RawVector().Data, st.yMean)
	score, err = metrics.AdjustedR2FromSS(ss, st.sst, st.n, len(cols))
	if err != nil {
		return 0, false, err
	}
	if err := errors.CheckScalar("stepwise.score", score, round); err != nil {
		errors.Warn(err)
		st.logger.Warn("Skipping candidate with non-finite score",
			log.RoundKey, round,
			log.TermKey, name,
		)
		return 0, false, nil
	}

	st.logger.Debug("Scored candidate",
		log.RoundKey, round,
		log.TermKey, name,
		log.ScoreKey, score,
	)
	return score, true, nil
}

func (st *search) refit(stopped StopReason) (*FittedModel, error) {
	const op = "stepwise.refit"
	if stopped == StopDegreesOfFreedom && len(st.selected) == 0 {
		return nil, errors.NewUnidentifiableModelError(op, "not enough observations to add any term")
	}

	ols := linear.NewOLS(linear.WithNames(st.selected...))
	var X mat.Matrix
	if len(st.selected) > 0 {
		d, err := st.ds.Matrix(false, st.selected...)
		if err != nil {
			return nil, err
		}
		X = d
	}
	if err := ols.Fit(X, st.y); err != nil {
		if errors.Is(err, errors.ErrSingularMatrix) {
			return nil, errors.NewUnidentifiableModelError(op, "selected terms are collinear")
		}
		return nil, err
	}
	return newFittedModel(st.response, st.selected, ols, st.steps, stopped), nil
}

func without(list, drop []string) []string {
	out := list[:0:0]
	for _, name := range list {
		keep := true
		for _, d := range drop {
			if name == d {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, name)
		}
	}
	return out
}
