package stepwise

import (
	"github.com/YuminosukeSato/stepwise/interaction"
	"github.com/YuminosukeSato/stepwise/pkg/log"
)

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the logger used for search progress.
func WithLogger(l log.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithInteractions marks dataset columns that are interaction products so
// that committing one also commits its constituents.
func WithInteractions(specs ...interaction.Spec) Option {
	return func(s *Selector) {
		s.interactions = append(s.interactions, TermsFromSpecs(specs)...)
	}
}

// WithInteractionDegree makes Run expand the dataset with interaction
// columns up to degree before searching. Degrees 0 and 1 disable expansion.
func WithInteractionDegree(degree int) Option {
	return func(s *Selector) {
		s.degree = degree
	}
}

// WithCache memoizes Run results.
func WithCache(c *Cache) Option {
	return func(s *Selector) {
		s.cache = c
	}
}
