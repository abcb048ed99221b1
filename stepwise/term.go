package stepwise

import "github.com/YuminosukeSato/stepwise/interaction"

// Term is a column eligible for selection: either a base predictor or an
// interaction product. Constituents is empty for base terms.
type Term struct {
	Name         string
	Constituents []string
}

// BaseTerm returns a term backed directly by a dataset column.
func BaseTerm(name string) Term {
	return Term{Name: name}
}

// InteractionTerm returns a product term over the given base columns.
func InteractionTerm(name string, constituents []string) Term {
	return Term{Name: name, Constituents: append([]string(nil), constituents...)}
}

// IsInteraction reports whether t is an interaction term.
func (t Term) IsInteraction() bool { return len(t.Constituents) > 0 }

// TermsFromSpecs converts expander output into interaction terms.
func TermsFromSpecs(specs []interaction.Spec) []Term {
	out := make([]Term, len(specs))
	for i, s := range specs {
		out[i] = InteractionTerm(s.Name, s.Constituents)
	}
	return out
}
