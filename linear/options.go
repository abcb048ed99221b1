package linear

// Option is a function that configures OLS
type Option func(*OLS)

// WithTol sets the relative singular-value tolerance used for Rank.
func WithTol(tol float64) Option {
	return func(m *OLS) {
		if tol > 0 {
			m.tol = tol
		}
	}
}

// WithNames attaches column names to the model. Fit then requires X to have
// exactly len(names) columns.
func WithNames(names ...string) Option {
	return func(m *OLS) {
		m.names = append([]string(nil), names...)
	}
}
