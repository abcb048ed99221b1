// Package report renders a fitted model as a table, JSON or charts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/YuminosukeSato/stepwise/interaction"
	"github.com/YuminosukeSato/stepwise/stepwise"
)

// SignificanceLevel is the p-value threshold highlighted in charts.
const SignificanceLevel = 0.05

// Row is one selected term of a fitted model.
type Row struct {
	Term        string  `json:"term"`
	Coefficient float64 `json:"coefficient"`
	StdError    float64 `json:"std_error"`
	TValue      float64 `json:"t_value"`
	PValue      float64 `json:"p_value"`

	// Constituents lists the base terms of an interaction; nil for base terms.
	Constituents []string `json:"constituents,omitempty"`
}

// Rows lists the selected terms in selection order. The intercept is not
// included.
func Rows(m *stepwise.FittedModel) []Row {
	rows := make([]Row, len(m.Terms))
	for i, term := range m.Terms {
		rows[i] = Row{
			Term:        term,
			Coefficient: m.Coefficients[term],
			StdError:    m.StdErrors[term],
			TValue:      m.TValues[term],
			PValue:      m.PValues[term],
		}
		if parts := Constituents(term); len(parts) > 1 {
			rows[i].Constituents = parts
		}
	}
	return rows
}

// WriteTable prints the coefficient table followed by fit statistics.
func WriteTable(w io.Writer, m *stepwise.FittedModel) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TERM\tCOEFFICIENT\tP-VALUE")
	for _, r := range Rows(m) {
		fmt.Fprintf(tw, "%s\t%.4g\t%.4g\n", r.Term, r.Coefficient, r.PValue)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nresponse: %s  intercept: %.4g  R²: %.4f  adjusted R²: %.4f  RMSE: %.4g  n: %d  stop: %s\n",
		m.Response, m.Intercept, m.R2, m.AdjustedR2, m.RMSE, m.NObs, m.Stopped)
	return err
}

type jsonReport struct {
	Response        string  `json:"response"`
	Intercept       float64 `json:"intercept"`
	InterceptPValue float64 `json:"intercept_p_value"`
	Terms           []Row   `json:"terms"`
	R2              float64 `json:"r2"`
	AdjustedR2      float64 `json:"adjusted_r2"`
	RMSE            float64 `json:"rmse"`
	MAE             float64 `json:"mae"`
	NObs            int     `json:"n_obs"`
	DFResid         int     `json:"df_resid"`
	Stopped         string  `json:"stopped"`
	Steps           []step  `json:"steps"`
}

type step struct {
	Round int      `json:"round"`
	Term  string   `json:"term"`
	Added []string `json:"added"`
	Score float64  `json:"score"`
}

// WriteJSON writes the model as an indented JSON document.
func WriteJSON(w io.Writer, m *stepwise.FittedModel) error {
	out := jsonReport{
		Response:        m.Response,
		Intercept:       m.Intercept,
		InterceptPValue: m.InterceptPValue,
		Terms:           Rows(m),
		R2:              m.R2,
		AdjustedR2:      m.AdjustedR2,
		RMSE:            m.RMSE,
		MAE:             m.MAE,
		NObs:            m.NObs,
		DFResid:         m.DFResid,
		Stopped:         m.Stopped.String(),
		Steps:           make([]step, len(m.Steps)),
	}
	for i, s := range m.Steps {
		out.Steps[i] = step{Round: s.Round, Term: s.Term, Added: s.Added, Score: s.Score}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Constituents splits an interaction name into its base names for labeling.
func Constituents(name string) []string {
	return strings.Split(name, interaction.Separator)
}
