package report

import (
	"image/color"
	"sort"

	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"github.com/YuminosukeSato/stepwise/stepwise"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	significantColor = color.RGBA{R: 220, G: 20, B: 60, A: 255} // crimson
	neutralColor     = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 255}
	thresholdColor   = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 255}
	positiveColor    = color.RGBA{R: 125, G: 0, B: 35, A: 255}
	negativeColor    = color.RGBA{R: 36, G: 55, B: 70, A: 255}
)

// Default chart size used by Save.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

const barWidth vg.Length = 18

// PValuesPlot draws one bar per term, sorted by ascending p-value, with
// significant terms highlighted and a reference line at SignificanceLevel.
func PValuesPlot(m *stepwise.FittedModel) (*plot.Plot, error) {
	rows := Rows(m)
	if len(rows) == 0 {
		return nil, errors.NewValueError("report.PValuesPlot", "model has no terms")
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].PValue < rows[j].PValue })

	sig := make(plotter.Values, len(rows))
	rest := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Term
		if r.PValue < SignificanceLevel {
			sig[i] = r.PValue
		} else {
			rest[i] = r.PValue
		}
	}

	p := plot.New()
	p.Title.Text = "P-values for the parameters from the table"
	p.Y.Label.Text = "p-value"
	p.Y.Min = 0

	if err := addBars(p, sig, significantColor); err != nil {
		return nil, err
	}
	if err := addBars(p, rest, neutralColor); err != nil {
		return nil, err
	}

	line, err := plotter.NewLine(plotter.XYs{
		{X: -0.5, Y: SignificanceLevel},
		{X: float64(len(rows)) - 0.5, Y: SignificanceLevel},
	})
	if err != nil {
		return nil, errors.Wrap(err, "report.PValuesPlot")
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = thresholdColor
	p.Add(line)

	p.NominalX(names...)
	return p, nil
}

// CoefficientsPlot draws the coefficients sorted from largest to smallest,
// colored by sign.
func CoefficientsPlot(m *stepwise.FittedModel) (*plot.Plot, error) {
	rows := Rows(m)
	if len(rows) == 0 {
		return nil, errors.NewValueError("report.CoefficientsPlot", "model has no terms")
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Coefficient > rows[j].Coefficient })

	pos := make(plotter.Values, len(rows))
	neg := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Term
		if r.Coefficient >= 0 {
			pos[i] = r.Coefficient
		} else {
			neg[i] = r.Coefficient
		}
	}

	p := plot.New()
	p.Title.Text = "Coefficients of the selected terms"
	p.Y.Label.Text = "coefficient"

	if err := addBars(p, pos, positiveColor); err != nil {
		return nil, err
	}
	if err := addBars(p, neg, negativeColor); err != nil {
		return nil, err
	}
	p.Add(plotter.NewGrid())
	p.NominalX(names...)
	return p, nil
}

func addBars(p *plot.Plot, values plotter.Values, c color.Color) error {
	bars, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return errors.Wrap(err, "report: bar chart")
	}
	bars.Color = c
	bars.LineStyle.Width = 0
	p.Add(bars)
	return nil
}

// Save writes p to path; the format follows the file extension
// (.png, .svg, .pdf, ...).
func Save(p *plot.Plot, path string) error {
	err := errors.SafeExecute("report.Save", func() error {
		return p.Save(DefaultWidth, DefaultHeight, path)
	})
	if err != nil {
		return errors.Wrapf(err, "report: save %s", path)
	}
	return nil
}
