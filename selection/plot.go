package selection

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/pipefit/pkg/errors"
)

// SaveScorePlot writes a bar chart of per-candidate test scores to path.
// The image format follows the file extension (.png, .svg, .pdf).
func SaveScorePlot(report *SelectionReport, path string) error {
	if report == nil || len(report.Results) == 0 {
		return errors.NewValueError("SaveScorePlot", "report has no results")
	}

	p := plot.New()
	p.Title.Text = "Candidate test scores"
	p.Y.Label.Text = "test score"
	p.Y.Min = 0
	p.Y.Max = 1

	scores := make(plotter.Values, len(report.Results))
	labels := make([]string, len(report.Results))
	for i, r := range report.Results {
		scores[i] = r.TestScore
		labels[i] = r.Name
	}

	bars, err := plotter.NewBarChart(scores, vg.Points(24))
	if err != nil {
		return errors.Wrap(err, "build bar chart")
	}
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "save score plot")
	}
	return nil
}
