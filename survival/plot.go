package survival

import (
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

// PlotOption configures PlotCumulativeHazards.
type PlotOption func(*plotConfig)

type plotConfig struct {
	columns   []string
	showBands bool
}

// WithPlotColumns restricts the plot to the named covariates. The default
// plots every fitted column, the intercept included.
func WithPlotColumns(names ...string) PlotOption {
	return func(c *plotConfig) { c.columns = names }
}

// WithConfidenceBands toggles the shaded confidence bands around each
// curve. Bands are drawn by default.
func WithConfidenceBands(show bool) PlotOption {
	return func(c *plotConfig) { c.showBands = show }
}

// PlotCumulativeHazards renders each covariate's estimated cumulative
// hazard as a step curve over the event-time index, one colour per
// covariate with a legend entry.
func (f *AalenAdditiveFitter) PlotCumulativeHazards(opts ...PlotOption) (*plot.Plot, error) {
	const op = "AalenAdditiveFitter.PlotCumulativeHazards"

	if err := f.checkFitted("PlotCumulativeHazards"); err != nil {
		return nil, err
	}
	if f.cumHazards_ == nil {
		return nil, scierr.NewModelError(op, "no event times to plot", scierr.ErrEmptyData)
	}

	cfg := plotConfig{showBands: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	indices, err := f.plotColumnIndices(op, cfg.columns)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Cumulative hazards"
	p.X.Label.Text = "timeline"
	p.Y.Label.Text = "cumulative hazard"

	steps, _ := f.cumHazards_.Dims()
	for k, j := range indices {
		lineColor := plotutil.Color(k)

		if cfg.showBands {
			band, err := plotter.NewPolygon(confidenceBand(f.eventTimes_, f.ciLower_, f.ciUpper_, j))
			if err != nil {
				return nil, scierr.Wrap(err, op)
			}
			band.Color = translucent(lineColor)
			band.LineStyle.Width = 0
			p.Add(band)
		}

		line, err := plotter.NewLine(stepCurve(f.eventTimes_, f.cumHazards_, j, steps))
		if err != nil {
			return nil, scierr.Wrap(err, op)
		}
		line.Color = lineColor
		p.Add(line)
		p.Legend.Add(f.columns_[j], line)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	return p, nil
}

// SavePlot builds the cumulative hazards plot and writes it to path. The
// image format follows the file extension; non-positive dimensions fall
// back to a 6x4 inch canvas.
func (f *AalenAdditiveFitter) SavePlot(path string, widthInches, heightInches float64, opts ...PlotOption) error {
	const op = "AalenAdditiveFitter.SavePlot"

	p, err := f.PlotCumulativeHazards(opts...)
	if err != nil {
		return err
	}
	if widthInches <= 0 {
		widthInches = 6
	}
	if heightInches <= 0 {
		heightInches = 4
	}
	if err := p.Save(vg.Length(widthInches)*vg.Inch, vg.Length(heightInches)*vg.Inch, path); err != nil {
		return scierr.Wrap(err, op)
	}
	return nil
}

func (f *AalenAdditiveFitter) plotColumnIndices(op string, names []string) ([]int, error) {
	if len(names) == 0 {
		indices := make([]int, len(f.columns_))
		for j := range indices {
			indices[j] = j
		}
		return indices, nil
	}

	position := make(map[string]int, len(f.columns_))
	for j, name := range f.columns_ {
		position[name] = j
	}
	indices := make([]int, 0, len(names))
	for _, name := range names {
		j, ok := position[name]
		if !ok {
			return nil, scierr.NewValueError(op, "unknown column "+name)
		}
		indices = append(indices, j)
	}
	return indices, nil
}

// stepCurve doubles each interior point so the hazard holds its value
// between event times, anchored at zero accumulated hazard.
func stepCurve(times []float64, values *mat.Dense, col, steps int) plotter.XYs {
	pts := make(plotter.XYs, 0, 2*steps+1)
	pts = append(pts, plotter.XY{X: times[0], Y: 0})
	for i := 0; i < steps; i++ {
		pts = append(pts, plotter.XY{X: times[i], Y: values.At(i, col)})
		if i+1 < steps {
			pts = append(pts, plotter.XY{X: times[i+1], Y: values.At(i, col)})
		}
	}
	return pts
}

// confidenceBand traces the upper bound forward and the lower bound back,
// forming the closed polygon between the two confidence curves.
func confidenceBand(times []float64, lower, upper *mat.Dense, col int) plotter.XYs {
	steps := len(times)
	pts := make(plotter.XYs, 0, 2*steps)
	for i := 0; i < steps; i++ {
		pts = append(pts, plotter.XY{X: times[i], Y: upper.At(i, col)})
	}
	for i := steps - 1; i >= 0; i-- {
		pts = append(pts, plotter.XY{X: times[i], Y: lower.At(i, col)})
	}
	return pts
}

func translucent(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 40}
}
