package render

import (
	"math"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// trendWindow is the span of the centered moving average laid over the
// yearly scatter.
const trendWindow = 3

// Trend draws incidence against year per age group: yearly points, a
// smoothed polyline, and each group's cross-year mean as a dashed
// horizontal marker.
func Trend(set *model.RateSet, path string) error {
	if len(set.National) == 0 {
		return goerr.New("no national rates to draw")
	}

	p := newPlot("ILI Incidence Trend by Year",
		"Year", "Incidence (cases / population)")
	p.Add(plotter.NewGrid())
	p.X.Tick.Marker = yearTicker{}

	byAge := splitNationalByAge(set.National)
	for _, age := range types.AgeGroups() {
		series := byAge[age.Index()]
		if len(series) == 0 {
			continue
		}

		pts := make(plotter.XYs, len(series))
		ys := make([]float64, len(series))
		for i, r := range series {
			pts[i] = plotter.XY{X: float64(r.Year.Int()), Y: r.Percentage}
			ys[i] = r.Percentage
		}

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return goerr.Wrap(err, "failed to build year points", goerr.V("age", age.String()))
		}
		scatter.GlyphStyle.Color = bandColors[age.Index()]
		scatter.GlyphStyle.Radius = vg.Points(3)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add(age.String(), scatter)

		smoothed := movingAverage(ys, trendWindow)
		smoothPts := make(plotter.XYs, len(smoothed))
		for i, v := range smoothed {
			smoothPts[i] = plotter.XY{X: pts[i].X, Y: v}
		}
		line, err := plotter.NewLine(smoothPts)
		if err != nil {
			return goerr.Wrap(err, "failed to build trend line", goerr.V("age", age.String()))
		}
		line.Color = bandColors[age.Index()]
		line.Width = vg.Points(2)
		p.Add(line)

		mean := stat.Mean(ys, nil)
		marker, err := plotter.NewLine(plotter.XYs{
			{X: pts[0].X, Y: mean},
			{X: pts[len(pts)-1].X, Y: mean},
		})
		if err != nil {
			return goerr.Wrap(err, "failed to build mean marker", goerr.V("age", age.String()))
		}
		marker.Color = bandColors[age.Index()]
		marker.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(marker)
	}

	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(10)

	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return goerr.Wrap(err, "failed to save trend plot", goerr.V("path", path))
	}
	return nil
}

// splitNationalByAge partitions the national table into per-band series,
// preserving the table's year order.
func splitNationalByAge(national []model.YearRate) [types.NumAgeGroups][]model.YearRate {
	var series [types.NumAgeGroups][]model.YearRate
	for _, r := range national {
		if !r.Age.IsValid() {
			continue
		}
		i := r.Age.Index()
		series[i] = append(series[i], r)
	}
	return series
}

// movingAverage smooths xs with a centered window, shrinking the window at
// both ends of the series.
func movingAverage(xs []float64, window int) []float64 {
	half := window / 2
	out := make([]float64, len(xs))
	for i := range xs {
		lo := max(0, i-half)
		hi := min(len(xs)-1, i+half)
		out[i] = stat.Mean(xs[lo:hi+1], nil)
	}
	return out
}

// yearTicker labels whole years only, thinning labels when the span grows.
type yearTicker struct{}

func (yearTicker) Ticks(lo, hi float64) []plot.Tick {
	first := int(math.Ceil(lo))
	last := int(math.Floor(hi))
	if last < first {
		return nil
	}
	step := 1
	if span := last - first; span > 12 {
		step = (span + 11) / 12
	}
	var ticks []plot.Tick
	for y := first; y <= last; y += step {
		ticks = append(ticks, plot.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	return ticks
}
