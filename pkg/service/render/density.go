package render

import (
	"github.com/m-mizutani/goerr/v2"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// Density draws one kernel density curve of national incidence per age
// group, with each group's mean as a dashed vertical marker.
func Density(set *model.RateSet, path string) error {
	if len(set.National) == 0 {
		return goerr.New("no national rates to draw")
	}

	p := newPlot("ILI Incidence Density by Age Group",
		"Incidence (cases / population)", "Density")
	p.Add(plotter.NewGrid())

	groups := groupNationalByAge(set.National)
	for _, age := range types.AgeGroups() {
		xs := groups[age.Index()]
		if len(xs) == 0 {
			continue
		}

		curve := kdeCurve(xs, 256)
		line, err := plotter.NewLine(curve)
		if err != nil {
			return goerr.Wrap(err, "failed to build density curve", goerr.V("age", age.String()))
		}
		line.Color = bandColors[age.Index()]
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(age.String(), line)

		mean := stat.Mean(xs, nil)
		marker, err := plotter.NewLine(plotter.XYs{
			{X: mean, Y: 0},
			{X: mean, Y: curvePeak(curve)},
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

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return goerr.Wrap(err, "failed to save density plot", goerr.V("path", path))
	}
	return nil
}
