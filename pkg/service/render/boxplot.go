package render

import (
	"math/rand"

	"github.com/m-mizutani/goerr/v2"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// Boxplot draws the national incidence distribution per age group as
// quartile boxes with the raw yearly values jittered on top.
func Boxplot(set *model.RateSet, path string) error {
	if len(set.National) == 0 {
		return goerr.New("no national rates to draw")
	}

	p := newPlot("ILI Incidence by Age Group",
		"Age group", "Incidence (cases / population)")
	p.Add(plotter.NewGrid())

	rng := rand.New(rand.NewSource(jitterSeed))
	groups := groupNationalByAge(set.National)
	for _, age := range types.AgeGroups() {
		xs := groups[age.Index()]
		if len(xs) == 0 {
			continue
		}
		loc := float64(age.Index())

		box, err := plotter.NewBoxPlot(vg.Points(40), loc, plotter.Values(xs))
		if err != nil {
			return goerr.Wrap(err, "failed to build box", goerr.V("age", age.String()))
		}
		box.FillColor = withAlpha(bandColors[age.Index()], 60)
		p.Add(box)

		pts := make(plotter.XYs, len(xs))
		for i, v := range xs {
			pts[i] = plotter.XY{X: loc + (rng.Float64()-0.5)*0.3, Y: v}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return goerr.Wrap(err, "failed to build jitter points", goerr.V("age", age.String()))
		}
		scatter.GlyphStyle.Color = withAlpha(bandColors[age.Index()], 180)
		scatter.GlyphStyle.Radius = vg.Points(2.5)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
	}

	p.NominalX(ageLabels()...)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return goerr.Wrap(err, "failed to save boxplot", goerr.V("path", path))
	}
	return nil
}
