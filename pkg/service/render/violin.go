package render

import (
	"image/color"
	"math/rand"

	"github.com/m-mizutani/goerr/v2"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// violinHalfWidth is the horizontal half-extent of a violin outline in
// band positions.
const violinHalfWidth = 0.35

// Violin draws the city-level incidence distribution per age group for the
// reference year: a mirrored density outline per band with one jittered
// point per city, colored per city.
func Violin(set *model.RateSet, path string) error {
	if len(set.City) == 0 {
		return goerr.New("no city rates to draw")
	}

	p := newPlot("City ILI Incidence by Age Group",
		"Age group", "Incidence (cases / population)")
	p.Add(plotter.NewGrid())

	var bands [types.NumAgeGroups][]float64
	for _, r := range set.City {
		if !r.Age.IsValid() {
			continue
		}
		bands[r.Age.Index()] = append(bands[r.Age.Index()], r.Percentage)
	}

	for _, age := range types.AgeGroups() {
		xs := bands[age.Index()]
		if len(xs) == 0 {
			continue
		}
		outline, err := violinOutline(xs, float64(age.Index()))
		if err != nil {
			return goerr.Wrap(err, "failed to build violin outline", goerr.V("age", age.String()))
		}
		p.Add(outline)
	}

	cities := distinctCities(set.City)
	colors := palette.Rainbow(len(cities), palette.Red, palette.Magenta, 0.9, 0.9, 1).Colors()
	cityColor := make(map[types.CityName]color.Color, len(cities))
	for i, city := range cities {
		cityColor[city] = colors[i]
	}

	rng := rand.New(rand.NewSource(jitterSeed))
	cityPoints := make(map[types.CityName]plotter.XYs, len(cities))
	for _, r := range set.City {
		if !r.Age.IsValid() {
			continue
		}
		loc := float64(r.Age.Index())
		cityPoints[r.City] = append(cityPoints[r.City], plotter.XY{
			X: loc + (rng.Float64()-0.5)*0.25,
			Y: r.Percentage,
		})
	}
	for _, city := range cities {
		scatter, err := plotter.NewScatter(cityPoints[city])
		if err != nil {
			return goerr.Wrap(err, "failed to build city points", goerr.V("city", city))
		}
		scatter.GlyphStyle.Color = cityColor[city]
		scatter.GlyphStyle.Radius = vg.Points(2.5)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add(string(city), scatter)
	}

	p.NominalX(ageLabels()...)
	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(8)

	if err := p.Save(12*vg.Inch, 7*vg.Inch, path); err != nil {
		return goerr.Wrap(err, "failed to save violin plot", goerr.V("path", path))
	}
	return nil
}

// violinOutline builds the mirrored density polygon of xs centered at loc.
func violinOutline(xs []float64, loc float64) (*plotter.Polygon, error) {
	curve := kdeCurve(xs, 128)
	scale := violinHalfWidth / curvePeak(curve)

	pts := make(plotter.XYs, 0, len(curve)*2)
	for _, cp := range curve {
		pts = append(pts, plotter.XY{X: loc + cp.Y*scale, Y: cp.X})
	}
	for i := len(curve) - 1; i >= 0; i-- {
		pts = append(pts, plotter.XY{X: loc - curve[i].Y*scale, Y: curve[i].X})
	}

	poly, err := plotter.NewPolygon(pts)
	if err != nil {
		return nil, err
	}
	poly.Color = color.RGBA{R: 214, G: 214, B: 214, A: 120}
	poly.LineStyle.Color = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	poly.LineStyle.Width = vg.Points(1)
	return poly, nil
}

func distinctCities(rates []model.CityRate) []types.CityName {
	var cities []types.CityName
	seen := make(map[types.CityName]bool)
	for _, r := range rates {
		if !seen[r.City] {
			seen[r.City] = true
			cities = append(cities, r.City)
		}
	}
	return cities
}
