package render

import (
	"context"
	"image/color"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/interfaces"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// File names of the five renderings, in report order.
const (
	DensityFile    = "age_density.png"
	BoxplotFile    = "age_boxplot.png"
	TrendFile      = "year_trend.png"
	ViolinFile     = "city_violin.png"
	ChoroplethFile = "city_map.png"
)

// Jittered point clouds use a fixed seed so repeated runs draw identical
// pixels.
const jitterSeed = 443

// bandColors assigns one fixed color per age group, indexed by
// types.AgeGroup.Index.
var bandColors = [types.NumAgeGroups]color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
}

// Renderer writes the five descriptive plots of a rate set as PNG files.
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

var _ interfaces.Renderer = (*Renderer)(nil)

// Render writes all five plots into dir and returns the written paths in
// report order.
func (r *Renderer) Render(ctx context.Context, set *model.RateSet, dir string) ([]string, error) {
	steps := []struct {
		name string
		file string
		draw func(*model.RateSet, string) error
	}{
		{name: "density", file: DensityFile, draw: Density},
		{name: "boxplot", file: BoxplotFile, draw: Boxplot},
		{name: "trend", file: TrendFile, draw: Trend},
		{name: "violin", file: ViolinFile, draw: Violin},
		{name: "choropleth", file: ChoroplethFile, draw: Choropleth},
	}

	logger := ctxlog.From(ctx)
	written := make([]string, 0, len(steps))
	for _, step := range steps {
		path := filepath.Join(dir, step.file)
		logger.Debug("rendering plot", "plot", step.name, "path", path)
		if err := step.draw(set, path); err != nil {
			return nil, goerr.Wrap(err, "failed to render plot", goerr.V("plot", step.name))
		}
		written = append(written, path)
	}
	return written, nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// groupNationalByAge splits the national rate table into per-band incidence
// samples, preserving the table's year order.
func groupNationalByAge(national []model.YearRate) [types.NumAgeGroups][]float64 {
	var groups [types.NumAgeGroups][]float64
	for _, r := range national {
		if !r.Age.IsValid() {
			continue
		}
		i := r.Age.Index()
		groups[i] = append(groups[i], r.Percentage)
	}
	return groups
}

func ageLabels() []string {
	labels := make([]string, 0, types.NumAgeGroups)
	for _, age := range types.AgeGroups() {
		labels = append(labels, age.String())
	}
	return labels
}

func withAlpha(c color.RGBA, a uint8) color.RGBA {
	c.A = a
	return c
}
