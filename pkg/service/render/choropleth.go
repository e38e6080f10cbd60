package render

import (
	"image/color"
	"math"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
)

// Map frame fixed to the main island and surrounding counties.
const (
	mapLonMin = 118.0
	mapLonMax = 122.9
	mapLatMin = 21.8
	mapLatMax = 25.4
)

// Choropleth fills each city polygon from a continuous color scale keyed to
// its overall incidence, labels every city at its centroid, and draws a
// vertical color bar beside the map.
func Choropleth(set *model.RateSet, path string) error {
	if len(set.Regions) == 0 {
		return goerr.New("no map regions to draw")
	}

	scale := moreland.SmoothBlueRed()
	lo, hi := overallRange(set.Regions)
	scale.SetMin(lo)
	scale.SetMax(hi)

	p := newPlot("City ILI Incidence", "Longitude", "Latitude")

	labelXYs := make(plotter.XYs, 0, len(set.Regions))
	labelNames := make([]string, 0, len(set.Regions))
	for _, region := range set.Regions {
		fill, err := scale.At(region.Overall)
		if err != nil {
			return goerr.Wrap(err, "overall rate outside color scale",
				goerr.V("city", region.City), goerr.V("rate", region.Overall))
		}
		for i := 0; i < region.Geometry.NumPolygons(); i++ {
			poly := region.Geometry.Polygon(i)
			// Interior rings become holes in the fill.
			rings := make([]plotter.XYer, 0, poly.NumLinearRings())
			for r := 0; r < poly.NumLinearRings(); r++ {
				ring := poly.LinearRing(r)
				xys := make(plotter.XYs, ring.NumCoords())
				for c := 0; c < ring.NumCoords(); c++ {
					coord := ring.Coord(c)
					xys[c] = plotter.XY{X: coord[0], Y: coord[1]}
				}
				rings = append(rings, xys)
			}
			shape, err := plotter.NewPolygon(rings...)
			if err != nil {
				return goerr.Wrap(err, "failed to build city polygon", goerr.V("city", region.City))
			}
			shape.Color = fill
			shape.LineStyle.Color = color.Gray{Y: 90}
			shape.LineStyle.Width = vg.Points(0.5)
			p.Add(shape)
		}

		center := regionCenter(region.Geometry)
		labelXYs = append(labelXYs, plotter.XY{X: center[0], Y: center[1]})
		labelNames = append(labelNames, string(region.City))
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labelNames})
	if err != nil {
		return goerr.Wrap(err, "failed to build city labels")
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(8)
	}
	p.Add(labels)

	p.X.Min, p.X.Max = mapLonMin, mapLonMax
	p.Y.Min, p.Y.Max = mapLatMin, mapLatMax

	bar := newPlot("", "", "Overall incidence")
	bar.HideX()
	bar.Add(&plotter.ColorBar{ColorMap: scale, Vertical: true})

	img := vgimg.New(11*vg.Inch, 8*vg.Inch)
	canvas := draw.New(img)
	p.Draw(draw.Crop(canvas, 0, -1.6*vg.Inch, 0, 0))
	bar.Draw(draw.Crop(canvas, 9.6*vg.Inch, -0.15*vg.Inch, 0.4*vg.Inch, -0.4*vg.Inch))

	f, err := os.Create(path)
	if err != nil {
		return goerr.Wrap(err, "failed to create plot file", goerr.V("path", path))
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		_ = f.Close()
		return goerr.Wrap(err, "failed to encode plot", goerr.V("path", path))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close plot file", goerr.V("path", path))
	}
	return nil
}

// overallRange returns the color scale bounds, padded when every region
// shares one value so the scale keeps a nonzero span.
func overallRange(regions []model.GeoRegion) (float64, float64) {
	lo, hi := regions[0].Overall, regions[0].Overall
	for _, r := range regions[1:] {
		lo = math.Min(lo, r.Overall)
		hi = math.Max(hi, r.Overall)
	}
	if lo == hi {
		pad := math.Max(math.Abs(lo)*0.05, 1e-9)
		lo -= pad
		hi += pad
	}
	return lo, hi
}

// regionCenter places the city label, falling back to the bounding-box
// center for shapes the centroid routine rejects.
func regionCenter(g *geom.MultiPolygon) geom.Coord {
	if c, err := xy.Centroid(g); err == nil && len(c) >= 2 {
		return c
	}
	b := g.Bounds()
	return geom.Coord{(b.Min(0) + b.Max(0)) / 2, (b.Min(1) + b.Max(1)) / 2}
}
