package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/twpayne/go-geom"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// CityBoundary is the multi-polygon outline of one city as read from
// the boundary dataset, plus its numeric feature attributes (missing
// values are stored as zero).
type CityBoundary struct {
	City       types.CityName
	Geometry   *geom.MultiPolygon
	Attributes map[string]float64
}

// Validate checks the boundary feature. Every polygon must carry at least
// one ring and every ring at least one coordinate.
func (b *CityBoundary) Validate() error {
	if b.City == "" {
		return goerr.New("boundary city name is required")
	}
	if b.Geometry == nil || b.Geometry.NumPolygons() == 0 {
		return goerr.New("boundary geometry is empty", goerr.V("city", b.City))
	}
	for i := 0; i < b.Geometry.NumPolygons(); i++ {
		poly := b.Geometry.Polygon(i)
		if poly.NumLinearRings() == 0 {
			return goerr.New("boundary polygon has no rings",
				goerr.V("city", b.City), goerr.V("polygon", i))
		}
		for r := 0; r < poly.NumLinearRings(); r++ {
			if poly.LinearRing(r).NumCoords() == 0 {
				return goerr.New("boundary polygon has an empty ring",
					goerr.V("city", b.City), goerr.V("polygon", i))
			}
		}
	}
	return nil
}

// GeoRegion joins one city boundary with its incidence values for the
// map layer: one percentage per age band plus the all-ages overall.
type GeoRegion struct {
	City     types.CityName
	Geometry *geom.MultiPolygon
	ByAge    [types.NumAgeGroups]float64
	Overall  float64
}
