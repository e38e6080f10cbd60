package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// cityNameProperties are the feature attributes probed for the city
// name, in preference order. Government boundary exports label the
// county field inconsistently across vintages.
var cityNameProperties = []string{"countyname", "countyeng", "county", "city", "name"}

// ReadBoundaries parses the city boundary dataset (GeoJSON). Input that
// is not valid UTF-8 is re-encoded from Big5 first, the encoding of
// Taiwan government boundary exports. Missing numeric attributes become
// zero, and features come back sorted by city name.
func ReadBoundaries(r io.Reader) ([]model.CityBoundary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read boundary dataset")
	}
	if !utf8.Valid(data) {
		decoded, err := traditionalchinese.Big5.NewDecoder().Bytes(data)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to re-encode boundary dataset to UTF-8")
		}
		data = decoded
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse boundary dataset")
	}
	if len(fc.Features) == 0 {
		return nil, goerr.New("boundary dataset has no features")
	}

	seen := make(map[types.CityName]bool)
	boundaries := make([]model.CityBoundary, 0, len(fc.Features))
	for i, feat := range fc.Features {
		city, err := featureCityName(feat.Properties)
		if err != nil {
			return nil, goerr.Wrap(err, "boundary feature has no city name", goerr.V("feature", i))
		}
		mp, err := asMultiPolygon(feat.Geometry)
		if err != nil {
			return nil, goerr.Wrap(err, "unsupported boundary geometry",
				goerr.V("feature", i), goerr.V("city", city))
		}

		b := model.CityBoundary{
			City:       city,
			Geometry:   mp,
			Attributes: numericAttributes(feat.Properties),
		}
		if err := b.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid boundary feature", goerr.V("feature", i))
		}
		if seen[city] {
			return nil, goerr.New("duplicate city in boundary dataset",
				goerr.V("feature", i), goerr.V("city", city))
		}
		seen[city] = true
		boundaries = append(boundaries, b)
	}

	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].City < boundaries[j].City })
	return boundaries, nil
}

func featureCityName(props map[string]interface{}) (types.CityName, error) {
	byLabel := make(map[string]string, len(props))
	for k, v := range props {
		if s, ok := v.(string); ok {
			byLabel[normalizeLabel(k)] = strings.TrimSpace(s)
		}
	}
	for _, label := range cityNameProperties {
		if name := byLabel[label]; name != "" {
			return types.CityName(name), nil
		}
	}
	return "", goerr.New("no city name property", goerr.V("candidates", cityNameProperties))
}

// numericAttributes keeps the numeric feature properties, turning JSON
// null into zero.
func numericAttributes(props map[string]interface{}) map[string]float64 {
	attrs := make(map[string]float64)
	for k, v := range props {
		switch n := v.(type) {
		case float64:
			attrs[k] = n
		case nil:
			attrs[k] = 0
		}
	}
	return attrs
}

func asMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch geometry := g.(type) {
	case *geom.MultiPolygon:
		return geometry, nil
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(geometry.Layout())
		if err := mp.Push(geometry); err != nil {
			return nil, goerr.Wrap(err, "failed to wrap polygon")
		}
		return mp, nil
	case nil:
		return nil, goerr.New("feature has no geometry")
	default:
		return nil, goerr.New("geometry is not a polygon", goerr.V("type", fmt.Sprintf("%T", g)))
	}
}
