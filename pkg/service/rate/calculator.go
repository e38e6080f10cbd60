package rate

import (
	"context"
	"sort"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// National joins yearly case aggregates against the national population table
// on (year, age group). An aggregate without a matching population entry is
// reported and skipped so that coverage gaps never silently understate the
// surviving rates.
func National(ctx context.Context, totals []model.YearAgeTotal, pops []model.YearPopulation) ([]model.YearRate, error) {
	denom := make(map[yearAgeKey]int, len(pops))
	for _, p := range pops {
		key := yearAgeKey{year: p.Year, age: p.Age}
		if _, exists := denom[key]; exists {
			return nil, goerr.New("duplicate population entry",
				goerr.V("year", p.Year.Int()),
				goerr.V("age", p.Age.String()))
		}
		denom[key] = p.Population
	}

	logger := ctxlog.From(ctx)
	rates := make([]model.YearRate, 0, len(totals))
	for _, total := range totals {
		population, ok := denom[yearAgeKey{year: total.Year, age: total.Age}]
		if !ok {
			logger.Warn("no population entry for case aggregate, skipping",
				"year", total.Year.Int(),
				"age", total.Age.String())
			continue
		}
		rate, err := model.NewYearRate(total.Year, total.Age, total.Count, population)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

// CityTables joins city aggregates of the reference year against the city
// population sheet, producing the per-band rate table and the all-ages
// overall table in one pass. A city present on only one side of the join is
// reported and skipped; a duplicated city makes the key-based join ambiguous
// and is an error.
func CityTables(ctx context.Context, totals []model.CityAgeTotal, pops []model.CityPopulation) ([]model.CityRate, []model.CityOverall, error) {
	denom := make(map[types.CityName]model.CityPopulation, len(pops))
	for _, p := range pops {
		if _, exists := denom[p.City]; exists {
			return nil, nil, goerr.New("duplicate city in population sheet", goerr.V("city", p.City))
		}
		denom[p.City] = p
	}

	logger := ctxlog.From(ctx)
	cityRates := make([]model.CityRate, 0, len(totals))
	caseSums := make(map[types.CityName]int, len(denom))
	warned := make(map[types.CityName]bool)
	for _, total := range totals {
		pop, ok := denom[total.City]
		if !ok {
			if !warned[total.City] {
				warned[total.City] = true
				logger.Warn("no population for city, skipping its case rows",
					"city", string(total.City))
			}
			continue
		}
		rate, err := model.NewCityRate(total.City, total.Age, total.Count, pop.Population(total.Age))
		if err != nil {
			return nil, nil, err
		}
		cityRates = append(cityRates, rate)
		caseSums[total.City] += total.Count
	}

	overall := make([]model.CityOverall, 0, len(caseSums))
	for _, p := range pops {
		cases, ok := caseSums[p.City]
		if !ok {
			logger.Warn("no case rows for city, skipping", "city", string(p.City))
			continue
		}
		row, err := model.NewCityOverall(p.City, cases, p.Total())
		if err != nil {
			return nil, nil, err
		}
		overall = append(overall, row)
	}
	sort.Slice(overall, func(i, j int) bool { return overall[i].City < overall[j].City })

	return cityRates, overall, nil
}

// Regions attaches rate figures to boundary polygons by city name. Cities
// missing a polygon, and polygons missing a rate, are reported and left off
// the map.
func Regions(ctx context.Context, cityRates []model.CityRate, overall []model.CityOverall, boundaries []model.CityBoundary) ([]model.GeoRegion, error) {
	shapes := make(map[types.CityName]model.CityBoundary, len(boundaries))
	for _, b := range boundaries {
		if _, exists := shapes[b.City]; exists {
			return nil, goerr.New("duplicate city in boundary dataset", goerr.V("city", b.City))
		}
		shapes[b.City] = b
	}

	byAge := make(map[types.CityName][types.NumAgeGroups]float64, len(cityRates))
	for _, r := range cityRates {
		bands := byAge[r.City]
		bands[r.Age.Index()] = r.Percentage
		byAge[r.City] = bands
	}

	logger := ctxlog.From(ctx)
	matched := make(map[types.CityName]bool, len(overall))
	regions := make([]model.GeoRegion, 0, len(overall))
	for _, row := range overall {
		boundary, ok := shapes[row.City]
		if !ok {
			logger.Warn("no boundary polygon for city, omitting from map",
				"city", string(row.City))
			continue
		}
		matched[row.City] = true
		regions = append(regions, model.GeoRegion{
			City:     row.City,
			Geometry: boundary.Geometry,
			ByAge:    byAge[row.City],
			Overall:  row.Percentage,
		})
	}
	for _, b := range boundaries {
		if !matched[b.City] {
			logger.Warn("no rate for boundary city, omitting from map",
				"city", string(b.City))
		}
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].City < regions[j].City })
	return regions, nil
}

// Build computes every rate table the report consumes. It fails outright when
// a whole table would come out empty, which means the inputs and the
// reference year do not belong together.
func Build(ctx context.Context, cases []model.CaseRecord, yearPops []model.YearPopulation, cityPops []model.CityPopulation, boundaries []model.CityBoundary, referenceYear types.Year) (*model.RateSet, error) {
	national, err := National(ctx, SumByYearAge(cases), yearPops)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compute national rates")
	}
	if len(national) == 0 {
		return nil, goerr.New("no national rates computed, population table does not cover the case years")
	}

	cityTotals := SumByCityAge(cases, referenceYear)
	cityRates, overall, err := CityTables(ctx, cityTotals, cityPops)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compute city rates", goerr.V("year", referenceYear.Int()))
	}
	if len(cityRates) == 0 {
		return nil, goerr.New("no city rates computed for reference year",
			goerr.V("year", referenceYear.Int()))
	}

	regions, err := Regions(ctx, cityRates, overall, boundaries)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build map regions")
	}
	if len(regions) == 0 {
		return nil, goerr.New("no map regions computed, boundary dataset does not cover the rated cities")
	}

	return &model.RateSet{
		ReferenceYear: referenceYear,
		National:      national,
		City:          cityRates,
		Overall:       overall,
		Regions:       regions,
	}, nil
}
