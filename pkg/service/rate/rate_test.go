package rate_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/twpayne/go-geom"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/service/rate"
)

func loggedContext() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return ctxlog.With(context.Background(), logger), &buf
}

func squareAround(lon, lat float64) *geom.MultiPolygon {
	return geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{{{
		{lon - 0.1, lat - 0.1},
		{lon + 0.1, lat - 0.1},
		{lon + 0.1, lat + 0.1},
		{lon - 0.1, lat + 0.1},
		{lon - 0.1, lat - 0.1},
	}}})
}

func sampleCases() []model.CaseRecord {
	return []model.CaseRecord{
		{Year: 2022, City: "Taipei City", Age: types.Age0to4, Count: 700},
		{Year: 2022, City: "New Taipei City", Age: types.Age0to4, Count: 300},
		{Year: 2022, City: "Taipei City", Age: types.Age65Plus, Count: 250},
		{Year: 2023, City: "Taipei City", Age: types.Age0to4, Count: 120},
	}
}

func TestSumByYearAge(t *testing.T) {
	totals := rate.SumByYearAge(sampleCases())
	gt.Equal(t, totals, []model.YearAgeTotal{
		{Year: 2022, Age: types.Age0to4, Count: 1000},
		{Year: 2022, Age: types.Age65Plus, Count: 250},
		{Year: 2023, Age: types.Age0to4, Count: 120},
	})

	t.Run("input order does not matter", func(t *testing.T) {
		cases := sampleCases()
		reversed := make([]model.CaseRecord, 0, len(cases))
		for i := len(cases) - 1; i >= 0; i-- {
			reversed = append(reversed, cases[i])
		}
		gt.Equal(t, rate.SumByYearAge(reversed), totals)
	})
}

func TestSumByCityAge(t *testing.T) {
	totals := rate.SumByCityAge(sampleCases(), 2022)
	gt.Equal(t, totals, []model.CityAgeTotal{
		{City: "New Taipei City", Age: types.Age0to4, Count: 300},
		{City: "Taipei City", Age: types.Age0to4, Count: 700},
		{City: "Taipei City", Age: types.Age65Plus, Count: 250},
	})

	t.Run("other years are excluded", func(t *testing.T) {
		gt.Equal(t, len(rate.SumByCityAge(sampleCases(), 2023)), 1)
		gt.Equal(t, len(rate.SumByCityAge(sampleCases(), 1999)), 0)
	})
}

func TestNational(t *testing.T) {
	totals := []model.YearAgeTotal{
		{Year: 2022, Age: types.Age0to4, Count: 1000},
		{Year: 2022, Age: types.Age65Plus, Count: 250},
		{Year: 2023, Age: types.Age0to4, Count: 120},
	}
	pops := []model.YearPopulation{
		{Year: 2022, Age: types.Age0to4, Population: 100000},
		{Year: 2022, Age: types.Age65Plus, Population: 50000},
	}

	t.Run("computes exact ratios", func(t *testing.T) {
		ctx, _ := loggedContext()
		rates, err := rate.National(ctx, totals[:2], pops)
		gt.NoError(t, err)
		gt.Equal(t, len(rates), 2)
		gt.Equal(t, rates[0].Percentage, 0.01)
		gt.Equal(t, rates[1].Percentage, 0.005)
	})

	t.Run("unmatched aggregate is reported and skipped", func(t *testing.T) {
		ctx, logs := loggedContext()
		rates, err := rate.National(ctx, totals, pops)
		gt.NoError(t, err)
		gt.Equal(t, len(rates), 2)
		gt.S(t, logs.String()).Contains("no population entry")
		gt.S(t, logs.String()).Contains("2023")
	})

	t.Run("duplicate population entry is an error", func(t *testing.T) {
		ctx, _ := loggedContext()
		doubled := append([]model.YearPopulation{}, pops...)
		doubled = append(doubled, pops[0])
		_, err := rate.National(ctx, totals, doubled)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("duplicate population entry")
	})
}

func TestNationalDipYear(t *testing.T) {
	var cases []model.CaseRecord
	var pops []model.YearPopulation
	for year := types.Year(2019); year <= 2022; year++ {
		for _, age := range types.AgeGroups() {
			count := 900 + 50*age.Index()
			if year == 2021 {
				count = 300 + 20*age.Index()
			}
			cases = append(cases, model.CaseRecord{Year: year, City: "Taipei City", Age: age, Count: count})
			pops = append(pops, model.YearPopulation{Year: year, Age: age, Population: 100000})
		}
	}

	ctx, _ := loggedContext()
	rates, err := rate.National(ctx, rate.SumByYearAge(cases), pops)
	gt.NoError(t, err)
	gt.Equal(t, len(rates), 4*types.NumAgeGroups)

	// The low year must surface as every band's minimum.
	for _, age := range types.AgeGroups() {
		minYear := types.Year(0)
		minPct := 0.0
		for _, r := range rates {
			if r.Age != age {
				continue
			}
			if minYear == 0 || r.Percentage < minPct {
				minYear = r.Year
				minPct = r.Percentage
			}
		}
		gt.Equal(t, minYear, types.Year(2021))
	}
}

func TestCityTables(t *testing.T) {
	totals := []model.CityAgeTotal{
		{City: "Ghost City", Age: types.Age0to4, Count: 5},
		{City: "Taipei City", Age: types.Age0to4, Count: 150},
		{City: "Taipei City", Age: types.Age65Plus, Count: 90},
	}
	pops := []model.CityPopulation{
		{City: "Quiet City", ByAge: [types.NumAgeGroups]int{100, 100, 100, 100, 100}},
		{City: "Taipei City", ByAge: [types.NumAgeGroups]int{15000, 20000, 25000, 90000, 30000}},
	}

	ctx, logs := loggedContext()
	cityRates, overall, err := rate.CityTables(ctx, totals, pops)
	gt.NoError(t, err)

	gt.Equal(t, len(cityRates), 2)
	gt.Equal(t, cityRates[0].City, types.CityName("Taipei City"))
	gt.Equal(t, cityRates[0].Percentage, 0.01)
	gt.Equal(t, cityRates[1].Percentage, 0.003)

	gt.Equal(t, len(overall), 1)
	gt.Equal(t, overall[0].City, types.CityName("Taipei City"))
	gt.Equal(t, overall[0].Cases, 240)
	gt.Equal(t, overall[0].Percentage, float64(240)/float64(180000))

	gt.S(t, logs.String()).Contains("Ghost City")
	gt.S(t, logs.String()).Contains("Quiet City")

	t.Run("duplicate city in the sheet is an error", func(t *testing.T) {
		ctx, _ := loggedContext()
		doubled := append([]model.CityPopulation{}, pops...)
		doubled = append(doubled, pops[1])
		_, _, err := rate.CityTables(ctx, totals, doubled)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("duplicate city")
	})
}

func TestRegions(t *testing.T) {
	cityRates := []model.CityRate{
		{City: "A City", Age: types.Age5to14, Cases: 40, Population: 10000, Percentage: 0.004},
	}
	overall := []model.CityOverall{
		{City: "A City", Cases: 40, Population: 50000, Percentage: 0.0008},
		{City: "B City", Cases: 10, Population: 50000, Percentage: 0.0002},
	}
	boundaries := []model.CityBoundary{
		{City: "A City", Geometry: squareAround(121.5, 25.0)},
		{City: "C City", Geometry: squareAround(120.3, 22.6)},
	}

	ctx, logs := loggedContext()
	regions, err := rate.Regions(ctx, cityRates, overall, boundaries)
	gt.NoError(t, err)

	gt.Equal(t, len(regions), 1)
	gt.Equal(t, regions[0].City, types.CityName("A City"))
	gt.Equal(t, regions[0].Overall, 0.0008)
	gt.Equal(t, regions[0].ByAge[types.Age5to14.Index()], 0.004)
	gt.V(t, regions[0].Geometry).NotNil()

	gt.S(t, logs.String()).Contains("B City")
	gt.S(t, logs.String()).Contains("C City")
}

func TestBuild(t *testing.T) {
	cases := sampleCases()
	yearPops := []model.YearPopulation{
		{Year: 2022, Age: types.Age0to4, Population: 100000},
		{Year: 2022, Age: types.Age65Plus, Population: 50000},
		{Year: 2023, Age: types.Age0to4, Population: 100000},
	}
	cityPops := []model.CityPopulation{
		{City: "New Taipei City", ByAge: [types.NumAgeGroups]int{30000, 40000, 50000, 200000, 60000}},
		{City: "Taipei City", ByAge: [types.NumAgeGroups]int{15000, 20000, 25000, 90000, 30000}},
	}
	boundaries := []model.CityBoundary{
		{City: "New Taipei City", Geometry: squareAround(121.6, 25.0)},
		{City: "Taipei City", Geometry: squareAround(121.5, 25.05)},
	}

	t.Run("produces every table", func(t *testing.T) {
		ctx, _ := loggedContext()
		set, err := rate.Build(ctx, cases, yearPops, cityPops, boundaries, 2022)
		gt.NoError(t, err)
		gt.Equal(t, set.ReferenceYear, types.Year(2022))
		gt.Equal(t, len(set.National), 3)
		gt.Equal(t, len(set.City), 3)
		gt.Equal(t, len(set.Overall), 2)
		gt.Equal(t, len(set.Regions), 2)
	})

	t.Run("is deterministic", func(t *testing.T) {
		ctx, _ := loggedContext()
		first, err := rate.Build(ctx, cases, yearPops, cityPops, boundaries, 2022)
		gt.NoError(t, err)
		second, err := rate.Build(ctx, cases, yearPops, cityPops, boundaries, 2022)
		gt.NoError(t, err)
		gt.Equal(t, first.National, second.National)
		gt.Equal(t, first.City, second.City)
		gt.Equal(t, first.Overall, second.Overall)
	})

	t.Run("fails when the reference year has no rows", func(t *testing.T) {
		ctx, _ := loggedContext()
		_, err := rate.Build(ctx, cases, yearPops, cityPops, boundaries, 1995)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("no city rates")
	})

	t.Run("fails when no population year matches", func(t *testing.T) {
		ctx, _ := loggedContext()
		stale := []model.YearPopulation{
			{Year: 1970, Age: types.Age0to4, Population: 100000},
		}
		_, err := rate.Build(ctx, cases, stale, cityPops, boundaries, 2022)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("no national rates")
	})

	t.Run("fails when boundaries cover none of the cities", func(t *testing.T) {
		ctx, _ := loggedContext()
		foreign := []model.CityBoundary{
			{City: "Lienchiang County", Geometry: squareAround(119.9, 26.15)},
		}
		_, err := rate.Build(ctx, cases, yearPops, cityPops, foreign, 2022)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("no map regions")
	})
}
