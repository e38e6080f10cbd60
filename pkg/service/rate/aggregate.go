package rate

import (
	"sort"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

type yearAgeKey struct {
	year types.Year
	age  types.AgeGroup
}

type cityAgeKey struct {
	city types.CityName
	age  types.AgeGroup
}

// SumByYearAge sums patient counts over all cities per (year, age group).
// The result is sorted by year, then canonical age order. Groups absent from
// the input produce no row.
func SumByYearAge(records []model.CaseRecord) []model.YearAgeTotal {
	sums := make(map[yearAgeKey]int, len(records))
	for _, r := range records {
		sums[yearAgeKey{year: r.Year, age: r.Age}] += r.Count
	}

	totals := make([]model.YearAgeTotal, 0, len(sums))
	for key, count := range sums {
		totals = append(totals, model.YearAgeTotal{
			Year:  key.year,
			Age:   key.age,
			Count: count,
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Year != totals[j].Year {
			return totals[i].Year < totals[j].Year
		}
		return totals[i].Age < totals[j].Age
	})
	return totals
}

// SumByCityAge sums patient counts per (city, age group) for a single year.
// Records of other years are ignored. The result is sorted by city name, then
// canonical age order.
func SumByCityAge(records []model.CaseRecord, year types.Year) []model.CityAgeTotal {
	sums := make(map[cityAgeKey]int, len(records))
	for _, r := range records {
		if r.Year != year {
			continue
		}
		sums[cityAgeKey{city: r.City, age: r.Age}] += r.Count
	}

	totals := make([]model.CityAgeTotal, 0, len(sums))
	for key, count := range sums {
		totals = append(totals, model.CityAgeTotal{
			City:  key.city,
			Age:   key.age,
			Count: count,
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].City != totals[j].City {
			return totals[i].City < totals[j].City
		}
		return totals[i].Age < totals[j].Age
	})
	return totals
}
