package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// YearAgeTotal is the case count summed over all cities for one
// (year, age band) group.
type YearAgeTotal struct {
	Year  types.Year
	Age   types.AgeGroup
	Count int
}

// CityAgeTotal is the case count summed for one (city, age band) group
// within a single year.
type CityAgeTotal struct {
	City  types.CityName
	Age   types.AgeGroup
	Count int
}

// YearRate is the national incidence for one (year, age band) cell.
// Percentage is Cases/Population as a fraction; it can exceed 1 when
// persons are counted once per visit. Derived rows are recomputed on
// every run and never mutated.
type YearRate struct {
	Year       types.Year
	Age        types.AgeGroup
	Cases      int
	Population int
	Percentage float64
}

// NewYearRate computes the incidence for one national cell. A
// non-positive denominator is an error so the division can never
// produce Inf or NaN.
func NewYearRate(year types.Year, age types.AgeGroup, cases, population int) (YearRate, error) {
	if err := year.Validate(); err != nil {
		return YearRate{}, goerr.Wrap(err, "invalid rate year")
	}
	if !age.IsValid() {
		return YearRate{}, goerr.New("invalid rate age group", goerr.V("age", int(age)))
	}
	if cases < 0 {
		return YearRate{}, goerr.New("case total must not be negative",
			goerr.V("year", year), goerr.V("age", age.String()), goerr.V("cases", cases))
	}
	if population <= 0 {
		return YearRate{}, goerr.New("population must be positive",
			goerr.V("year", year), goerr.V("age", age.String()), goerr.V("population", population))
	}
	return YearRate{
		Year:       year,
		Age:        age,
		Cases:      cases,
		Population: population,
		Percentage: float64(cases) / float64(population),
	}, nil
}

// CityRate is the incidence for one (city, age band) cell of the
// reference year.
type CityRate struct {
	City       types.CityName
	Age        types.AgeGroup
	Cases      int
	Population int
	Percentage float64
}

// NewCityRate computes the incidence for one city cell
func NewCityRate(city types.CityName, age types.AgeGroup, cases, population int) (CityRate, error) {
	if city == "" {
		return CityRate{}, goerr.New("rate city is required")
	}
	if !age.IsValid() {
		return CityRate{}, goerr.New("invalid rate age group", goerr.V("age", int(age)))
	}
	if cases < 0 {
		return CityRate{}, goerr.New("case total must not be negative",
			goerr.V("city", city), goerr.V("age", age.String()), goerr.V("cases", cases))
	}
	if population <= 0 {
		return CityRate{}, goerr.New("population must be positive",
			goerr.V("city", city), goerr.V("age", age.String()), goerr.V("population", population))
	}
	return CityRate{
		City:       city,
		Age:        age,
		Cases:      cases,
		Population: population,
		Percentage: float64(cases) / float64(population),
	}, nil
}

// CityOverall is the all-ages incidence of one city: case counts summed
// across the five bands divided by the city total population.
type CityOverall struct {
	City       types.CityName
	Cases      int
	Population int
	Percentage float64
}

// NewCityOverall computes the all-ages incidence for one city
func NewCityOverall(city types.CityName, cases, population int) (CityOverall, error) {
	if city == "" {
		return CityOverall{}, goerr.New("rate city is required")
	}
	if cases < 0 {
		return CityOverall{}, goerr.New("case total must not be negative",
			goerr.V("city", city), goerr.V("cases", cases))
	}
	if population <= 0 {
		return CityOverall{}, goerr.New("population must be positive",
			goerr.V("city", city), goerr.V("population", population))
	}
	return CityOverall{
		City:       city,
		Cases:      cases,
		Population: population,
		Percentage: float64(cases) / float64(population),
	}, nil
}

// RateSet bundles all derived rate tables of one run. It is the only
// input of the presenters and the report writer.
type RateSet struct {
	ReferenceYear types.Year
	National      []YearRate
	City          []CityRate
	Overall       []CityOverall
	Regions       []GeoRegion
}
