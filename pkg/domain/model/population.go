package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// YearPopulation is the national population denominator for one
// (year, age band) cell.
type YearPopulation struct {
	Year       types.Year
	Age        types.AgeGroup
	Population int
}

// Validate checks the denominator row
func (p *YearPopulation) Validate() error {
	if err := p.Year.Validate(); err != nil {
		return goerr.Wrap(err, "invalid population year")
	}
	if !p.Age.IsValid() {
		return goerr.New("invalid population age group", goerr.V("age", int(p.Age)))
	}
	if p.Population <= 0 {
		return goerr.New("population must be positive",
			goerr.V("year", p.Year),
			goerr.V("age", p.Age.String()),
			goerr.V("population", p.Population))
	}
	return nil
}

// CityPopulation holds the per-age-band population of one city for the
// reference year, indexed by the band's reporting-order position.
type CityPopulation struct {
	City  types.CityName
	ByAge [types.NumAgeGroups]int
}

// Population returns the denominator for one age band
func (p *CityPopulation) Population(age types.AgeGroup) int {
	if !age.IsValid() {
		return 0
	}
	return p.ByAge[age.Index()]
}

// Total returns the city population summed across all age bands
func (p *CityPopulation) Total() int {
	total := 0
	for _, n := range p.ByAge {
		total += n
	}
	return total
}

// Validate checks that every band has a positive denominator
func (p *CityPopulation) Validate() error {
	if p.City == "" {
		return goerr.New("city population name is required")
	}
	for _, age := range types.AgeGroups() {
		if p.ByAge[age.Index()] <= 0 {
			return goerr.New("city population must be positive for every age group",
				goerr.V("city", p.City),
				goerr.V("age", age.String()),
				goerr.V("population", p.ByAge[age.Index()]))
		}
	}
	return nil
}
