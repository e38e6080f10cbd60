package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// CaseRecord is one row of the pre-aggregated ILI visit table: the number
// of reported clinical visits for a (year, city, age band) cell. Records
// are immutable once loaded.
type CaseRecord struct {
	Year  types.Year
	City  types.CityName
	Age   types.AgeGroup
	Count int
}

// Validate checks the record fields
func (c *CaseRecord) Validate() error {
	if err := c.Year.Validate(); err != nil {
		return goerr.Wrap(err, "invalid case record year")
	}
	if c.City == "" {
		return goerr.New("case record city is required")
	}
	if !c.Age.IsValid() {
		return goerr.New("invalid case record age group", goerr.V("age", int(c.Age)))
	}
	if c.Count < 0 {
		return goerr.New("case count must not be negative",
			goerr.V("city", c.City),
			goerr.V("year", c.Year),
			goerr.V("count", c.Count))
	}
	return nil
}
