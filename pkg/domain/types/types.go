package types

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// Year represents a calendar year of the surveillance period
type Year int

// Int returns the int representation
func (y Year) Int() int {
	return int(y)
}

// String returns the string representation
func (y Year) String() string {
	return strconv.Itoa(int(y))
}

// Validate checks that the year is plausible for surveillance data
func (y Year) Validate() error {
	if y < 1900 || y > 2200 {
		return goerr.New("year out of range", goerr.V("year", int(y)))
	}
	return nil
}

// CityName identifies a city or county by its name attribute
type CityName string

// String returns the string representation
func (c CityName) String() string {
	return string(c)
}

// ReportID identifies a single report generation run
type ReportID string

// String returns the string representation
func (id ReportID) String() string {
	return string(id)
}

// NewReportID creates a new ReportID
func NewReportID() ReportID {
	return ReportID(uuid.New().String())
}
