package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// AgeGroup represents one of the five fixed age bands of the ILI
// surveillance tables. The zero value is the youngest band.
type AgeGroup int

const (
	Age0to4 AgeGroup = iota
	Age5to14
	Age15to24
	Age25to64
	Age65Plus
)

// ageGroupLabels holds the band labels in reporting order.
var ageGroupLabels = [...]string{"0-4", "5-14", "15-24", "25-64", "65+"}

// AgeGroups returns all age bands in reporting order. Every enumeration
// of bands (joins, legends, sheet rows) goes through this so the order
// never depends on input data.
func AgeGroups() []AgeGroup {
	return []AgeGroup{Age0to4, Age5to14, Age15to24, Age25to64, Age65Plus}
}

// NumAgeGroups is the number of age bands.
const NumAgeGroups = len(ageGroupLabels)

// String returns the band label, e.g. "5-14"
func (a AgeGroup) String() string {
	if !a.IsValid() {
		return "unknown"
	}
	return ageGroupLabels[a]
}

// Index returns the position of the band in reporting order
func (a AgeGroup) Index() int {
	return int(a)
}

// IsValid checks if the value is one of the five bands
func (a AgeGroup) IsValid() bool {
	return a >= Age0to4 && a <= Age65Plus
}

// ParseAgeGroup maps a table cell to its age band. The label is matched
// after trimming surrounding space; anything else is an error because no
// partial-row recovery is defined for the source tables.
func ParseAgeGroup(s string) (AgeGroup, error) {
	label := strings.TrimSpace(s)
	for i, l := range ageGroupLabels {
		if label == l {
			return AgeGroup(i), nil
		}
	}
	return AgeGroup(-1), goerr.New("unrecognized age group", goerr.V("value", s))
}
