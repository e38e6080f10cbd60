package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// columns maps normalized header labels to field positions
type columns map[string]int

// normalizeLabel lowers header casing and folds separators so that
// "Age Group", "age_group" and "AGE_GROUP" address the same column. A
// UTF-8 BOM on the first cell is stripped.
func normalizeLabel(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

func newColumns(header []string) columns {
	cols := make(columns, len(header))
	for i, label := range header {
		cols[normalizeLabel(label)] = i
	}
	return cols
}

// index returns the position of the first alias found in the header
func (c columns) index(aliases ...string) (int, error) {
	for _, a := range aliases {
		if i, ok := c[a]; ok {
			return i, nil
		}
	}
	return 0, goerr.New("required column not found", goerr.V("column", aliases[0]))
}

func parseCount(value string, row int, column string) (int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, goerr.Wrap(err, "non-numeric value",
			goerr.V("column", column),
			goerr.V("row", row),
			goerr.V("value", value))
	}
	return n, nil
}

// ReadCases parses the long-format ILI visit count table. Any
// unparseable row aborts the load; there is no partial-row recovery.
func ReadCases(r io.Reader) ([]model.CaseRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read case table header")
	}
	cols := newColumns(header)

	yearCol, err := cols.index("year", "years")
	if err != nil {
		return nil, err
	}
	cityCol, err := cols.index("city", "county")
	if err != nil {
		return nil, err
	}
	ageCol, err := cols.index("age_group", "age_level", "age")
	if err != nil {
		return nil, err
	}
	countCol, err := cols.index("patient_count", "count", "cases")
	if err != nil {
		return nil, err
	}

	var records []model.CaseRecord
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read case table row", goerr.V("row", row))
		}

		year, err := parseCount(fields[yearCol], row, "year")
		if err != nil {
			return nil, err
		}
		age, err := types.ParseAgeGroup(fields[ageCol])
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse case table row", goerr.V("row", row))
		}
		count, err := parseCount(fields[countCol], row, "patient_count")
		if err != nil {
			return nil, err
		}

		rec := model.CaseRecord{
			Year:  types.Year(year),
			City:  types.CityName(strings.TrimSpace(fields[cityCol])),
			Age:   age,
			Count: count,
		}
		if err := rec.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid case table row", goerr.V("row", row))
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, goerr.New("case table has no data rows")
	}
	return records, nil
}

// ReadYearPopulations parses the national population table, one row per
// (year, age band). Duplicate keys are rejected so the national join is
// unambiguous.
func ReadYearPopulations(r io.Reader) ([]model.YearPopulation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read population table header")
	}
	cols := newColumns(header)

	yearCol, err := cols.index("year", "years")
	if err != nil {
		return nil, err
	}
	ageCol, err := cols.index("age_level", "age_group", "age")
	if err != nil {
		return nil, err
	}
	popCol, err := cols.index("population")
	if err != nil {
		return nil, err
	}

	type key struct {
		year types.Year
		age  types.AgeGroup
	}
	seen := make(map[key]bool)

	var rows []model.YearPopulation
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read population table row", goerr.V("row", row))
		}

		year, err := parseCount(fields[yearCol], row, "year")
		if err != nil {
			return nil, err
		}
		age, err := types.ParseAgeGroup(fields[ageCol])
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse population table row", goerr.V("row", row))
		}
		pop, err := parseCount(fields[popCol], row, "population")
		if err != nil {
			return nil, err
		}

		p := model.YearPopulation{Year: types.Year(year), Age: age, Population: pop}
		if err := p.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid population table row", goerr.V("row", row))
		}

		k := key{year: p.Year, age: p.Age}
		if seen[k] {
			return nil, goerr.New("duplicate population entry",
				goerr.V("row", row),
				goerr.V("year", p.Year),
				goerr.V("age", p.Age.String()))
		}
		seen[k] = true
		rows = append(rows, p)
	}

	if len(rows) == 0 {
		return nil, goerr.New("population table has no data rows")
	}
	return rows, nil
}
