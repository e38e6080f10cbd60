package dataset

import (
	"io"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/xuri/excelize/v2"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// ReadCityPopulations parses the per-city population spreadsheet of the
// reference year. The first sheet is expected to carry one city column
// plus one column per age band; a precomputed total column is ignored
// because the total is derived. Rows come back sorted by city name.
func ReadCityPopulations(r io.Reader) ([]model.CityPopulation, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open city population spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, goerr.New("city population spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read city population sheet", goerr.V("sheet", sheets[0]))
	}
	if len(rows) < 2 {
		return nil, goerr.New("city population sheet has no data rows", goerr.V("sheet", sheets[0]))
	}

	header := rows[0]
	cityCol := -1
	ageCols := map[types.AgeGroup]int{}
	for i, label := range header {
		switch normalizeLabel(label) {
		case "city", "county", "city_county":
			cityCol = i
			continue
		case "total":
			continue
		}
		if age, err := types.ParseAgeGroup(label); err == nil {
			ageCols[age] = i
		}
	}
	if cityCol < 0 {
		return nil, goerr.New("required column not found", goerr.V("column", "city"))
	}
	for _, age := range types.AgeGroups() {
		if _, ok := ageCols[age]; !ok {
			return nil, goerr.New("age group column not found", goerr.V("column", age.String()))
		}
	}

	seen := make(map[types.CityName]bool)
	var pops []model.CityPopulation
	for i, cells := range rows[1:] {
		row := i + 2
		if isEmptyRow(cells) {
			continue
		}
		if cityCol >= len(cells) {
			return nil, goerr.New("city population row is missing the city cell", goerr.V("row", row))
		}

		p := model.CityPopulation{City: types.CityName(strings.TrimSpace(cells[cityCol]))}
		for _, age := range types.AgeGroups() {
			col := ageCols[age]
			if col >= len(cells) {
				return nil, goerr.New("city population row is missing a band cell",
					goerr.V("row", row), goerr.V("column", age.String()))
			}
			n, err := parseCount(cells[col], row, age.String())
			if err != nil {
				return nil, err
			}
			p.ByAge[age.Index()] = n
		}
		if err := p.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid city population row", goerr.V("row", row))
		}
		if seen[p.City] {
			return nil, goerr.New("duplicate city in population sheet",
				goerr.V("row", row), goerr.V("city", p.City))
		}
		seen[p.City] = true
		pops = append(pops, p)
	}

	if len(pops) == 0 {
		return nil, goerr.New("city population sheet has no data rows", goerr.V("sheet", sheets[0]))
	}

	sort.Slice(pops, func(i, j int) bool { return pops[i].City < pops[j].City })
	return pops, nil
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
