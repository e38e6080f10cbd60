package dataset_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/service/dataset"
)

func TestReadCases(t *testing.T) {
	t.Run("parses long-format table", func(t *testing.T) {
		csv := "\ufeffYear,City,Age_Group,Patient_Count\n" +
			"2022,Taipei City,0-4,120\n" +
			"2022,Taipei City,65+,340\n" +
			"2023,Kaohsiung City,5-14,98\n"

		records, err := dataset.ReadCases(strings.NewReader(csv))
		gt.NoError(t, err)
		gt.Equal(t, len(records), 3)
		gt.Equal(t, records[0], model.CaseRecord{
			Year: 2022, City: "Taipei City", Age: types.Age0to4, Count: 120,
		})
		gt.Equal(t, records[1].Age, types.Age65Plus)
		gt.Equal(t, records[2].City, types.CityName("Kaohsiung City"))
	})

	t.Run("accepts lowercase headers and count alias", func(t *testing.T) {
		csv := "year,county,age group,cases\n2020,Hualien County,25-64,77\n"
		records, err := dataset.ReadCases(strings.NewReader(csv))
		gt.NoError(t, err)
		gt.Equal(t, records[0].City, types.CityName("Hualien County"))
		gt.Equal(t, records[0].Count, 77)
	})

	t.Run("fails on non-numeric count naming the row", func(t *testing.T) {
		csv := "Year,City,Age_group,Patient_count\n2022,Taipei City,0-4,many\n"
		_, err := dataset.ReadCases(strings.NewReader(csv))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("non-numeric")
	})

	t.Run("fails on unknown age band", func(t *testing.T) {
		csv := "Year,City,Age_group,Patient_count\n2022,Taipei City,0-9,12\n"
		_, err := dataset.ReadCases(strings.NewReader(csv))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("unrecognized age group")
	})

	t.Run("fails on negative count", func(t *testing.T) {
		csv := "Year,City,Age_group,Patient_count\n2022,Taipei City,0-4,-9\n"
		_, err := dataset.ReadCases(strings.NewReader(csv))
		gt.Error(t, err)
	})

	t.Run("fails on missing column", func(t *testing.T) {
		csv := "Year,City,Patient_count\n2022,Taipei City,12\n"
		_, err := dataset.ReadCases(strings.NewReader(csv))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("required column not found")
	})

	t.Run("fails on empty table", func(t *testing.T) {
		csv := "Year,City,Age_group,Patient_count\n"
		_, err := dataset.ReadCases(strings.NewReader(csv))
		gt.Error(t, err)
	})
}

func TestReadYearPopulations(t *testing.T) {
	t.Run("parses the national table", func(t *testing.T) {
		csv := "Years,Age_level,Population\n" +
			"2022,0-4,900000\n" +
			"2022,65+,4100000\n"
		rows, err := dataset.ReadYearPopulations(strings.NewReader(csv))
		gt.NoError(t, err)
		gt.Equal(t, len(rows), 2)
		gt.Equal(t, rows[0], model.YearPopulation{Year: 2022, Age: types.Age0to4, Population: 900000})
	})

	t.Run("accepts thousand separators", func(t *testing.T) {
		csv := "Year,Age_group,Population\n2022,0-4,\"900,000\"\n"
		rows, err := dataset.ReadYearPopulations(strings.NewReader(csv))
		gt.NoError(t, err)
		gt.Equal(t, rows[0].Population, 900000)
	})

	t.Run("fails on duplicate key", func(t *testing.T) {
		csv := "Years,Age_level,Population\n2022,0-4,900000\n2022,0-4,900001\n"
		_, err := dataset.ReadYearPopulations(strings.NewReader(csv))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("duplicate population entry")
	})

	t.Run("fails on non-positive population", func(t *testing.T) {
		csv := "Years,Age_level,Population\n2022,0-4,0\n"
		_, err := dataset.ReadYearPopulations(strings.NewReader(csv))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("population must be positive")
	})
}

func buildCityPopulationSheet(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for r, cells := range rows {
		for c, v := range cells {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			gt.NoError(t, err)
			gt.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	gt.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestReadCityPopulations(t *testing.T) {
	header := []interface{}{"City", "0-4", "5-14", "15-24", "25-64", "65+", "Total"}

	t.Run("parses sheet and sorts by city", func(t *testing.T) {
		r := buildCityPopulationSheet(t, [][]interface{}{
			header,
			{"Taoyuan City", 90000, 210000, 260000, 1400000, 290000, 2250000},
			{"Keelung City", 10000, 26000, 36000, 220000, 75000, 367000},
		})
		pops, err := dataset.ReadCityPopulations(r)
		gt.NoError(t, err)
		gt.Equal(t, len(pops), 2)
		gt.Equal(t, pops[0].City, types.CityName("Keelung City"))
		gt.Equal(t, pops[1].City, types.CityName("Taoyuan City"))
		gt.Equal(t, pops[0].Population(types.Age25to64), 220000)
		gt.Equal(t, pops[0].Total(), 367000)
	})

	t.Run("fails on missing band column", func(t *testing.T) {
		r := buildCityPopulationSheet(t, [][]interface{}{
			{"City", "0-4", "5-14", "15-24", "25-64"},
			{"Keelung City", 10000, 26000, 36000, 220000},
		})
		_, err := dataset.ReadCityPopulations(r)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("age group column not found")
	})

	t.Run("fails on duplicate city", func(t *testing.T) {
		r := buildCityPopulationSheet(t, [][]interface{}{
			header,
			{"Keelung City", 10000, 26000, 36000, 220000, 75000, 367000},
			{"Keelung City", 10000, 26000, 36000, 220000, 75000, 367000},
		})
		_, err := dataset.ReadCityPopulations(r)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("duplicate city")
	})

	t.Run("fails on zero band population", func(t *testing.T) {
		r := buildCityPopulationSheet(t, [][]interface{}{
			header,
			{"Keelung City", 0, 26000, 36000, 220000, 75000, 357000},
		})
		_, err := dataset.ReadCityPopulations(r)
		gt.Error(t, err)
	})
}

const boundaryFixture = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"COUNTYNAME":"新北市","COUNTYCODE":65000,"AREA":null},"geometry":{"type":"MultiPolygon","coordinates":[[[[121.3,24.9],[121.7,24.9],[121.7,25.3],[121.3,25.3],[121.3,24.9]]]]}},
{"type":"Feature","properties":{"COUNTYNAME":"臺北市","COUNTYCODE":63000},"geometry":{"type":"Polygon","coordinates":[[[121.45,24.95],[121.65,24.95],[121.65,25.21],[121.45,25.21],[121.45,24.95]]]}}
]}`

func TestReadBoundaries(t *testing.T) {
	t.Run("parses features and sorts by city", func(t *testing.T) {
		boundaries, err := dataset.ReadBoundaries(strings.NewReader(boundaryFixture))
		gt.NoError(t, err)
		gt.Equal(t, len(boundaries), 2)
		gt.Equal(t, boundaries[0].City, types.CityName("新北市"))
		gt.Equal(t, boundaries[1].City, types.CityName("臺北市"))
		// A bare polygon is normalized to a single-member multi-polygon
		gt.Equal(t, boundaries[1].Geometry.NumPolygons(), 1)
	})

	t.Run("nulls in numeric attributes become zero", func(t *testing.T) {
		boundaries, err := dataset.ReadBoundaries(strings.NewReader(boundaryFixture))
		gt.NoError(t, err)
		gt.Equal(t, boundaries[0].Attributes["AREA"], float64(0))
		gt.Equal(t, boundaries[0].Attributes["COUNTYCODE"], float64(65000))
	})

	t.Run("re-encodes Big5 input", func(t *testing.T) {
		big5, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte(boundaryFixture))
		gt.NoError(t, err)

		boundaries, err := dataset.ReadBoundaries(bytes.NewReader(big5))
		gt.NoError(t, err)
		gt.Equal(t, boundaries[0].City, types.CityName("新北市"))
		gt.Equal(t, boundaries[1].City, types.CityName("臺北市"))
	})

	t.Run("fails when no city name property", func(t *testing.T) {
		fixture := `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"CODE":1},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}]}`
		_, err := dataset.ReadBoundaries(strings.NewReader(fixture))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("no city name")
	})

	t.Run("fails on non-polygon geometry", func(t *testing.T) {
		fixture := `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"COUNTYNAME":"X"},"geometry":{"type":"Point","coordinates":[121.5,25.0]}}]}`
		_, err := dataset.ReadBoundaries(strings.NewReader(fixture))
		gt.Error(t, err)
	})

	t.Run("fails on polygon without rings", func(t *testing.T) {
		fixture := `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"COUNTYNAME":"X"},"geometry":{"type":"Polygon","coordinates":[]}}]}`
		_, err := dataset.ReadBoundaries(strings.NewReader(fixture))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("no rings")
	})
}

func TestDir(t *testing.T) {
	ctx := context.Background()

	writeFile := func(t *testing.T, dir, name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		gt.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("loads all sources from disk", func(t *testing.T) {
		dir := t.TempDir()
		cases := writeFile(t, dir, "cases.csv",
			"Year,City,Age_group,Patient_count\n2023,Taipei City,0-4,1000\n")
		pops := writeFile(t, dir, "population.csv",
			"Years,Age_level,Population\n2023,0-4,100000\n")
		bounds := writeFile(t, dir, "city.geojson", boundaryFixture)

		f := excelize.NewFile()
		for c, v := range []interface{}{"City", "0-4", "5-14", "15-24", "25-64", "65+"} {
			cell, err := excelize.CoordinatesToCellName(c+1, 1)
			gt.NoError(t, err)
			gt.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
		for c, v := range []interface{}{"Taipei City", 100000, 200000, 300000, 1500000, 500000} {
			cell, err := excelize.CoordinatesToCellName(c+1, 2)
			gt.NoError(t, err)
			gt.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
		cityPop := filepath.Join(dir, "city_population.xlsx")
		gt.NoError(t, f.SaveAs(cityPop))
		gt.NoError(t, f.Close())

		src := dataset.NewDir(cases, pops, cityPop, bounds)

		records, err := src.Cases(ctx)
		gt.NoError(t, err)
		gt.Equal(t, len(records), 1)

		yearPops, err := src.YearPopulations(ctx)
		gt.NoError(t, err)
		gt.Equal(t, yearPops[0].Population, 100000)

		cityPops, err := src.CityPopulations(ctx)
		gt.NoError(t, err)
		gt.Equal(t, cityPops[0].Total(), 2600000)

		boundaries, err := src.Boundaries(ctx)
		gt.NoError(t, err)
		gt.Equal(t, len(boundaries), 2)
	})

	t.Run("missing file reports source not found", func(t *testing.T) {
		src := dataset.NewDir("/no/such/cases.csv", "x", "y", "z")
		_, err := src.Cases(ctx)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("source not found")
	})
}

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("sorts city tables and returns copies", func(t *testing.T) {
		src := dataset.NewMemory(
			[]model.CaseRecord{{Year: 2023, City: "B City", Age: types.Age0to4, Count: 5}},
			nil,
			[]model.CityPopulation{
				{City: "B City", ByAge: [types.NumAgeGroups]int{1, 1, 1, 1, 1}},
				{City: "A City", ByAge: [types.NumAgeGroups]int{1, 1, 1, 1, 1}},
			},
			nil,
		)

		pops, err := src.CityPopulations(ctx)
		gt.NoError(t, err)
		gt.Equal(t, pops[0].City, types.CityName("A City"))

		pops[0].City = "Mutated"
		again, err := src.CityPopulations(ctx)
		gt.NoError(t, err)
		gt.Equal(t, again[0].City, types.CityName("A City"))
	})
}
