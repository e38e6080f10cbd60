package dataset

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/interfaces"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
)

// Dir loads the four input tables from files on disk
type Dir struct {
	casesPath      string
	yearPopPath    string
	cityPopPath    string
	boundariesPath string
}

// NewDir creates a Source over the given file paths
func NewDir(casesPath, yearPopPath, cityPopPath, boundariesPath string) interfaces.Source {
	return &Dir{
		casesPath:      casesPath,
		yearPopPath:    yearPopPath,
		cityPopPath:    cityPopPath,
		boundariesPath: boundariesPath,
	}
}

func openSource(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "source not found", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to open source", goerr.V("path", path))
	}
	return f, nil
}

// Cases loads the ILI visit count table
func (d *Dir) Cases(ctx context.Context) ([]model.CaseRecord, error) {
	f, err := openSource(d.casesPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadCases(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read case table file", goerr.V("path", d.casesPath))
	}
	return records, nil
}

// YearPopulations loads the national population table
func (d *Dir) YearPopulations(ctx context.Context) ([]model.YearPopulation, error) {
	f, err := openSource(d.yearPopPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadYearPopulations(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read population table file", goerr.V("path", d.yearPopPath))
	}
	return rows, nil
}

// CityPopulations loads the per-city population spreadsheet
func (d *Dir) CityPopulations(ctx context.Context) ([]model.CityPopulation, error) {
	f, err := openSource(d.cityPopPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pops, err := ReadCityPopulations(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read city population file", goerr.V("path", d.cityPopPath))
	}
	return pops, nil
}

// Boundaries loads the city boundary dataset
func (d *Dir) Boundaries(ctx context.Context) ([]model.CityBoundary, error) {
	f, err := openSource(d.boundariesPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	boundaries, err := ReadBoundaries(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read boundary file", goerr.V("path", d.boundariesPath))
	}
	return boundaries, nil
}
