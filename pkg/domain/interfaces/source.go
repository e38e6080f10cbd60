package interfaces

import (
	"context"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
)

// Source defines the interface for loading the four input tables of one
// report run. Implementations return validated, consistently typed rows;
// the city population table and the boundary set are sorted by city name.
type Source interface {
	// Cases loads the long-format ILI visit count table
	Cases(ctx context.Context) ([]model.CaseRecord, error)

	// YearPopulations loads the national population table, one row per
	// (year, age band)
	YearPopulations(ctx context.Context) ([]model.YearPopulation, error)

	// CityPopulations loads the per-city population table of the
	// reference year, sorted by city name
	CityPopulations(ctx context.Context) ([]model.CityPopulation, error)

	// Boundaries loads the city boundary polygons, sorted by city name
	Boundaries(ctx context.Context) ([]model.CityBoundary, error)
}
