package dataset

import (
	"context"
	"sort"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/interfaces"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
)

// Memory implements Source over in-memory tables. It serves tests and
// embedded datasets; rows are copied on every call so callers cannot
// mutate the source, and the sorted-by-city contract is applied here
// regardless of input order. Boundary geometries are shared and treated
// as read-only.
type Memory struct {
	cases      []model.CaseRecord
	yearPops   []model.YearPopulation
	cityPops   []model.CityPopulation
	boundaries []model.CityBoundary
}

// NewMemory creates an in-memory Source from the given tables
func NewMemory(
	cases []model.CaseRecord,
	yearPops []model.YearPopulation,
	cityPops []model.CityPopulation,
	boundaries []model.CityBoundary,
) interfaces.Source {
	m := &Memory{
		cases:      append([]model.CaseRecord(nil), cases...),
		yearPops:   append([]model.YearPopulation(nil), yearPops...),
		cityPops:   append([]model.CityPopulation(nil), cityPops...),
		boundaries: append([]model.CityBoundary(nil), boundaries...),
	}
	sort.Slice(m.cityPops, func(i, j int) bool { return m.cityPops[i].City < m.cityPops[j].City })
	sort.Slice(m.boundaries, func(i, j int) bool { return m.boundaries[i].City < m.boundaries[j].City })
	return m
}

// Cases returns a copy of the case table
func (m *Memory) Cases(ctx context.Context) ([]model.CaseRecord, error) {
	return append([]model.CaseRecord(nil), m.cases...), nil
}

// YearPopulations returns a copy of the national population table
func (m *Memory) YearPopulations(ctx context.Context) ([]model.YearPopulation, error) {
	return append([]model.YearPopulation(nil), m.yearPops...), nil
}

// CityPopulations returns a copy of the city population table
func (m *Memory) CityPopulations(ctx context.Context) ([]model.CityPopulation, error) {
	return append([]model.CityPopulation(nil), m.cityPops...), nil
}

// Boundaries returns a copy of the boundary table
func (m *Memory) Boundaries(ctx context.Context) ([]model.CityBoundary, error) {
	return append([]model.CityBoundary(nil), m.boundaries...), nil
}
