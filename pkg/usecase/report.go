package usecase

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/interfaces"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/service/rate"
)

// Report wires the whole pipeline: load sources, compute rate tables, render
// the plots, compose the report artifacts.
type Report struct {
	source   interfaces.Source
	renderer interfaces.Renderer
	writer   interfaces.ReportWriter
	year     types.Year
}

// NewReport creates the report use case. year selects the reference year of
// the city-level tables.
func NewReport(source interfaces.Source, renderer interfaces.Renderer, writer interfaces.ReportWriter, year types.Year) *Report {
	return &Report{
		source:   source,
		renderer: renderer,
		writer:   writer,
		year:     year,
	}
}

// Generate runs the pipeline and writes every artifact into dir. It returns
// the written paths, plots first.
func (u *Report) Generate(ctx context.Context, dir string) ([]string, error) {
	reportID := types.NewReportID()
	logger := ctxlog.From(ctx).With("report_id", reportID)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("loading sources")
	cases, err := u.source.Cases(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load case table")
	}
	yearPops, err := u.source.YearPopulations(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load population table")
	}
	cityPops, err := u.source.CityPopulations(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load city population sheet")
	}
	boundaries, err := u.source.Boundaries(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load boundary dataset")
	}
	logger.Info("sources loaded",
		"cases", len(cases),
		"year_populations", len(yearPops),
		"city_populations", len(cityPops),
		"boundaries", len(boundaries))

	set, err := rate.Build(ctx, cases, yearPops, cityPops, boundaries, u.year)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compute rate tables")
	}
	logger.Info("rate tables computed",
		"national_rows", len(set.National),
		"city_rows", len(set.City),
		"cities", len(set.Overall),
		"regions", len(set.Regions))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create output directory", goerr.V("dir", dir))
	}

	images, err := u.renderer.Render(ctx, set, dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to render plots")
	}
	logger.Info("plots rendered", "count", len(images))

	reports, err := u.writer.Write(ctx, set, images, dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compose report")
	}

	artifacts := make([]string, 0, len(images)+len(reports))
	artifacts = append(artifacts, images...)
	artifacts = append(artifacts, reports...)
	logger.Info("report generated", "dir", dir, "artifacts", len(artifacts))
	return artifacts, nil
}
