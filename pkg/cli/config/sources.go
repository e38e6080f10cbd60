package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/interfaces"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/service/dataset"
)

// Sources holds the four input file paths, given either as flags or through
// a YAML manifest.
type Sources struct {
	ManifestPath       string
	CasesPath          string
	YearPopulationPath string
	CityPopulationPath string
	BoundariesPath     string
}

// Flags returns CLI flags for the source files
func (s *Sources) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sources",
			Usage:       "YAML manifest naming the four source files",
			Category:    "Sources",
			Sources:     cli.EnvVars("ILIREPORT_SOURCES"),
			Destination: &s.ManifestPath,
		},
		&cli.StringFlag{
			Name:        "cases",
			Usage:       "Case count table (CSV)",
			Category:    "Sources",
			Sources:     cli.EnvVars("ILIREPORT_CASES"),
			Destination: &s.CasesPath,
		},
		&cli.StringFlag{
			Name:        "year-population",
			Usage:       "Yearly population table (CSV)",
			Category:    "Sources",
			Sources:     cli.EnvVars("ILIREPORT_YEAR_POPULATION"),
			Destination: &s.YearPopulationPath,
		},
		&cli.StringFlag{
			Name:        "city-population",
			Usage:       "City population spreadsheet (XLSX)",
			Category:    "Sources",
			Sources:     cli.EnvVars("ILIREPORT_CITY_POPULATION"),
			Destination: &s.CityPopulationPath,
		},
		&cli.StringFlag{
			Name:        "boundaries",
			Usage:       "City boundary dataset (GeoJSON)",
			Category:    "Sources",
			Sources:     cli.EnvVars("ILIREPORT_BOUNDARIES"),
			Destination: &s.BoundariesPath,
		},
	}
}

type sourcesManifest struct {
	Cases          string `yaml:"cases"`
	YearPopulation string `yaml:"year_population"`
	CityPopulation string `yaml:"city_population"`
	Boundaries     string `yaml:"boundaries"`
}

// applyManifest fills unset paths from the manifest file. Explicit flags
// win over manifest entries; relative manifest entries resolve against the
// manifest's directory.
func (s *Sources) applyManifest() error {
	if s.ManifestPath == "" {
		return nil
	}

	data, err := os.ReadFile(s.ManifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return goerr.Wrap(err, "source not found", goerr.V("path", s.ManifestPath))
		}
		return goerr.Wrap(err, "failed to read source manifest", goerr.V("path", s.ManifestPath))
	}

	var manifest sourcesManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return goerr.Wrap(err, "failed to parse source manifest", goerr.V("path", s.ManifestPath))
	}

	base := filepath.Dir(s.ManifestPath)
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(base, path)
	}
	if s.CasesPath == "" {
		s.CasesPath = resolve(manifest.Cases)
	}
	if s.YearPopulationPath == "" {
		s.YearPopulationPath = resolve(manifest.YearPopulation)
	}
	if s.CityPopulationPath == "" {
		s.CityPopulationPath = resolve(manifest.CityPopulation)
	}
	if s.BoundariesPath == "" {
		s.BoundariesPath = resolve(manifest.Boundaries)
	}
	return nil
}

// Validate resolves the manifest and checks that all four sources are named
func (s *Sources) Validate() error {
	if err := s.applyManifest(); err != nil {
		return err
	}

	required := []struct {
		flag string
		path string
	}{
		{flag: "cases", path: s.CasesPath},
		{flag: "year-population", path: s.YearPopulationPath},
		{flag: "city-population", path: s.CityPopulationPath},
		{flag: "boundaries", path: s.BoundariesPath},
	}
	for _, r := range required {
		if r.path == "" {
			return goerr.New("source path is required", goerr.V("flag", r.flag))
		}
	}
	return nil
}

// Configure builds the filesystem source from the validated paths
func (s *Sources) Configure() interfaces.Source {
	return dataset.NewDir(s.CasesPath, s.YearPopulationPath, s.CityPopulationPath, s.BoundariesPath)
}

// LogValue returns structured log value
func (s Sources) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("cases", s.CasesPath),
		slog.String("year_population", s.YearPopulationPath),
		slog.String("city_population", s.CityPopulationPath),
		slog.String("boundaries", s.BoundariesPath),
		slog.String("manifest", s.ManifestPath),
	)
}
