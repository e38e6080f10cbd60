package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
)

// Output holds the artifact directory and the reference year of the
// city-level tables.
type Output struct {
	Dir  string
	Year int
}

// Flags returns CLI flags for Output configuration
func (o *Output) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Directory the artifacts are written into",
			Category:    "Output",
			Value:       "report",
			Sources:     cli.EnvVars("ILIREPORT_OUTPUT"),
			Destination: &o.Dir,
		},
		&cli.IntFlag{
			Name:        "year",
			Usage:       "Reference year for the city-level tables",
			Category:    "Output",
			Value:       2023,
			Sources:     cli.EnvVars("ILIREPORT_YEAR"),
			Destination: &o.Year,
		},
	}
}

// ReferenceYear returns the validated reference year
func (o *Output) ReferenceYear() types.Year {
	return types.Year(o.Year)
}

// Validate validates the output configuration
func (o *Output) Validate() error {
	if o.Dir == "" {
		return goerr.New("output directory is required")
	}
	if err := o.ReferenceYear().Validate(); err != nil {
		return goerr.Wrap(err, "invalid reference year")
	}
	return nil
}

// LogValue returns structured log value
func (o Output) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dir", o.Dir),
		slog.Int("year", o.Year),
	)
}
