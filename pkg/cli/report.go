package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/cli/config"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/service/render"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/service/report"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/usecase"
)

func cmdReport() *cli.Command {
	var (
		sourcesCfg config.Sources
		outputCfg  config.Output
	)

	return &cli.Command{
		Name:  "report",
		Usage: "Generate the incidence report from the configured sources",
		Flags: append(sourcesCfg.Flags(), outputCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if err := sourcesCfg.Validate(); err != nil {
				return err
			}
			if err := outputCfg.Validate(); err != nil {
				return err
			}

			logger.Info("Generating report",
				slog.Any("sources", sourcesCfg),
				slog.Any("output", outputCfg),
			)

			uc := usecase.NewReport(
				sourcesCfg.Configure(),
				render.New(),
				report.NewWriter(),
				outputCfg.ReferenceYear(),
			)

			artifacts, err := uc.Generate(ctx, outputCfg.Dir)
			if err != nil {
				return err
			}

			logger.Info("Report complete", "artifacts", artifacts)
			return nil
		},
	}
}
