package interfaces

import (
	"context"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
)

// Renderer writes the plot files for one rate set into a directory and
// returns the paths of the written images in rendering order.
type Renderer interface {
	Render(ctx context.Context, rates *model.RateSet, dir string) ([]string, error)
}

// ReportWriter composes the report artifacts (workbook and narrative)
// from a rate set and the rendered image paths, and returns the paths of
// the written files.
type ReportWriter interface {
	Write(ctx context.Context, rates *model.RateSet, images []string, dir string) ([]string, error)
}
