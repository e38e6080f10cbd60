package report

import (
	"context"
	"path/filepath"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/interfaces"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
)

// File names of the composed report artifacts.
const (
	WorkbookFile = "ili_report.xlsx"
	MarkdownFile = "ili_report.md"
)

// Writer composes the report artifacts from a rate set: the workbook with
// the exact rate tables and the Markdown narrative embedding the plots.
type Writer struct {
	clock func() time.Time
}

type WriterOption func(*Writer)

// WithClock replaces the timestamp source of the Markdown header.
func WithClock(clock func() time.Time) WriterOption {
	return func(w *Writer) {
		w.clock = clock
	}
}

func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{clock: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

var _ interfaces.ReportWriter = (*Writer)(nil)

// Write renders both artifacts into dir and returns the written paths.
// The images are embedded in the order given.
func (w *Writer) Write(ctx context.Context, set *model.RateSet, images []string, dir string) ([]string, error) {
	logger := ctxlog.From(ctx)

	workbookPath := filepath.Join(dir, WorkbookFile)
	logger.Debug("writing workbook", "path", workbookPath)
	if err := writeWorkbook(set, workbookPath); err != nil {
		return nil, goerr.Wrap(err, "failed to write workbook", goerr.V("path", workbookPath))
	}

	markdownPath := filepath.Join(dir, MarkdownFile)
	logger.Debug("writing narrative", "path", markdownPath)
	if err := writeMarkdown(set, images, markdownPath, w.clock()); err != nil {
		return nil, goerr.Wrap(err, "failed to write narrative", goerr.V("path", markdownPath))
	}

	return []string{workbookPath, markdownPath}, nil
}
