package apperr

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle reports an error through the context logger. goerr key-values ride
// along so failing rows and files keep their identifying keys in the log.
func Handle(ctx context.Context, err error) {
	logger := ctxlog.From(ctx)
	if goErr := goerr.Unwrap(err); goErr != nil {
		logger.Error("report error", "error", err, "values", goErr.Values())
		return
	}
	logger.Error("report error", "error", err)
}
