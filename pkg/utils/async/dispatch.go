package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
)

// Dispatch runs a handler in a new goroutine, detached from the caller's
// context lifetime. The handler gets a background context that keeps the
// caller's logger, so a notification outlives the HTTP request that
// triggered it.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger := logging.From(bgCtx)
				logger.Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logger := logging.From(bgCtx)
			logger.Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
