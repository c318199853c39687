package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Purger deletes expired entries and reports how many were removed.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// Start periodically purges expired entries. It blocks until the context is
// cancelled. A non-positive interval returns immediately.
func Start(ctx context.Context, p Purger, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				logger.Debug().Err(err).Msg("storage sweep failed")
				continue
			}
			if n > 0 {
				logger.Debug().Int("purged", n).Msg("storage sweep")
			}
		}
	}
}
