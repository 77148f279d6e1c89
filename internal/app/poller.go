package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/khidmat-portal/khidmat/internal/access"
	"github.com/khidmat-portal/khidmat/internal/listing"
)

const (
	defaultSessionInterval = 5 * time.Minute
	sessionRetryBase       = 5 * time.Second
	sessionTimeout         = 15 * time.Second
)

// StartSessionPoller re-resolves the capability set in the background so a
// role change on the server reaches the gate without a restart. Failures
// keep the last good capabilities and are retried sooner, backing off
// exponentially up to the regular interval. It returns immediately.
func StartSessionPoller(ctx context.Context, session *access.Provider, api access.MeFetcher, token string, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = defaultSessionInterval
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			_ = refreshSession(ctx, session, api, token, logger)
			timer.Reset(nextSessionDelay(session.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

func refreshSession(ctx context.Context, session *access.Provider, api access.MeFetcher, token string, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, sessionTimeout)
	defer cancel()

	cs, source, err := access.Resolve(ctx, api, token)
	session.Update(cs, source, err)
	if err != nil {
		logger.Warn().Err(err).Int("failures", session.Snapshot().ConsecutiveFailures).Msg("session refresh failed")
		return err
	}
	logger.Debug().
		Str("user", cs.User).
		Str("role", cs.Role).
		Bool("super_admin", cs.IsSuperAdmin).
		Str("source", string(source)).
		Int("permissions", len(cs.Permissions())).
		Msg("session refreshed")
	return nil
}

// nextSessionDelay is the wait before the next session refresh.
func nextSessionDelay(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	return min(listing.Backoff(failures, sessionRetryBase), interval)
}
