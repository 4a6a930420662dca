package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Relay is a long-running subscription that returns on disconnect.
type Relay interface {
	Run(ctx context.Context) error
}

const (
	minRelayBackoff = 500 * time.Millisecond
	maxRelayBackoff = 30 * time.Second
)

// RunEventRelay keeps relay running until ctx is cancelled, reconnecting with
// exponential backoff. A lost connection only delays cross-instance delivery,
// so it never stops the server.
func RunEventRelay(ctx context.Context, relay Relay, logger *zap.Logger) error {
	if relay == nil {
		return nil
	}
	backoff := minRelayBackoff
	for {
		started := time.Now()
		err := relay.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if time.Since(started) > maxRelayBackoff {
			backoff = minRelayBackoff
		}
		logger.Warn("event relay stopped, reconnecting", zap.Duration("backoff", backoff), zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		backoff *= 2
		if backoff > maxRelayBackoff {
			backoff = maxRelayBackoff
		}
	}
}
