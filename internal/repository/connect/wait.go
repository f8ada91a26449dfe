// Package connect waits for backing services to answer at startup.
package connect

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
)

// Wait calls ping with exponential backoff until it succeeds, ctx is done or
// maxElapsed passes. The last ping error is returned on failure.
func Wait(ctx context.Context, log hclog.Logger, name string, maxElapsed time.Duration, ping func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxElapsed

	op := func() error {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return ping(pctx)
	}
	notify := func(err error, next time.Duration) {
		log.Warn("backing service not ready", "service", name, "error", err, "retry_in", next)
	}
	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify)
}
