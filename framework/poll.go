package framework

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultPollTimeout  = 10 * time.Second
	defaultPollInterval = 200 * time.Millisecond
	defaultPollMaxDelay = 2 * time.Second
)

// ErrPollTimeout is returned by Poll, wrapped together with the last check error, when the
// condition was not met before the deadline.
var ErrPollTimeout = errors.New("condition not met before deadline")

// PollOptions controls the retry schedule used by Poll. Zero values select the defaults.
type PollOptions struct {
	Timeout         time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Timeout <= 0 {
		o.Timeout = defaultPollTimeout
	}
	if o.InitialInterval <= 0 {
		o.InitialInterval = defaultPollInterval
	}
	if o.MaxInterval <= 0 {
		o.MaxInterval = defaultPollMaxDelay
	}
	if o.MaxInterval < o.InitialInterval {
		o.MaxInterval = o.InitialInterval
	}
	return o
}

// Permanent wraps an error so that Poll stops retrying and returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Poll calls check until it returns nil, with exponentially increasing delays between
// attempts. It gives up when the timeout elapses, when ctx is canceled, or when check
// returns an error wrapped with Permanent.
//
// On timeout the returned error wraps both ErrPollTimeout and the last error from check.
func Poll(ctx context.Context, opts PollOptions, check func() error) error {
	opts = opts.withDefaults()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.InitialInterval
	b.MaxInterval = opts.MaxInterval
	b.MaxElapsedTime = opts.Timeout
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	b.Reset()

	var lastErr error
	err := backoff.Retry(func() error {
		lastErr = check()
		return lastErr
	}, backoff.WithContext(b, ctx))
	if err == nil {
		return nil
	}
	var permanent *backoff.PermanentError
	if errors.As(lastErr, &permanent) {
		return permanent.Err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return errors.Join(ErrPollTimeout, lastErr)
}
