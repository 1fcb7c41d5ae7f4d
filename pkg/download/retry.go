package download

import (
	"context"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	maxBackoff     = 30 * time.Second
	jitterFraction = 0.2
)

// statusError is returned for non 200 responses
type statusError struct {
	Code   int
	Status string
}

func (e *statusError) Error() string {
	return "unexpected response status: " + e.Status
}

// retryable reports whether a failed attempt can succeed when repeated.
// Server errors, throttling and network errors are transient, everything else is permanent.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var status *statusError
	if errors.As(err, &status) {
		return status.Code >= http.StatusInternalServerError || status.Code == http.StatusTooManyRequests
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, errShortBody) || errors.Is(err, io.ErrUnexpectedEOF)
}

// retry calls fn until it succeeds, fails permanently or runs out of attempts.
func retry(ctx context.Context, retries int, backoff time.Duration, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt >= retries || !retryable(err) {
			return err
		}

		sleep := backoff + jitter(backoff)
		if sleep > maxBackoff {
			sleep = maxBackoff
		}

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func jitter(d time.Duration) time.Duration {
	span := float64(d) * jitterFraction
	return time.Duration((rand.Float64() - 0.5) * 2 * span)
}
