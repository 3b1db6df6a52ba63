package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/common"
)

// Policy bounds retries of transient store failures.
type Policy struct {
	Attempts  int           // total tries including the first
	BaseDelay time.Duration // wait after the first failure, doubled per retry
	MaxDelay  time.Duration // ceiling for the backoff wait
	Transient []string      // substrings marking an error retryable
}

// DefaultPolicy covers the failure modes of both store backends:
// sqlite busy/locked databases and postgres connection drops.
func DefaultPolicy() *Policy {
	return &Policy{
		Attempts:  4,
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Transient: []string{
			"database is locked",
			"connection refused",
			"connection reset",
			"connection lost",
			"broken pipe",
			"timeout",
			"deadlock",
			"lock wait timeout",
			"temporary failure",
		},
	}
}

// transient reports whether err is worth retrying. Context
// cancellation never is.
func (p *Policy) transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range p.Transient {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// delay returns the wait before the next try after failedTry failures,
// doubling from BaseDelay and capped at MaxDelay.
func (p *Policy) delay(failedTry int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < failedTry; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do runs op, retrying transient failures with doubling backoff until
// the policy's attempt budget is spent or ctx is done. Non-transient
// errors are returned as-is on the first occurrence.
func Do(ctx context.Context, p *Policy, op func() error) error {
	if p == nil {
		p = DefaultPolicy()
	}
	budget := p.Attempts
	if budget < 1 {
		budget = 1
	}
	logger := common.GetLogger().WithComponent("store-retry")

	var lastErr error
	for try := 1; try <= budget; try++ {
		err := op()
		if err == nil {
			if try > 1 {
				logger.Info("store operation recovered", "try", try, "budget", budget)
			}
			return nil
		}
		lastErr = err

		if try == budget {
			break
		}
		if !p.transient(err) {
			logger.Debug("store operation failed, not retrying", "error", err, "try", try)
			return err
		}

		wait := p.delay(try)
		logger.Warn("store operation failed, backing off",
			"error", err, "try", try, "budget", budget, "backoff", wait)
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry interrupted: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	logger.Error("store operation failed, budget spent", "error", lastErr, "tries", budget)
	return fmt.Errorf("gave up after %d tries: %w", budget, lastErr)
}

// Value runs op under the same retry rules as Do and returns its
// result from the successful try.
func Value[T any](ctx context.Context, p *Policy, op func() (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func() error {
		var err error
		out, err = op()
		return err
	})
	return out, err
}
