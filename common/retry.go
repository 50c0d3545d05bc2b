package common

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	defaultRetryCount    = 10
	defaultRetryWaitTime = time.Second * 2
)

var (
	ErrRetryTimeout  = errors.New("timeout")
	ErrRetryTryAgain = errors.New("retry try again")
)

// RetryableError is implemented by errors which know whether the failed operation may succeed when repeated
type RetryableError interface {
	error
	IsRetryable() bool
}

type RetryConfig struct {
	retryCount       int
	retryWaitTime    time.Duration
	backoffFactor    float64
	maxRetryWaitTime time.Duration
	isRetryableError func(err error) bool
	onRetry          func(attempt int, err error)
	logger           hclog.Logger
}

type RetryConfigOption func(c *RetryConfig)

// WithRetryCount sets the maximal number of attempts
func WithRetryCount(retryCount int) RetryConfigOption {
	return func(c *RetryConfig) {
		c.retryCount = retryCount
	}
}

// WithRetryWaitTime sets the wait time before the second attempt
func WithRetryWaitTime(retryWaitTime time.Duration) RetryConfigOption {
	return func(c *RetryConfig) {
		c.retryWaitTime = retryWaitTime
	}
}

// WithBackoff multiplies the wait time by factor after every failed attempt, up to maxWaitTime (zero means no cap)
func WithBackoff(factor float64, maxWaitTime time.Duration) RetryConfigOption {
	return func(c *RetryConfig) {
		c.backoffFactor = factor
		c.maxRetryWaitTime = maxWaitTime
	}
}

func WithIsRetryableError(fn func(err error) bool) RetryConfigOption {
	return func(c *RetryConfig) {
		c.isRetryableError = fn
	}
}

// WithOnRetry registers a callback invoked after every failed attempt which is going to be repeated
func WithOnRetry(fn func(attempt int, err error)) RetryConfigOption {
	return func(c *RetryConfig) {
		c.onRetry = fn
	}
}

func WithLogger(logger hclog.Logger) RetryConfigOption {
	return func(c *RetryConfig) {
		c.logger = logger
	}
}

// ExecuteWithRetry calls handler until it succeeds, fails with a non retryable error,
// ctx is done or the retry count is exhausted (ErrRetryTimeout).
func ExecuteWithRetry[T any](
	ctx context.Context, handler func(context.Context) (T, error), options ...RetryConfigOption,
) (result T, err error) {
	config := RetryConfig{
		retryCount:       defaultRetryCount,
		retryWaitTime:    defaultRetryWaitTime,
		backoffFactor:    1,
		isRetryableError: IsRetryableError,
		logger:           hclog.NewNullLogger(),
	}

	for _, opt := range options {
		opt(&config)
	}

	waitTime := config.retryWaitTime

	for attempt := 1; attempt <= config.retryCount; attempt++ {
		result, err = handler(ctx)
		if err == nil {
			return result, nil
		}

		if !config.isRetryableError(err) {
			return result, err
		}

		if attempt == config.retryCount {
			break
		}

		config.logger.Debug("Attempt failed, retrying", "attempt", attempt, "wait", waitTime, "err", err)

		if config.onRetry != nil {
			config.onRetry(attempt, err)
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(waitTime):
		}

		waitTime = nextWaitTime(waitTime, config.backoffFactor, config.maxRetryWaitTime)
	}

	config.logger.Info("Retry count exhausted", "count", config.retryCount, "err", err)

	return result, errors.Join(ErrRetryTimeout, err)
}

// IsContextDoneErr returns true if the error is due to the context being cancelled or expired
func IsContextDoneErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsRetryableError is the default retry policy: ErrRetryTryAgain, RetryableError reporting true and network errors
func IsRetryableError(err error) bool {
	if IsContextDoneErr(err) {
		return false
	}

	if errors.Is(err, ErrRetryTryAgain) {
		return true
	}

	var retryableErr RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.IsRetryable()
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}

func nextWaitTime(current time.Duration, factor float64, limit time.Duration) time.Duration {
	if factor <= 1 {
		return current
	}

	next := time.Duration(float64(current) * factor)
	if limit > 0 && next > limit {
		return limit
	}

	return next
}
