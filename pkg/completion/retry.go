package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"syscall"
	"time"

	"ai-digest-be/pkg/llm"
)

// ErrorClass buckets backend failures for the retry table.
type ErrorClass int

const (
	ClassRejected ErrorClass = iota
	ClassRateLimited
	ClassServer
	ClassNetwork
	ClassAuth
	ClassInvalidResponse
)

func (c ErrorClass) String() string {
	switch c {
	case ClassRateLimited:
		return "rate_limited"
	case ClassServer:
		return "server"
	case ClassNetwork:
		return "network"
	case ClassAuth:
		return "auth"
	case ClassInvalidResponse:
		return "invalid_response"
	default:
		return "rejected"
	}
}

func (c ErrorClass) kind() error {
	switch c {
	case ClassRateLimited, ClassServer, ClassNetwork:
		return ErrTransient
	case ClassAuth:
		return ErrAuth
	case ClassInvalidResponse:
		return ErrInvalidResponse
	default:
		return ErrRejected
	}
}

// RetryPolicy is the single backoff table every completion goes through.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	// Delays overrides BaseDelay per class.
	Delays map[ErrorClass]time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2,
		Delays: map[ErrorClass]time.Duration{
			ClassRateLimited: 2 * time.Second,
			ClassServer:      1500 * time.Millisecond,
		},
	}
}

func (p RetryPolicy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

func (p RetryPolicy) Retryable(class ErrorClass) bool {
	return class.kind() == ErrTransient
}

// Delay is the wait before the next attempt, attempt being 1-based.
func (p RetryPolicy) Delay(class ErrorClass, attempt int) time.Duration {
	base, ok := p.Delays[class]
	if !ok {
		base = p.BaseDelay
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := time.Duration(float64(base) * math.Pow(mult, float64(attempt-1)))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Classify maps a provider error to its retry class.
func Classify(err error) ErrorClass {
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized, statusErr.StatusCode == http.StatusForbidden:
			return ClassAuth
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return ClassRateLimited
		case statusErr.StatusCode == http.StatusRequestTimeout:
			return ClassNetwork
		case statusErr.StatusCode >= 500:
			return ClassServer
		default:
			return ClassRejected
		}
	}

	if errors.Is(err, llm.ErrEmptyResponse) {
		return ClassInvalidResponse
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ClassInvalidResponse
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return ClassNetwork
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ClassNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassNetwork
	}

	return ClassRejected
}

func statusCode(err error) int {
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
