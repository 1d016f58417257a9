// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package retry wraps fallible operations with bounded, strictly sequential
// retries. Callers can observe failed attempts through the policy callback
// to surface "retrying..." feedback.
package retry

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultMaxRetries is the number of retries after the initial attempt.
	DefaultMaxRetries = 2
	// attemptDelay is the fixed pause between attempts.
	attemptDelay = 500 * time.Millisecond
)

// Policy controls how Do behaves between attempts. OnAttempt is invoked
// after every failed attempt with the 1-based attempt number and the error
// it produced; a panicking callback is recovered and never stops the loop.
type Policy struct {
	MaxRetries int
	OnAttempt  func(attempt int, err error)
}

// DefaultPolicy returns a Policy with DefaultMaxRetries and no callback.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries}
}

// Permanent marks an error as not worth retrying. Do aborts immediately
// when the operation returns an error wrapping one created by Permanent.
func Permanent(err error) error {
	return &permanentError{err: err}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string {
	return p.err.Error()
}

func (p *permanentError) Unwrap() error {
	return p.err
}

// Do runs op until it succeeds, the policy is exhausted or the context is
// done. With MaxRetries = N the operation is invoked at most N+1 times.
// The error of the last attempt is returned once all attempts failed.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxRetries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		notifyAttempt(policy, attempt, err)

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		if attempt <= policy.MaxRetries {
			if !sleepOrDone(ctx, attemptDelay) {
				return zero, lastErr
			}
		}
	}

	return zero, lastErr
}

// notifyAttempt invokes the OnAttempt callback and recovers from panics, so
// a misbehaving caller cannot break the retry loop.
func notifyAttempt(policy Policy, attempt int, err error) {
	if policy.OnAttempt == nil {
		return
	}
	defer func() { _ = recover() }()
	policy.OnAttempt(attempt, err)
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
