// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errFailed = errors.New("intentionally failing")

func TestDo(t *testing.T) {
	t.Run("successful operation runs exactly once", func(t *testing.T) {
		calls := 0
		result, err := Do(t.Context(), DefaultPolicy(), func(context.Context) (int, error) {
			calls++
			return 42, nil
		})
		if err != nil {
			t.Fatalf("expected operation to succeed, got: %s", err)
		}
		if result != 42 {
			t.Errorf("expected result to be 42, got %d", result)
		}
		if calls != 1 {
			t.Errorf("expected a single invocation, got %d", calls)
		}
	})
	t.Run("operation succeeds after failed attempts", func(t *testing.T) {
		calls := 0
		result, err := Do(t.Context(), Policy{MaxRetries: 2}, func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errFailed
			}
			return "ok", nil
		})
		if err != nil {
			t.Fatalf("expected operation to succeed eventually, got: %s", err)
		}
		if result != "ok" {
			t.Errorf("expected result to be 'ok', got %q", result)
		}
		if calls != 3 {
			t.Errorf("expected 3 invocations, got %d", calls)
		}
	})
	t.Run("exhausted policy invokes operation MaxRetries+1 times", func(t *testing.T) {
		calls := 0
		_, err := Do(t.Context(), Policy{MaxRetries: 2}, func(context.Context) (int, error) {
			calls++
			return 0, errFailed
		})
		if !errors.Is(err, errFailed) {
			t.Fatalf("expected last attempt error, got: %s", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 invocations, got %d", calls)
		}
	})
	t.Run("error of the last attempt is returned", func(t *testing.T) {
		calls := 0
		lastErr := errors.New("attempt 2 failed")
		_, err := Do(t.Context(), Policy{MaxRetries: 1}, func(context.Context) (int, error) {
			calls++
			if calls == 1 {
				return 0, errors.New("attempt 1 failed")
			}
			return 0, lastErr
		})
		if !errors.Is(err, lastErr) {
			t.Errorf("expected error of the last attempt, got: %s", err)
		}
	})
	t.Run("negative MaxRetries behaves like zero", func(t *testing.T) {
		calls := 0
		_, err := Do(t.Context(), Policy{MaxRetries: -5}, func(context.Context) (int, error) {
			calls++
			return 0, errFailed
		})
		if !errors.Is(err, errFailed) {
			t.Fatalf("expected operation to fail, got: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected a single invocation, got %d", calls)
		}
	})
	t.Run("permanent error aborts without further attempts", func(t *testing.T) {
		calls := 0
		_, err := Do(t.Context(), Policy{MaxRetries: 5}, func(context.Context) (int, error) {
			calls++
			return 0, Permanent(errFailed)
		})
		if !errors.Is(err, errFailed) {
			t.Fatalf("expected the wrapped error, got: %s", err)
		}
		if calls != 1 {
			t.Errorf("expected a single invocation, got %d", calls)
		}
	})
	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		calls := 0
		_, err := Do(ctx, Policy{MaxRetries: 10}, func(context.Context) (int, error) {
			calls++
			cancel()
			return 0, errFailed
		})
		if err == nil {
			t.Fatal("expected an error")
		}
		if calls != 1 {
			t.Errorf("expected a single invocation, got %d", calls)
		}
	})
	t.Run("already cancelled context returns immediately", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		calls := 0
		_, err := Do(ctx, DefaultPolicy(), func(context.Context) (int, error) {
			calls++
			return 0, nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got: %v", err)
		}
		if calls != 0 {
			t.Errorf("expected no invocations, got %d", calls)
		}
	})
}

func TestDo_OnAttempt(t *testing.T) {
	t.Run("callback observes every failed attempt in order", func(t *testing.T) {
		var attempts []int
		policy := Policy{
			MaxRetries: 2,
			OnAttempt: func(attempt int, err error) {
				if !errors.Is(err, errFailed) {
					t.Errorf("expected callback error to be %s, got %s", errFailed, err)
				}
				attempts = append(attempts, attempt)
			},
		}
		_, err := Do(t.Context(), policy, func(context.Context) (int, error) {
			return 0, errFailed
		})
		if !errors.Is(err, errFailed) {
			t.Fatalf("expected operation to fail, got: %v", err)
		}
		if len(attempts) != 3 {
			t.Fatalf("expected 3 callback invocations, got %d", len(attempts))
		}
		for i, attempt := range attempts {
			if attempt != i+1 {
				t.Errorf("expected attempt number %d, got %d", i+1, attempt)
			}
		}
	})
	t.Run("callback is not invoked on success", func(t *testing.T) {
		invoked := false
		policy := Policy{
			MaxRetries: 2,
			OnAttempt:  func(int, error) { invoked = true },
		}
		_, err := Do(t.Context(), policy, func(context.Context) (int, error) {
			return 1, nil
		})
		if err != nil {
			t.Fatalf("expected operation to succeed, got: %s", err)
		}
		if invoked {
			t.Error("expected callback to not be invoked")
		}
	})
	t.Run("panicking callback does not stop the retry loop", func(t *testing.T) {
		calls := 0
		policy := Policy{
			MaxRetries: 1,
			OnAttempt:  func(int, error) { panic("intentionally panicking") },
		}
		_, err := Do(t.Context(), policy, func(context.Context) (int, error) {
			calls++
			return 0, errFailed
		})
		if !errors.Is(err, errFailed) {
			t.Fatalf("expected operation to fail, got: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 invocations, got %d", calls)
		}
	})
}

func TestDo_Sequential(t *testing.T) {
	t.Run("attempts are spaced by the fixed delay", func(t *testing.T) {
		start := time.Now()
		_, err := Do(t.Context(), Policy{MaxRetries: 1}, func(context.Context) (int, error) {
			return 0, errFailed
		})
		if !errors.Is(err, errFailed) {
			t.Fatalf("expected operation to fail, got: %v", err)
		}
		if elapsed := time.Since(start); elapsed < attemptDelay {
			t.Errorf("expected at least %s between attempts, got %s", attemptDelay, elapsed)
		}
	})
}
