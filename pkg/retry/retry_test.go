package retry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"instascraper/pkg/config"
	errs "instascraper/pkg/errors"
	"instascraper/pkg/logger"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0, // No jitter for predictable testing
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{0, 0, "No attempt"},
		{1, 100 * time.Millisecond, "First attempt"},
		{2, 200 * time.Millisecond, "Second attempt"},
		{3, 400 * time.Millisecond, "Third attempt"},
		{4, 800 * time.Millisecond, "Fourth attempt"},
		{5, 1 * time.Second, "Fifth attempt (capped at max)"},
		{6, 1 * time.Second, "Sixth attempt (still capped)"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			if delay := backoff.NextDelay(test.attempt); delay != test.expected {
				t.Errorf("Expected delay %v, got %v", test.expected, delay)
			}
		})
	}
}

func TestExponentialBackoffWithJitter(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	delays := make(map[time.Duration]bool)
	for i := 0; i < 10; i++ {
		delay := backoff.NextDelay(2)
		if delay < 140*time.Millisecond || delay > 260*time.Millisecond {
			t.Errorf("Delay %v outside jitter bounds", delay)
		}
		delays[delay] = true
	}

	if len(delays) < 2 {
		t.Error("Expected multiple different delays with jitter, but got consistent delays")
	}
}

func fastConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Logger:      logger.NewTestLogger(),
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	if err := Do(context.Background(), op, fastConfig(5)); err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	persistent := errors.New("persistent error")
	op := func(ctx context.Context) error {
		attempts++
		return persistent
	}

	var retries []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		retries = append(retries, attempt)
	}

	err := Do(context.Background(), op, cfg)
	if !errors.Is(err, persistent) {
		t.Errorf("Expected wrapped persistent error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	// no sleep after the final attempt
	if len(retries) != 2 {
		t.Errorf("Expected 2 retries, got %v", retries)
	}
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	authError := errs.AuthenticationFailed("fail", "bad password")

	op := func(ctx context.Context) error {
		attempts++
		return authError
	}

	cfg := fastConfig(5)
	cfg.RetryIf = DefaultRetryIf

	err := Do(context.Background(), op, cfg)
	if err != authError {
		t.Errorf("Expected auth error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retry for auth error), got %d", attempts)
	}
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	op := func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}

	cfg := fastConfig(5)
	cfg.Backoff = &ConstantBackoff{Delay: 100 * time.Millisecond}

	err := Do(ctx, op, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancellation error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts before cancellation, got %d", attempts)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transport", errs.Transport(io.ErrUnexpectedEOF), true},
		{"rate limited", errs.RequestFailed(http.StatusTooManyRequests), true},
		{"server error", errs.RequestFailed(http.StatusServiceUnavailable), true},
		{"not found", errs.RequestFailed(http.StatusNotFound), false},
		{"unauthenticated", errs.Unauthenticated(), false},
		{"decode", errs.Decode("posts", io.EOF), false},
		{"canceled transport", errs.Transport(context.Canceled), false},
		{"deadline", context.DeadlineExceeded, false},
		{"unknown", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.want {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorTypeBackoff(t *testing.T) {
	def := &ConstantBackoff{Delay: time.Millisecond}
	etb := NewErrorTypeBackoff(def)

	tests := []struct {
		name     string
		err      error
		wantBase time.Duration
	}{
		{"transport", errs.Transport(io.EOF), 1 * time.Second},
		{"rate limit", errs.RequestFailed(http.StatusTooManyRequests), 30 * time.Second},
		{"server error", errs.RequestFailed(http.StatusBadGateway), 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eb, ok := etb.For(tt.err).(*ExponentialBackoff)
			if !ok {
				t.Fatalf("Expected ExponentialBackoff, got %T", etb.For(tt.err))
			}
			if eb.BaseDelay != tt.wantBase {
				t.Errorf("Expected base delay %v, got %v", tt.wantBase, eb.BaseDelay)
			}
		})
	}

	if etb.For(errors.New("other")) != BackoffStrategy(def) {
		t.Error("Expected default backoff for foreign errors")
	}
	if d := etb.NextDelay(3); d != time.Millisecond {
		t.Errorf("Expected default delay, got %v", d)
	}
}

func TestFromConfig(t *testing.T) {
	log := logger.NewTestLogger()

	disabled := FromConfig(config.RetryConfig{Enabled: false, MaxAttempts: 5}, log)
	if disabled.MaxAttempts != 1 {
		t.Errorf("Expected a single attempt when disabled, got %d", disabled.MaxAttempts)
	}

	enabled := FromConfig(config.RetryConfig{
		Enabled:     true,
		MaxAttempts: 4,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
		Multiplier:  3,
	}, log)
	if enabled.MaxAttempts != 4 {
		t.Errorf("Expected 4 attempts, got %d", enabled.MaxAttempts)
	}
	etb, ok := enabled.Backoff.(*ErrorTypeBackoff)
	if !ok {
		t.Fatalf("Expected ErrorTypeBackoff, got %T", enabled.Backoff)
	}
	eb := etb.DefaultBackoff.(*ExponentialBackoff)
	if eb.BaseDelay != 2*time.Second || eb.MaxDelay != 10*time.Second || eb.Multiplier != 3 {
		t.Errorf("Unexpected default backoff %+v", eb)
	}
}

func TestRetryDisabledReturnsErrorUnwrapped(t *testing.T) {
	log := logger.NewTestLogger()
	cfg := FromConfig(config.RetryConfig{Enabled: false}, log)
	unavailable := errs.RequestFailed(http.StatusServiceUnavailable)

	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return unavailable
	}, cfg)

	if err != unavailable {
		t.Errorf("Expected the operation error unchanged, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
	if msgs := log.GetMessagesByLevel("ERROR"); len(msgs) != 0 {
		t.Errorf("Expected no error logs, got %v", msgs)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("temporary error")
		}
		return "success", nil
	}

	result, err := DoWithResult(context.Background(), op, fastConfig(3))
	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got '%s'", result)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancellation, got %v", err)
	}
	if err := Wait(context.Background(), 0); err != nil {
		t.Errorf("Expected immediate return, got %v", err)
	}
}
