package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "连接被拒绝", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "连接重置", err: errors.New("read: connection reset by peer"), want: true},
		{name: "DNS 失败", err: errors.New("lookup rpc.example: no such host"), want: true},
		{name: "超时", err: errors.New("context deadline exceeded (timeout)"), want: true},
		{name: "节点 503", err: errors.New("HTTP 503 Service Unavailable"), want: true},
		{name: "限流 429", err: errors.New("429 Too Many Requests"), want: true},
		{name: "合约 revert", err: errors.New("execution reverted"), want: false},
		{name: "用户拒绝", err: errors.New("user rejected the request"), want: false},
		{name: "余额不足", err: errors.New("insufficient funds for gas * price + value"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.want {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	config := &RetryConfig{
		MaxRetries:        3,
		InitialDelay:      1,
		MaxDelay:          5,
		BackoffMultiplier: 2.0,
		Retryable:         func(error) bool { return true },
	}

	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, config)

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	calls := 0
	config := DefaultRetryConfig()
	config.InitialDelay = 1
	config.MaxDelay = 5

	businessErr := errors.New("execution reverted")
	err := Do(context.Background(), func() error {
		calls++
		return businessErr
	}, config)

	if !errors.Is(err, businessErr) {
		t.Fatalf("Do() error = %v, want %v", err, businessErr)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry for business errors)", calls)
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	var retryLog []int
	config := &RetryConfig{
		MaxRetries:        2,
		InitialDelay:      1,
		MaxDelay:          5,
		BackoffMultiplier: 2.0,
		Retryable:         func(error) bool { return true },
		OnRetry: func(attempt int, err error) {
			retryLog = append(retryLog, attempt)
		},
	}

	err := Do(context.Background(), func() error {
		calls++
		return fmt.Errorf("node unavailable (call %d)", calls)
	}, config)

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
	if len(retryLog) != 2 || retryLog[0] != 1 || retryLog[1] != 2 {
		t.Errorf("retry log = %v, want [1 2]", retryLog)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := &RetryConfig{
		MaxRetries:        5,
		InitialDelay:      1000,
		MaxDelay:          1000,
		BackoffMultiplier: 1.0,
		Retryable:         func(error) bool { return true },
	}

	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, func() error {
			return errors.New("connection refused")
		}, config)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Do() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do() did not return after context cancellation")
	}
}

func TestDo_NilConfig(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return errors.New("boom")
	}, nil)

	if err == nil || calls != 1 {
		t.Errorf("nil config should call fn exactly once without retry: err=%v calls=%d", err, calls)
	}
}

func TestBackoffDelay(t *testing.T) {
	config := &RetryConfig{InitialDelay: 100, MaxDelay: 350, BackoffMultiplier: 2.0}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 100 * time.Millisecond},
		{attempt: 1, want: 200 * time.Millisecond},
		{attempt: 2, want: 350 * time.Millisecond}, // 封顶
		{attempt: 5, want: 350 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := backoffDelay(tt.attempt, config); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
