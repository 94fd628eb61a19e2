package client

import (
	"context"
	"fmt"
	"math"
	"net"
	"strings"
	"time"
)

// RetryConfig 重试配置
type RetryConfig struct {
	// MaxRetries 最大重试次数
	MaxRetries int
	// InitialDelay 初始延迟（毫秒）
	InitialDelay int
	// MaxDelay 最大延迟（毫秒）
	MaxDelay int
	// BackoffMultiplier 退避倍数
	BackoffMultiplier float64
	// Retryable 判断错误是否可重试的函数
	Retryable func(error) bool
	// OnRetry 重试前的回调函数
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig 返回默认重试配置
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        3,
		InitialDelay:      1000,
		MaxDelay:          10000,
		BackoffMultiplier: 2.0,
		Retryable:         IsRetryableError,
	}
}

// IsRetryableError 判断错误是否可重试
//
// 只有传输层失败（连接、DNS、超时、节点 5xx）可重试；
// 合约 revert、用户拒绝等业务失败重试没有意义。
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}

	if _, ok := err.(*net.DNSError); ok {
		return true
	}

	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"timeout",
		"502",
		"503",
		"429",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}

	return false
}

// backoffDelay 计算第 attempt 次重试前的退避延迟
func backoffDelay(attempt int, config *RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiplier, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay) * time.Millisecond
}

// Do 带重试地执行 fn
//
// 不可重试的错误立即返回；重试间隔指数退避；
// ctx 取消时停止等待并返回 ctx.Err()。
func Do(ctx context.Context, fn func() error, config *RetryConfig) error {
	if config == nil {
		return fn()
	}

	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= config.MaxRetries {
			break
		}

		retryable := config.Retryable
		if retryable == nil {
			retryable = IsRetryableError
		}
		if !retryable(err) {
			return err
		}

		if config.OnRetry != nil {
			config.OnRetry(attempt+1, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffDelay(attempt, config)):
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}
