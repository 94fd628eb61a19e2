package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewHubError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewHubError(ErrLedgerUnreachable, "dial tcp: connection refused", cause)

	if err.Kind != ErrLedgerUnreachable {
		t.Errorf("Kind = %s, want %s", err.Kind, ErrLedgerUnreachable)
	}
	if err.UserMessage != userMessages[ErrLedgerUnreachable] {
		t.Errorf("UserMessage = %q", err.UserMessage)
	}
	if err.TraceID == "" {
		t.Error("expected non-empty TraceID")
	}
	if err.Timestamp == "" {
		t.Error("expected non-empty Timestamp")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

// TestUserMessages_DistinguishRootCauses 用户提示必须区分拒签、余额不足和网络不可达
func TestUserMessages_DistinguishRootCauses(t *testing.T) {
	kinds := []ErrorKind{ErrUserRejected, ErrInsufficientFunds, ErrLedgerUnreachable}
	seen := make(map[string]ErrorKind)
	for _, kind := range kinds {
		msg := UserMessageFor(kind)
		if msg == "" || msg == userMessages[ErrUnknown] {
			t.Errorf("kind %s has no dedicated user message", kind)
		}
		if prev, ok := seen[msg]; ok {
			t.Errorf("kinds %s and %s share user message %q", prev, kind, msg)
		}
		seen[msg] = kind
	}
}

func TestUserMessages_AllKindsCovered(t *testing.T) {
	kinds := []ErrorKind{
		ErrWalletUnavailable, ErrUserRejected, ErrProviderError,
		ErrInsufficientFunds, ErrLedgerUnreachable,
		ErrContractNotDeployed, ErrContractFunctionMissing,
		ErrPayloadTooLarge, ErrUnsupportedType, ErrGatewayError,
		ErrUnknown,
	}
	for _, kind := range kinds {
		if _, ok := userMessages[kind]; !ok {
			t.Errorf("kind %s has no user message", kind)
		}
	}
}

func TestIsHubError(t *testing.T) {
	hubErr := NewHubError(ErrUserRejected, "user denied transaction signature", nil)
	wrapped := fmt.Errorf("purchase failed: %w", hubErr)

	got, ok := IsHubError(wrapped)
	if !ok {
		t.Fatal("expected IsHubError to find the HubError through wrapping")
	}
	if got.Kind != ErrUserRejected {
		t.Errorf("Kind = %s, want %s", got.Kind, ErrUserRejected)
	}

	if _, ok := IsHubError(errors.New("plain")); ok {
		t.Error("plain error should not be a HubError")
	}
	if _, ok := IsHubError(nil); ok {
		t.Error("nil should not be a HubError")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "HubError", err: Wrap(ErrGatewayError, errors.New("503")), want: ErrGatewayError},
		{name: "包装后的 HubError", err: fmt.Errorf("upload: %w", Wrap(ErrPayloadTooLarge, nil)), want: ErrPayloadTooLarge},
		{name: "普通错误", err: errors.New("boom"), want: ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHubError_Is(t *testing.T) {
	err := NewHubError(ErrContractNotDeployed, "no code at address", nil)

	if !errors.Is(err, &HubError{Kind: ErrContractNotDeployed}) {
		t.Error("expected Is to match on Kind")
	}
	if errors.Is(err, &HubError{Kind: ErrLedgerUnreachable}) {
		t.Error("expected Is to reject a different Kind")
	}
}
