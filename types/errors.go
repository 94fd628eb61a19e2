package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrorKind 错误分类
//
// Resource Hub 的三个外部协作方（钱包、账本、存储网关）各自独立失败，
// 用户侧需要区分根因才能采取正确的补救措施，因此错误按来源分类，
// 不使用笼统的失败字符串。
type ErrorKind string

const (
	// 钱包侧错误
	ErrWalletUnavailable ErrorKind = "WALLET_UNAVAILABLE" // 未检测到签名 Provider
	ErrUserRejected      ErrorKind = "USER_REJECTED"      // 用户拒绝了请求/交易
	ErrProviderError     ErrorKind = "PROVIDER_ERROR"     // Provider RPC 调用失败

	// 账本侧错误
	ErrInsufficientFunds       ErrorKind = "INSUFFICIENT_FUNDS"        // 余额不足
	ErrLedgerUnreachable       ErrorKind = "LEDGER_UNREACHABLE"        // 节点无法访问
	ErrContractNotDeployed     ErrorKind = "CONTRACT_NOT_DEPLOYED"     // 配置地址上没有合约代码
	ErrContractFunctionMissing ErrorKind = "CONTRACT_FUNCTION_MISSING" // 合约缺少期望的函数

	// 存储网关侧错误
	ErrPayloadTooLarge ErrorKind = "PAYLOAD_TOO_LARGE" // 文件超过大小上限
	ErrUnsupportedType ErrorKind = "UNSUPPORTED_TYPE"  // 非 PDF 内容
	ErrGatewayError    ErrorKind = "GATEWAY_ERROR"     // 网关请求失败

	// 兜底
	ErrUnknown ErrorKind = "UNKNOWN"
)

// userMessages 每个分类对应的简短用户提示
//
// 提示必须区分"你拒绝了"/"余额不足"/"网络不可达"这三类根因，
// 因为三者的补救方式完全不同。
var userMessages = map[ErrorKind]string{
	ErrWalletUnavailable:       "No wallet provider detected. Please install or start a Web3 wallet.",
	ErrUserRejected:            "You rejected the request in your wallet.",
	ErrProviderError:           "The wallet provider returned an error. Please try again.",
	ErrInsufficientFunds:       "You don't have enough ETH to complete this transaction.",
	ErrLedgerUnreachable:       "The ledger network is unreachable. Please check your connection.",
	ErrContractNotDeployed:     "No contract is deployed at the configured address on this network.",
	ErrContractFunctionMissing: "The contract at the configured address is missing expected functions.",
	ErrPayloadTooLarge:         "The file exceeds the 10 MiB size limit.",
	ErrUnsupportedType:         "Only PDF files can be uploaded.",
	ErrGatewayError:            "Failed to upload to the storage gateway. Please try again.",
	ErrUnknown:                 "Something went wrong. Please try again.",
}

// HubError SDK 统一错误类型
//
// 携带分类、用户提示和用于排障的 TraceID；底层错误通过 Unwrap 暴露，
// 调用方可以用 errors.Is / KindOf 做分类判断。
type HubError struct {
	Kind        ErrorKind
	UserMessage string
	Detail      string
	TraceID     string
	Timestamp   string
	Cause       error
}

func (e *HubError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.UserMessage, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.UserMessage)
}

func (e *HubError) Unwrap() error {
	return e.Cause
}

// Is 支持 errors.Is(err, &HubError{Kind: ...}) 风格的分类比较
func (e *HubError) Is(target error) bool {
	t, ok := target.(*HubError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewHubError 创建带默认用户提示的 HubError
func NewHubError(kind ErrorKind, detail string, cause error) *HubError {
	msg, ok := userMessages[kind]
	if !ok {
		msg = userMessages[ErrUnknown]
	}

	return &HubError{
		Kind:        kind,
		UserMessage: msg,
		Detail:      detail,
		TraceID:     uuid.New().String(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Cause:       cause,
	}
}

// Wrap 在保留分类的前提下包装底层错误
func Wrap(kind ErrorKind, cause error) *HubError {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return NewHubError(kind, detail, cause)
}

// IsHubError 检查错误是否为 HubError
func IsHubError(err error) (*HubError, bool) {
	var hubErr *HubError
	if errors.As(err, &hubErr) {
		return hubErr, true
	}
	return nil, false
}

// KindOf 返回错误的分类；非 HubError 一律归为 ErrUnknown
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if hubErr, ok := IsHubError(err); ok {
		return hubErr.Kind
	}
	return ErrUnknown
}

// UserMessageFor 返回分类对应的用户提示（供展示层使用）
func UserMessageFor(kind ErrorKind) string {
	if msg, ok := userMessages[kind]; ok {
		return msg
	}
	return userMessages[ErrUnknown]
}
