package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// EventType Provider 事件类型
type EventType string

const (
	// EventAccountsChanged 授权账户列表变化
	EventAccountsChanged EventType = "accountsChanged"
	// EventChainChanged 链切换
	EventChainChanged EventType = "chainChanged"
	// EventConnect Provider 建立连接
	EventConnect EventType = "connect"
	// EventDisconnect Provider 断开连接
	EventDisconnect EventType = "disconnect"
)

// Event Provider 推送的事件
type Event struct {
	Type EventType

	// Accounts accountsChanged 事件携带的新账户列表
	Accounts []common.Address

	// ChainID chainChanged / connect 事件携带的链 ID
	ChainID uint64
}

// Unsubscribe 取消订阅句柄
type Unsubscribe func()

// Provider 签名 Provider 抽象（EIP-1193 风格）
//
// 浏览器注入的 window.ethereum 在 Go 侧的对应物。实现可以是
// 本地私钥签名器（LocalProvider）或连接到钱包桥的 WebSocket
// 客户端（BridgeProvider）。所有调用都可能因用户拒绝或
// Provider 不可用而失败。
type Provider interface {
	// RequestAccounts 请求账户授权（可能触发用户确认）
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// Accounts 返回当前已授权的账户（不触发确认，未授权时返回空）
	Accounts(ctx context.Context) ([]common.Address, error)

	// ChainID 返回 Provider 当前所在链
	ChainID(ctx context.Context) (uint64, error)

	// SignTx 用指定账户签名交易（可能触发用户确认）
	SignTx(ctx context.Context, account common.Address, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error)

	// Subscribe 订阅 Provider 事件；返回取消订阅句柄
	//
	// 事件通过回调派发；回调中不得再调用 Provider 方法（避免死锁）。
	Subscribe(cb func(Event)) Unsubscribe

	// Close 释放 Provider 资源
	Close() error
}

// Signer 提交交易的签名能力，绑定到一个具体账户
//
// 由 WalletSession 在连接成功后派发给各 Gateway；Gateway 从不
// 直接接触 Provider。
type Signer interface {
	// Address 签名账户地址
	Address() common.Address

	// SignTx 签名交易
	SignTx(ctx context.Context, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error)
}

// providerSigner 将 Provider 的一个账户包装为 Signer
type providerSigner struct {
	provider Provider
	account  common.Address
}

func (s *providerSigner) Address() common.Address {
	return s.account
}

func (s *providerSigner) SignTx(ctx context.Context, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	return s.provider.SignTx(ctx, s.account, tx, chainID)
}
