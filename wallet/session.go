package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/auraCodesKM/resourcehub-sdk-go/client"
	"github.com/auraCodesKM/resourcehub-sdk-go/types"
)

// Session 钱包会话
//
// 持有到签名 Provider 的连接状态（WalletState），把 Provider 的
// 回调式事件重新表达为带取消句柄的显式订阅接口。状态只在
// Provider 事件或显式 Connect 时更新；控制器和展示层只读快照。
type Session struct {
	provider Provider
	cli      *client.Client
	logger   client.Logger

	mu        sync.RWMutex
	state     types.WalletState
	nextSubID int
	accSubs   map[int]func([]common.Address)
	chainSubs map[int]func(uint64)

	unsubOnce sync.Once
	unsub     Unsubscribe
}

// NewSession 创建钱包会话
//
// provider 为 nil 表示宿主环境没有注入签名 Provider；此时
// Connect 会以 WalletUnavailable 失败，但会话本身可以创建。
func NewSession(provider Provider, cli *client.Client) *Session {
	logger := client.NewNopLogger()
	if cli != nil {
		logger = cli.Logger()
	}

	s := &Session{
		provider:  provider,
		cli:       cli,
		logger:    logger,
		accSubs:   make(map[int]func([]common.Address)),
		chainSubs: make(map[int]func(uint64)),
	}
	s.state.BalanceWei = new(big.Int)

	if provider != nil {
		s.unsub = provider.Subscribe(s.handleEvent)
	}

	return s
}

// Connect 请求账户授权并建立会话
//
// 成功后更新 WalletState 并返回活跃账户。连接与数据加载由调用方
// 严格串联：必须先拿到确认的签名账户，控制器才能开始加载目录。
func (s *Session) Connect(ctx context.Context) (common.Address, error) {
	if s.provider == nil {
		return common.Address{}, types.NewHubError(types.ErrWalletUnavailable, "no signing provider injected", nil)
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, classifyProviderError(err)
	}
	if len(accounts) == 0 {
		return common.Address{}, types.NewHubError(types.ErrUserRejected, "no accounts authorized", nil)
	}

	account := accounts[0]

	s.mu.Lock()
	s.state.Connected = true
	s.state.Account = account
	s.mu.Unlock()

	// 余额查询失败不阻断连接，State 中保留旧值
	if _, err := s.RefreshBalance(ctx); err != nil {
		s.logger.Warn("Balance query failed after connect", "account", account.Hex(), "error", err)
	}

	s.logger.Info("Wallet connected", "account", account.Hex())
	return account, nil
}

// GetAccounts 返回当前已授权的账户（不触发确认）
func (s *Session) GetAccounts(ctx context.Context) ([]common.Address, error) {
	if s.provider == nil {
		return nil, nil
	}
	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		return nil, classifyProviderError(err)
	}
	return accounts, nil
}

// RefreshBalance 查询当前账户余额（最小单位）并更新 WalletState
func (s *Session) RefreshBalance(ctx context.Context) (*big.Int, error) {
	s.mu.RLock()
	connected := s.state.Connected
	account := s.state.Account
	s.mu.RUnlock()

	if !connected {
		return nil, types.NewHubError(types.ErrWalletUnavailable, "wallet not connected", nil)
	}
	if s.cli == nil {
		return nil, types.NewHubError(types.ErrProviderError, "no ledger client for balance query", nil)
	}

	balance, err := s.cli.Eth().BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, types.Wrap(types.ErrProviderError, fmt.Errorf("query balance: %w", err))
	}

	s.mu.Lock()
	s.state.BalanceWei = new(big.Int).Set(balance)
	s.mu.Unlock()

	return balance, nil
}

// State 返回钱包状态快照
func (s *Session) State() types.WalletState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state
	if s.state.BalanceWei != nil {
		snapshot.BalanceWei = new(big.Int).Set(s.state.BalanceWei)
	}
	return snapshot
}

// Account 返回当前活跃账户
func (s *Session) Account() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Account, s.state.Connected
}

// Signer 返回绑定到当前账户的签名能力
func (s *Session) Signer() (Signer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.state.Connected {
		return nil, types.NewHubError(types.ErrWalletUnavailable, "wallet not connected", nil)
	}
	return &providerSigner{provider: s.provider, account: s.state.Account}, nil
}

// OnAccountsChanged 订阅账户变化；返回取消订阅句柄
func (s *Session) OnAccountsChanged(cb func(accounts []common.Address)) Unsubscribe {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.accSubs[id] = cb

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.accSubs, id)
	}
}

// OnChainChanged 订阅链切换；返回取消订阅句柄
//
// 链切换意味着合约地址不再匹配，继续读取会静默得到错误数据，
// 因此订阅方必须整体重建宿主上下文，而不是只刷新数据。
func (s *Session) OnChainChanged(cb func(chainID uint64)) Unsubscribe {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.chainSubs[id] = cb

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.chainSubs, id)
	}
}

// Disconnect 断开会话并重置状态
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.state = types.WalletState{BalanceWei: new(big.Int)}
	s.mu.Unlock()

	s.logger.Info("Wallet disconnected")
}

// Close 释放会话资源（保证取消 Provider 订阅）
func (s *Session) Close() {
	s.unsubOnce.Do(func() {
		if s.unsub != nil {
			s.unsub()
		}
	})
	s.Disconnect()
}

// handleEvent 处理 Provider 事件并派发给订阅者
func (s *Session) handleEvent(ev Event) {
	switch ev.Type {
	case EventAccountsChanged:
		s.mu.Lock()
		if len(ev.Accounts) > 0 {
			s.state.Connected = true
			s.state.Account = ev.Accounts[0]
		} else {
			s.state = types.WalletState{BalanceWei: new(big.Int)}
		}
		subs := make([]func([]common.Address), 0, len(s.accSubs))
		for _, cb := range s.accSubs {
			subs = append(subs, cb)
		}
		s.mu.Unlock()

		for _, cb := range subs {
			cb(ev.Accounts)
		}

	case EventChainChanged:
		s.mu.RLock()
		subs := make([]func(uint64), 0, len(s.chainSubs))
		for _, cb := range s.chainSubs {
			subs = append(subs, cb)
		}
		s.mu.RUnlock()

		for _, cb := range subs {
			cb(ev.ChainID)
		}

	case EventDisconnect:
		s.mu.Lock()
		s.state = types.WalletState{BalanceWei: new(big.Int)}
		subs := make([]func([]common.Address), 0, len(s.accSubs))
		for _, cb := range s.accSubs {
			subs = append(subs, cb)
		}
		s.mu.Unlock()

		for _, cb := range subs {
			cb(nil)
		}
	}
}

// classifyProviderError 将 Provider 错误映射到错误分类
func classifyProviderError(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user rejected"), strings.Contains(msg, "user denied"),
		strings.Contains(msg, "rejected the request"):
		return types.Wrap(types.ErrUserRejected, err)
	case strings.Contains(msg, "no provider"), strings.Contains(msg, "not installed"):
		return types.Wrap(types.ErrWalletUnavailable, err)
	default:
		return types.Wrap(types.ErrProviderError, err)
	}
}
