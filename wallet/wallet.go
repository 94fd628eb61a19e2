package wallet

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// LocalWallet 本地私钥签名器（用于 CLI、测试和无浏览器环境）
type LocalWallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	createdAt  time.Time
}

// NewWallet 创建新钱包（随机私钥）
func NewWallet() (*LocalWallet, error) {
	privateKey, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}

	return &LocalWallet{
		privateKey: privateKey,
		address:    ethcrypto.PubkeyToAddress(privateKey.PublicKey),
		createdAt:  time.Now(),
	}, nil
}

// NewWalletFromPrivateKey 从十六进制私钥创建钱包
func NewWalletFromPrivateKey(privateKeyHex string) (*LocalWallet, error) {
	// 移除 0x 前缀（如果有）
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")

	privateKeyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}

	if len(privateKeyBytes) != 32 {
		return nil, fmt.Errorf("invalid private key length: expected 32 bytes, got %d", len(privateKeyBytes))
	}

	privateKey, err := ethcrypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &LocalWallet{
		privateKey: privateKey,
		address:    ethcrypto.PubkeyToAddress(privateKey.PublicKey),
		createdAt:  time.Now(),
	}, nil
}

// Address 钱包地址
func (w *LocalWallet) Address() common.Address {
	return w.address
}

// SignTx 签名交易（EIP-155）
func (w *LocalWallet) SignTx(ctx context.Context, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	signer := ethtypes.LatestSignerForChainID(chainID)
	signed, err := ethtypes.SignTx(tx, signer, w.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return signed, nil
}

// PrivateKey 获取私钥（谨慎使用）
func (w *LocalWallet) PrivateKey() *ecdsa.PrivateKey {
	return w.privateKey
}

// LocalProvider 由本地钱包组成的 Provider 实现
//
// RequestAccounts 直接返回全部本地账户（无用户确认环节）；
// 不产生任何事件。
type LocalProvider struct {
	chainID uint64

	mu      sync.RWMutex
	wallets map[common.Address]*LocalWallet
	order   []common.Address
}

// NewLocalProvider 创建本地 Provider
func NewLocalProvider(chainID uint64, wallets ...*LocalWallet) *LocalProvider {
	p := &LocalProvider{
		chainID: chainID,
		wallets: make(map[common.Address]*LocalWallet),
	}
	for _, w := range wallets {
		p.AddWallet(w)
	}
	return p
}

// AddWallet 添加本地钱包
func (p *LocalProvider) AddWallet(w *LocalWallet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.wallets[w.Address()]; !exists {
		p.order = append(p.order, w.Address())
	}
	p.wallets[w.Address()] = w
}

// RequestAccounts 请求账户授权
func (p *LocalProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return p.Accounts(ctx)
}

// Accounts 返回全部本地账户
func (p *LocalProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	accounts := make([]common.Address, len(p.order))
	copy(accounts, p.order)
	return accounts, nil
}

// ChainID 返回配置的链 ID
func (p *LocalProvider) ChainID(ctx context.Context) (uint64, error) {
	return p.chainID, nil
}

// SignTx 用指定账户的本地私钥签名
func (p *LocalProvider) SignTx(ctx context.Context, account common.Address, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	p.mu.RLock()
	w, ok := p.wallets[account]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no local wallet for account %s", account.Hex())
	}
	return w.SignTx(ctx, tx, chainID)
}

// Subscribe 本地 Provider 不产生事件
func (p *LocalProvider) Subscribe(cb func(Event)) Unsubscribe {
	return func() {}
}

// Close 释放资源
func (p *LocalProvider) Close() error {
	return nil
}
