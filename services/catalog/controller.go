package catalog

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/auraCodesKM/resourcehub-sdk-go/client"
	"github.com/auraCodesKM/resourcehub-sdk-go/identity"
	"github.com/auraCodesKM/resourcehub-sdk-go/services/ledger"
	"github.com/auraCodesKM/resourcehub-sdk-go/services/storage"
	"github.com/auraCodesKM/resourcehub-sdk-go/types"
	"github.com/auraCodesKM/resourcehub-sdk-go/utils"
	"github.com/auraCodesKM/resourcehub-sdk-go/wallet"
)

// Options 控制器可调参数
type Options struct {
	// SettleDelay 账本变更后重新加载前的沉降等待
	SettleDelay time.Duration

	// SessionDisplayTime 终态会话展示多久后自动复位
	SessionDisplayTime time.Duration

	// OwnershipConcurrency 归属检查的并发上限
	OwnershipConcurrency int

	// Logger 日志器
	Logger client.Logger
}

// DefaultOptions 返回默认参数
func DefaultOptions() *Options {
	return &Options{
		SettleDelay:          2 * time.Second,
		SessionDisplayTime:   3 * time.Second,
		OwnershipConcurrency: 5,
	}
}

// Controller 资源目录控制器
//
// 把 WalletSession、账本网关、存储网关组合成四个面向用户的
// 操作（加载 / 上传 / 购买 / 刷新），独占内存中的目录及其与
// 账本的一致性。展示层只读快照，所有变更调用都经过控制器，
// 从不直接触达网关。
type Controller struct {
	session  *wallet.Session
	ledger   ledger.Gateway
	storage  storage.Gateway
	identity identity.Provider
	logger   client.Logger
	opts     *Options

	// loadMu 串行化 Load 周期（连接后加载、刷新、购买后刷新）
	loadMu sync.Mutex

	mu        sync.RWMutex
	snapshot  Snapshot
	upload    UploadSession
	uploadGen int
	purchases map[uint64]*PurchaseSession

	accUnsub   wallet.Unsubscribe
	chainUnsub wallet.Unsubscribe
}

// NewController 创建目录控制器
//
// identityProvider 可为 nil（匿名浏览模式）。
func NewController(session *wallet.Session, ledgerGw ledger.Gateway, storageGw storage.Gateway, identityProvider identity.Provider, opts *Options) *Controller {
	if opts == nil {
		opts = DefaultOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = client.NewNopLogger()
	}

	c := &Controller{
		session:   session,
		ledger:    ledgerGw,
		storage:   storageGw,
		identity:  identityProvider,
		logger:    logger,
		opts:      opts,
		purchases: make(map[uint64]*PurchaseSession),
	}
	c.snapshot.State = LoadIdle
	c.upload.Phase = UploadIdle

	// 链切换后合约地址不再匹配，继续用旧目录会静默读到错数据；
	// 这里只能整体作废，宿主上下文负责重建。
	if session != nil {
		c.chainUnsub = session.OnChainChanged(func(chainID uint64) {
			c.logger.Warn("Chain changed, invalidating catalog", "chainId", chainID)
			c.invalidate()
		})

		// 归属事实按查看账户派生；账户切换（含断开）后旧目录的
		// Owned 标记属于上一个账户，必须整体作废，由下一次加载
		// 以新账户重新派生。
		c.accUnsub = session.OnAccountsChanged(func(accounts []common.Address) {
			c.logger.Info("Accounts changed, invalidating catalog", "accounts", len(accounts))
			c.invalidate()
		})
	}

	return c
}

// Close 释放控制器资源
func (c *Controller) Close() {
	if c.accUnsub != nil {
		c.accUnsub()
	}
	if c.chainUnsub != nil {
		c.chainUnsub()
	}
}

// invalidate 将目录整体作废回 Idle
func (c *Controller) invalidate() {
	c.mu.Lock()
	c.snapshot = Snapshot{State: LoadIdle}
	c.mu.Unlock()
}

// Snapshot 返回目录状态快照
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := c.snapshot
	snap.Entries = make([]types.CatalogEntry, len(c.snapshot.Entries))
	copy(snap.Entries, c.snapshot.Entries)
	return snap
}

// UploadState 返回当前上传会话快照
func (c *Controller) UploadState() UploadSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.upload
}

// PurchaseState 返回指定资源的购买会话快照
func (c *Controller) PurchaseState(resourceID uint64) (PurchaseSession, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if s, ok := c.purchases[resourceID]; ok {
		return *s, true
	}
	return PurchaseSession{ResourceID: resourceID, Phase: PurchaseIdle}, false
}

// PurchasableResources 返回可购买的目录条目
//
// 只包含 Listed=true 且当前账户尚未拥有的资源。
func (c *Controller) PurchasableResources() []types.CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []types.CatalogEntry
	for _, e := range c.snapshot.Entries {
		if e.Resource.Listed && !e.Owned {
			out = append(out, e)
		}
	}
	return out
}

// ConnectAndLoad 连接钱包后加载目录
//
// 连接与加载严格串联：没有确认的签名账户之前绝不发起加载，
// 避免用缺失/过期的签名者读取。
func (c *Controller) ConnectAndLoad(ctx context.Context) error {
	if _, err := c.session.Connect(ctx); err != nil {
		return err
	}
	return c.Load(ctx)
}

// Load 执行一次完整的目录加载周期
//
// 状态机：Idle → Verifying → Loading → Ready | Degraded | Failed。
//
// **流程**：
// 1. 校验合约部署；不通过则 fail-fast，不再发起任何账本调用
// 2. 拉取资源列表；失败则终止于 Failed
// 3. 并发检查每条资源的归属；单条失败只降级该条目
func (c *Controller) Load(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	account, connected := c.session.Account()
	if !connected {
		err := types.NewHubError(types.ErrWalletUnavailable, "load requires a connected wallet", nil)
		c.setFailed(err)
		return err
	}

	c.setState(LoadVerifying)

	// 1. 部署校验（诊断性拦截）
	verification := c.ledger.VerifyDeployment(ctx)
	if !verification.Exists || !verification.FunctionsExist {
		c.logger.Warn("Contract verification failed", "error", verification.Err)
		c.setFailed(verification.Err)
		return verification.Err
	}

	c.setState(LoadLoading)

	// 2. 资源列表
	seq, err := c.ledger.ListResources(ctx)
	if err != nil {
		c.setFailed(err)
		return err
	}

	var resources []types.Resource
	for r := range seq {
		resources = append(resources, r)
	}

	// 3. 并发归属检查；全部完成（或各自失败）后才进入终态
	batch := utils.BatchQuery(ctx, resources,
		func(ctx context.Context, r types.Resource, index int) (bool, error) {
			return c.ledger.CheckOwnership(ctx, account, r.ID)
		},
		&utils.BatchConfig{Concurrency: c.opts.OwnershipConcurrency})

	entries := make([]types.CatalogEntry, len(resources))
	for i, r := range resources {
		entries[i] = types.CatalogEntry{
			Resource: r,
			Owned:    batch.Results[i],
		}
		if batch.FailedIndex(i) {
			// 归属未确认：按未拥有处理并打降级标记，不让整个目录失败
			entries[i].Owned = false
			entries[i].OwnershipDegraded = true
		}
	}

	degraded := batch.Failed > 0
	state := LoadReady
	if degraded {
		state = LoadDegraded
	}

	c.mu.Lock()
	c.snapshot = Snapshot{
		State:    state,
		Entries:  entries,
		Degraded: degraded,
		LoadedAt: time.Now(),
	}
	c.mu.Unlock()

	c.logger.Info("Catalog loaded",
		"resources", len(entries), "degraded", degraded, "account", account.Hex())
	return nil
}

// Refresh 沉降等待后重新执行加载周期
//
// 账本变更操作确认后使用：给账本状态留出沉降时间再读取。
// 对于相同的账本状态，连续两次 Refresh 产出资源集合与顺序
// 完全一致的目录。
func (c *Controller) Refresh(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.opts.SettleDelay):
	}

	if err := c.Load(ctx); err != nil {
		return err
	}

	// 变更操作之后余额同样过期了，顺带刷新（失败不影响目录）
	if _, err := c.session.RefreshBalance(ctx); err != nil {
		c.logger.Warn("Balance refresh failed", "error", err)
	}
	return nil
}

// ResolveContent 将目录条目的内容标识解析为可检索 URL
func (c *Controller) ResolveContent(contentID string) string {
	return c.storage.Resolve(contentID)
}

// WalletState 返回钱包状态快照（透传，展示层无需直接持有会话）
func (c *Controller) WalletState() types.WalletState {
	return c.session.State()
}

// BalanceDecimal 返回当前余额的十进制字符串（展示边界的精确转换）
func (c *Controller) BalanceDecimal() string {
	state := c.session.State()
	if state.BalanceWei == nil {
		return "0"
	}
	return utils.FormatWeiDecimal(state.BalanceWei)
}

// CurrentUser 返回外部身份系统的当前用户标识
func (c *Controller) CurrentUser() (identity.User, bool) {
	if c.identity == nil {
		return identity.User{}, false
	}
	return c.identity.CurrentUser()
}

// setState 推进加载状态（保留已有条目，加载中展示旧目录）
func (c *Controller) setState(state LoadState) {
	c.mu.Lock()
	c.snapshot.State = state
	c.snapshot.ErrorKind = ""
	c.snapshot.Err = nil
	c.mu.Unlock()
}

// setFailed 将加载周期终止于 Failed
//
// 上传/购买会话的失败只影响各自会话；这里只负责加载周期本身。
func (c *Controller) setFailed(err error) {
	c.mu.Lock()
	c.snapshot.State = LoadFailed
	c.snapshot.ErrorKind = types.KindOf(err)
	c.snapshot.Err = err
	c.mu.Unlock()
}

// entryFor 按资源 id 查找目录条目
func (c *Controller) entryFor(resourceID uint64) (types.CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.snapshot.Entries {
		if e.Resource.ID == resourceID {
			return e, true
		}
	}
	return types.CatalogEntry{}, false
}

// accountAndSigner 获取当前账户与签名能力
func (c *Controller) accountAndSigner() (common.Address, wallet.Signer, error) {
	account, connected := c.session.Account()
	if !connected {
		return common.Address{}, nil, types.NewHubError(types.ErrWalletUnavailable, "wallet not connected", nil)
	}
	signer, err := c.session.Signer()
	if err != nil {
		return common.Address{}, nil, err
	}
	return account, signer, nil
}

// priceOf 拷贝价格，nil 按零处理
func priceOf(p *big.Int) *big.Int {
	if p == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(p)
}
