package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Resource 账本上登记的一条资源记录
//
// ID 由账本在登记交易确认时分配，单调递增且不可变更；
// 客户端从不在本地删除 Resource，只会重新读取。
type Resource struct {
	// ID 账本分配的资源标识
	ID uint64

	// Uploader 上传者账户地址
	Uploader common.Address

	// ContentID 内容寻址标识（CIDv0，base58 编码）
	ContentID string

	// PriceWei 价格（最小货币单位，wei）
	PriceWei *big.Int

	// Title / Category / Description 资源元数据
	Title       string
	Category    string
	Description string

	// Listed 是否在售；Listed=false 的资源绝不能被提供购买
	Listed bool
}

// CatalogEntry 目录中的一条资源及其对当前账户的归属事实
//
// Owned 每次加载都要重新派生（其他买家随时可能完成购买），
// OwnershipDegraded=true 表示本次归属查询失败、Owned 按 false 处理。
type CatalogEntry struct {
	Resource Resource

	// Owned 当前查看账户是否已拥有该资源
	Owned bool

	// OwnershipDegraded 本条归属事实因临时读取失败而未能确认
	OwnershipDegraded bool
}

// WalletState 钱包连接状态快照
//
// 只由 WalletSession 在 Provider 事件或显式连接时更新，
// 控制器和展示层只读取，从不直接修改。
type WalletState struct {
	Connected  bool
	Account    common.Address
	BalanceWei *big.Int
}

// ContractInfo 合约的诊断性只读信息
type ContractInfo struct {
	PaymentToken          common.Address
	PlatformFeePercentage *big.Int
	PlatformWallet        common.Address
	Owner                 common.Address
}
