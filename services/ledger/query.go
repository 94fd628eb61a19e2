package ledger

import (
	"context"
	"iter"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/auraCodesKM/resourcehub-sdk-go/types"
)

// rawResource getResources 返回的元组布局
type rawResource struct {
	Id          *big.Int
	Uploader    common.Address
	IpfsHash    string
	Price       *big.Int
	IsListed    bool
	Title       string
	Category    string
	Description string
}

// listResources 资源列表查询实现
//
// **流程**：
// 1. 调用合约 getResources（单次 eth_call，节点不可达时整体失败）
// 2. 解码元组数组
// 3. 返回按账本分配 id 升序的惰性序列
func (g *gateway) ListResources(ctx context.Context) (iter.Seq[types.Resource], error) {
	results, err := g.callContract(ctx, methodGetResources)
	if err != nil {
		return nil, err
	}

	raw := *abi.ConvertType(results[0], new([]rawResource)).(*[]rawResource)

	seq := func(yield func(types.Resource) bool) {
		for _, r := range raw {
			res := types.Resource{
				ID:          r.Id.Uint64(),
				Uploader:    r.Uploader,
				ContentID:   r.IpfsHash,
				PriceWei:    new(big.Int).Set(r.Price),
				Title:       r.Title,
				Category:    r.Category,
				Description: r.Description,
				Listed:      r.IsListed,
			}
			if !yield(res) {
				return
			}
		}
	}

	return seq, nil
}

// checkOwnership 归属事实查询实现
//
// "未拥有"不是错误；只有连接性失败才返回错误，调用方据此做
// 逐项降级而不是让整个目录加载失败。
func (g *gateway) CheckOwnership(ctx context.Context, account common.Address, resourceID uint64) (bool, error) {
	results, err := g.callContract(ctx, methodResourceBuyers, new(big.Int).SetUint64(resourceID), account)
	if err != nil {
		return false, err
	}

	owned := *abi.ConvertType(results[0], new(bool)).(*bool)
	return owned, nil
}

// contractInfo 合约诊断信息查询实现
func (g *gateway) ContractInfo(ctx context.Context) (*types.ContractInfo, error) {
	info := &types.ContractInfo{}

	results, err := g.callContract(ctx, methodPaymentToken)
	if err != nil {
		return nil, err
	}
	info.PaymentToken = *abi.ConvertType(results[0], new(common.Address)).(*common.Address)

	results, err = g.callContract(ctx, methodPlatformFeePercentage)
	if err != nil {
		return nil, err
	}
	info.PlatformFeePercentage = *abi.ConvertType(results[0], new(*big.Int)).(**big.Int)

	results, err = g.callContract(ctx, methodPlatformWallet)
	if err != nil {
		return nil, err
	}
	info.PlatformWallet = *abi.ConvertType(results[0], new(common.Address)).(*common.Address)

	results, err = g.callContract(ctx, methodOwner)
	if err != nil {
		return nil, err
	}
	info.Owner = *abi.ConvertType(results[0], new(common.Address)).(*common.Address)

	return info, nil
}
