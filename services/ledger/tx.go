package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/auraCodesKM/resourcehub-sdk-go/types"
	"github.com/auraCodesKM/resourcehub-sdk-go/wallet"
)

// registerResource 资源登记实现
//
// **流程**：
// 1. 参数校验（内容标识、价格）
// 2. 编码 uploadResource 调用
// 3. 构建、签名、广播交易并阻塞到确认
//
// 不返回新 Resource：账本分配的 id 要到确认后才可知，本地乐观
// 插入会产生重复/幽灵条目，调用方必须重新加载目录。
func (g *gateway) RegisterResource(ctx context.Context, signer wallet.Signer, contentID string, priceWei *big.Int, title, category, description string) (*TxOutcome, error) {
	if signer == nil {
		return nil, types.NewHubError(types.ErrWalletUnavailable, "no signer for registration", nil)
	}
	if contentID == "" {
		return nil, types.NewHubError(types.ErrUnknown, "empty content identifier", nil)
	}
	if priceWei == nil || priceWei.Sign() < 0 {
		return nil, types.NewHubError(types.ErrUnknown, "invalid price", nil)
	}

	input, err := hubABI.Pack(methodUploadResource, contentID, priceWei, title, category, description)
	if err != nil {
		return nil, types.NewHubError(types.ErrUnknown, "encode registration: "+err.Error(), err)
	}

	g.logger.Info("Submitting resource registration",
		"contentId", contentID, "priceWei", priceWei.String(), "title", title)

	return g.sendAndConfirm(ctx, signer, input, nil)
}

// purchaseResource 资源购买实现
//
// 携带资源价格的转账交易。幂等性由账本保证（已拥有者的二次购买
// 会被合约拒绝）；本地的并发去重由控制器的 PurchaseSession 负责。
func (g *gateway) PurchaseResource(ctx context.Context, signer wallet.Signer, resourceID uint64, priceWei *big.Int) (*TxOutcome, error) {
	if signer == nil {
		return nil, types.NewHubError(types.ErrWalletUnavailable, "no signer for purchase", nil)
	}
	if priceWei == nil || priceWei.Sign() < 0 {
		return nil, types.NewHubError(types.ErrUnknown, "invalid price", nil)
	}

	input, err := hubABI.Pack(methodPurchaseResource, new(big.Int).SetUint64(resourceID))
	if err != nil {
		return nil, types.NewHubError(types.ErrUnknown, "encode purchase: "+err.Error(), err)
	}

	g.logger.Info("Submitting resource purchase",
		"resourceId", resourceID, "priceWei", priceWei.String())

	return g.sendAndConfirm(ctx, signer, input, priceWei)
}

// sendAndConfirm 构建、签名、广播交易并等待确认
//
// **流程**：
// 1. 查询 nonce / gas price / 链 ID，估算 gas
// 2. 通过 Signer 签名（可能触发用户确认，可能被拒绝）
// 3. 广播交易
// 4. 轮询回执直到确认或 ctx 取消
//
// 广播之后没有取消一说：ctx 取消只是停止等待，交易仍可能在
// 外部系统中确认，由下一次完整刷新来反映真实账本状态。
func (g *gateway) sendAndConfirm(ctx context.Context, signer wallet.Signer, input []byte, value *big.Int) (*TxOutcome, error) {
	from := signer.Address()

	nonce, err := g.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, classifyTxError(err)
	}

	gasPrice, err := g.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, classifyTxError(err)
	}

	chainID, err := g.backend.ChainID(ctx)
	if err != nil {
		return nil, classifyTxError(err)
	}

	msg := ethereum.CallMsg{
		From:  from,
		To:    &g.contract,
		Value: value,
		Data:  input,
	}
	gasLimit, err := g.backend.EstimateGas(ctx, msg)
	if err != nil {
		// gas 估算阶段的 revert 通常是余额不足或合约拒绝
		return nil, classifyTxError(err)
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &g.contract,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     input,
	})

	signed, err := signer.SignTx(ctx, tx, chainID)
	if err != nil {
		return nil, classifyTxError(err)
	}

	if err := g.backend.SendTransaction(ctx, signed); err != nil {
		return nil, classifyTxError(err)
	}

	txHash := signed.Hash()
	g.logger.Info("Transaction broadcast", "txHash", txHash.Hex())

	receipt, err := g.waitReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, types.NewHubError(types.ErrUnknown,
			fmt.Sprintf("transaction %s reverted on chain", txHash.Hex()), nil)
	}

	g.logger.Info("Transaction confirmed",
		"txHash", txHash.Hex(), "block", receipt.BlockNumber.Uint64(), "gasUsed", receipt.GasUsed)

	return &TxOutcome{
		TxHash:      txHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}

// waitReceipt 轮询交易回执直到确认
func (g *gateway) waitReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	ticker := time.NewTicker(g.confirmInterval)
	defer ticker.Stop()

	for {
		receipt, err := g.backend.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			// 只是停止等待；已广播的交易仍可能在链上确认
			return nil, types.NewHubError(types.ErrLedgerUnreachable,
				"stopped waiting for confirmation of "+txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// classifyTxError 将交易提交阶段的错误映射到错误分类
func classifyTxError(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user rejected"), strings.Contains(msg, "user denied"),
		strings.Contains(msg, "rejected the request"):
		return types.Wrap(types.ErrUserRejected, err)
	case strings.Contains(msg, "insufficient funds"), strings.Contains(msg, "insufficient balance"):
		return types.Wrap(types.ErrInsufficientFunds, err)
	case isRevertError(err):
		// 预估或广播阶段的回滚说明合约拒绝了这笔调用（如重复购买），
		// 不是节点不可达
		return types.NewHubError(types.ErrUnknown,
			"ledger rejected the transaction: "+err.Error(), err)
	default:
		return types.Wrap(types.ErrLedgerUnreachable, err)
	}
}
