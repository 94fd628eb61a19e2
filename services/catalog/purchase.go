package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/auraCodesKM/resourcehub-sdk-go/types"
)

// Purchase 购买指定资源
//
// 同一资源已有未到终态的购买会话时，直接本地拒绝（防止重复点击
// 造成双重提交），不发起任何网络调用。账本层面的幂等由合约保证
// （已拥有者的再次购买会被拒绝），本地只负责并发去重。
//
// Confirmed 后触发目录刷新：归属事实必须从账本重新派生，购买
// 交易的副作用以账本为唯一事实来源，本地不做假设。
func (c *Controller) Purchase(ctx context.Context, resourceID uint64) error {
	entry, found := c.entryFor(resourceID)
	if !found {
		return types.NewHubError(types.ErrUnknown,
			fmt.Sprintf("resource %d is not in the catalog", resourceID), nil)
	}
	// Listed=false 的资源绝不能被购买
	if !entry.Resource.Listed {
		return types.NewHubError(types.ErrUnknown,
			fmt.Sprintf("resource %d is not listed for sale", resourceID), nil)
	}

	_, signer, err := c.accountAndSigner()
	if err != nil {
		return err
	}

	// 本地并发去重：第二次尝试在任何网络调用之前被拒绝
	if !c.beginPurchase(resourceID) {
		return types.NewHubError(types.ErrUnknown,
			fmt.Sprintf("purchase of resource %d is already in progress", resourceID), nil)
	}

	outcome, err := c.ledger.PurchaseResource(ctx, signer, resourceID, priceOf(entry.Resource.PriceWei))
	if err != nil {
		c.logger.Warn("Purchase failed", "resourceId", resourceID, "error", err)
		c.endPurchase(resourceID, PurchaseFailed, err)
		return err
	}

	c.logger.Info("Purchase confirmed",
		"resourceId", resourceID, "txHash", outcome.TxHash.Hex())
	c.endPurchase(resourceID, PurchaseConfirmed, nil)

	return c.Refresh(ctx)
}

// beginPurchase 尝试为资源开启购买会话
//
// 已存在未到终态的会话时返回 false。
func (c *Controller) beginPurchase(resourceID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.purchases[resourceID]; ok && !existing.Phase.Terminal() {
		return false
	}

	c.purchases[resourceID] = &PurchaseSession{
		ResourceID: resourceID,
		Phase:      PurchaseSubmitting,
	}
	return true
}

// endPurchase 将购买会话推进到终态，并安排展示后的清理
func (c *Controller) endPurchase(resourceID uint64, phase PurchasePhase, err error) {
	c.mu.Lock()
	if s, ok := c.purchases[resourceID]; ok {
		s.Phase = phase
		s.ErrorKind = types.KindOf(err)
		s.Err = err
	}
	c.mu.Unlock()

	if c.opts.SessionDisplayTime <= 0 {
		return
	}
	time.AfterFunc(c.opts.SessionDisplayTime, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if s, ok := c.purchases[resourceID]; ok && s.Phase.Terminal() {
			delete(c.purchases, resourceID)
		}
	})
}
