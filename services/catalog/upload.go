package catalog

import (
	"context"
	"time"

	"github.com/auraCodesKM/resourcehub-sdk-go/services/storage"
	"github.com/auraCodesKM/resourcehub-sdk-go/types"
	"github.com/auraCodesKM/resourcehub-sdk-go/utils"
)

// UploadInput 上传表单
type UploadInput struct {
	// Payload PDF 文件内容
	Payload []byte

	// Filename 原始文件名
	Filename string

	// Title / Category / Description 资源元数据
	Title       string
	Category    string
	Description string

	// PriceDecimal 十进制价格字符串（账本原生货币，如 "0.005"）
	PriceDecimal string
}

// Upload 执行两阶段上传
//
// 阶段一（UploadingContent）：载荷上存储网关；失败则终止，账本
// 从未被触碰。阶段二（RegisteringOnLedger）：价格转换为最小单位
// 后提交登记交易，阻塞到确认。
//
// **已知的不一致窗口**：阶段一成功而阶段二失败（用户拒绝、余额
// 不足、网络中断）时，内容已可寻址但从未登记上账本——孤儿对象，
// 客户端没有补偿删除手段。不自动重试阶段二：重试需要同一签名
// 会话，且用户若同时重新提交表单会造成重复登记。会话如实终止于
// Failed 并保留 ContentID，作为登记失败上报。
//
// 成功后不做本地乐观插入；调度一次延迟刷新，让账本分配的 id
// 通过完整加载周期进入目录。
func (c *Controller) Upload(ctx context.Context, input *UploadInput) error {
	// 表单级校验先行：无效的价格不应该触发阶段一，
	// 否则会平白制造一个孤儿对象
	priceWei, err := utils.ParseEtherDecimal(input.PriceDecimal)
	if err != nil {
		hubErr := types.NewHubError(types.ErrUnknown, "invalid price: "+err.Error(), err)
		c.failUpload("", hubErr)
		return hubErr
	}

	_, signer, err := c.accountAndSigner()
	if err != nil {
		c.failUpload("", err)
		return err
	}

	gen := c.beginUpload()

	// 阶段一：内容上存储
	c.setUploadPhase(gen, UploadingContent, 10)

	result, err := c.storage.Upload(ctx, &storage.UploadRequest{
		Payload:     input.Payload,
		Filename:    input.Filename,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.PriceDecimal,
	})
	if err != nil {
		c.logger.Warn("Content upload failed", "error", err)
		c.failUpload("", err)
		return err
	}

	c.setUploadContentID(gen, result.ContentID)
	c.setUploadPhase(gen, UploadingContent, 50)

	// 阶段二：账本登记（只有阶段一成功才会进入）
	c.setUploadPhase(gen, RegisteringOnLedger, 75)

	outcome, err := c.ledger.RegisterResource(ctx, signer,
		result.ContentID, priceWei, input.Title, input.Category, input.Description)
	if err != nil {
		c.logger.Warn("Ledger registration failed, content is orphaned",
			"contentId", result.ContentID, "error", err)
		c.failUpload(result.ContentID, err)
		return err
	}

	c.logger.Info("Resource registered",
		"contentId", result.ContentID, "txHash", outcome.TxHash.Hex())

	c.setUploadPhase(gen, UploadDone, 100)
	c.scheduleUploadReset(gen)

	// 延迟刷新：账本状态沉降后通过完整加载周期观察新资源
	return c.Refresh(ctx)
}

// ResetUpload 手动将上传会话复位到 Idle
func (c *Controller) ResetUpload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploadGen++
	c.upload = UploadSession{Phase: UploadIdle}
}

// beginUpload 开始新的上传会话，返回会话代号
//
// 代号用于让过期会话的异步复位/更新失效（用户可能已提交了
// 下一次上传）。
func (c *Controller) beginUpload() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploadGen++
	c.upload = UploadSession{Phase: UploadIdle}
	return c.uploadGen
}

// setUploadPhase 推进上传会话阶段
func (c *Controller) setUploadPhase(gen int, phase UploadPhase, progress int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.uploadGen {
		return
	}
	c.upload.Phase = phase
	c.upload.Progress = progress
}

// setUploadContentID 记录阶段一产出的内容标识
func (c *Controller) setUploadContentID(gen int, contentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.uploadGen {
		return
	}
	c.upload.ContentID = contentID
}

// failUpload 将上传会话终止于 Failed
//
// contentID 非空表示存储阶段已成功——孤儿内容，保留在会话里
// 供上报；目录的 Ready 状态不受影响。
func (c *Controller) failUpload(contentID string, err error) {
	c.mu.Lock()
	c.uploadGen++
	gen := c.uploadGen
	c.upload = UploadSession{
		Phase:     UploadFailed,
		ContentID: contentID,
		ErrorKind: types.KindOf(err),
		Err:       err,
	}
	c.mu.Unlock()

	c.scheduleUploadReset(gen)
}

// scheduleUploadReset 终态展示一段时间后自动复位到 Idle
func (c *Controller) scheduleUploadReset(gen int) {
	if c.opts.SessionDisplayTime <= 0 {
		return
	}
	time.AfterFunc(c.opts.SessionDisplayTime, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.uploadGen || !c.upload.Phase.Terminal() {
			return
		}
		c.upload = UploadSession{Phase: UploadIdle}
	})
}
