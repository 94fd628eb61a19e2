package catalog

import (
	"time"

	"github.com/auraCodesKM/resourcehub-sdk-go/types"
)

// LoadState 目录加载状态机
type LoadState string

const (
	LoadIdle      LoadState = "Idle"
	LoadVerifying LoadState = "Verifying"
	LoadLoading   LoadState = "Loading"
	LoadReady     LoadState = "Ready"
	LoadDegraded  LoadState = "Degraded" // 加载成功但部分归属事实未确认
	LoadFailed    LoadState = "Failed"
)

// UploadPhase 上传会话阶段
//
// 两阶段非原子提交：内容先上存储，再上账本；两阶段之间没有
// 分布式事务。
type UploadPhase string

const (
	UploadIdle          UploadPhase = "Idle"
	UploadingContent    UploadPhase = "UploadingContent"
	RegisteringOnLedger UploadPhase = "RegisteringOnLedger"
	UploadDone          UploadPhase = "Done"
	UploadFailed        UploadPhase = "Failed"
)

// Terminal 上传阶段是否为终态
func (p UploadPhase) Terminal() bool {
	return p == UploadDone || p == UploadFailed
}

// PurchasePhase 购买会话阶段
type PurchasePhase string

const (
	PurchaseIdle       PurchasePhase = "Idle"
	PurchaseSubmitting PurchasePhase = "Submitting"
	PurchaseConfirmed  PurchasePhase = "Confirmed"
	PurchaseFailed     PurchasePhase = "Failed"
)

// Terminal 购买阶段是否为终态
func (p PurchasePhase) Terminal() bool {
	return p == PurchaseConfirmed || p == PurchaseFailed
}

// UploadSession 单次上传尝试的瞬态状态
type UploadSession struct {
	Phase UploadPhase

	// Progress 进度（0-100）
	Progress int

	// ContentID 阶段一产出的内容标识
	//
	// Phase=Failed 且 ContentID 非空意味着孤儿内容：已上存储但
	// 从未登记上账本，客户端无补偿删除手段；必须作为登记失败
	// 如实上报，绝不能伪装成普通上传失败。
	ContentID string

	// ErrorKind / Err 失败信息
	ErrorKind types.ErrorKind
	Err       error
}

// PurchaseSession 单个资源的购买会话
//
// 按资源 id 键控：同一资源不允许两个并发购买尝试。
type PurchaseSession struct {
	ResourceID uint64
	Phase      PurchasePhase

	ErrorKind types.ErrorKind
	Err       error
}

// Snapshot 目录状态快照（展示层只读）
type Snapshot struct {
	State LoadState

	// Entries 按账本分配 id 升序的目录条目
	Entries []types.CatalogEntry

	// Degraded 一条或多条归属事实未能确认
	Degraded bool

	// ErrorKind / Err 终止于 Failed 时的诊断信息
	ErrorKind types.ErrorKind
	Err       error

	// LoadedAt 最近一次成功加载时间
	LoadedAt time.Time
}
