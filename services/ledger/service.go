package ledger

import (
	"context"
	"iter"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/auraCodesKM/resourcehub-sdk-go/client"
	"github.com/auraCodesKM/resourcehub-sdk-go/types"
	"github.com/auraCodesKM/resourcehub-sdk-go/wallet"
)

// Backend 账本节点的最小调用面
//
// *ethclient.Client 直接满足该接口；测试用内存实现替换。
type Backend interface {
	CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// VerificationResult 合约部署校验结果
//
// 地址/网络配置错误本来只会表现为底层调用的晦涩失败；该结构把
// 它们转换成两种用户可操作的状态（未部署 / 函数缺失），供加载
// 流程在发起任何其他账本调用之前做诊断性拦截。
type VerificationResult struct {
	// Exists 配置地址上存在合约代码
	Exists bool

	// FunctionsExist 期望的读取函数可调用
	FunctionsExist bool

	// Err 诊断性错误（结构化返回，不抛出）
	Err error
}

// TxOutcome 账本变更交易的结果
type TxOutcome struct {
	// TxHash 交易哈希
	TxHash common.Hash

	// BlockNumber 确认所在区块
	BlockNumber uint64

	// GasUsed 实际消耗的 gas
	GasUsed uint64
}

// Gateway 合约账本网关
//
// 对 Resource Hub 合约读写调用的类型化薄封装。变更调用阻塞到
// 交易确认；登记调用不返回新 Resource（账本分配的 id 要到确认
// 后才可知，调用方必须重新加载目录观察结果）。
type Gateway interface {
	// VerifyDeployment 校验合约部署与函数可用性（结构化结果，不抛出）
	VerifyDeployment(ctx context.Context) VerificationResult

	// ListResources 返回账本上的资源序列（按账本分配 id 升序）
	//
	// 惰性求值；节点不可达时整体失败（LedgerUnreachable），不做逐项失败。
	ListResources(ctx context.Context) (iter.Seq[types.Resource], error)

	// CheckOwnership 查询指定账户对指定资源的归属事实
	//
	// "未拥有"返回 (false, nil)；只有连接性失败才返回错误（LedgerUnreachable）。
	CheckOwnership(ctx context.Context, account common.Address, resourceID uint64) (bool, error)

	// RegisterResource 提交资源登记交易并阻塞到确认
	RegisterResource(ctx context.Context, signer wallet.Signer, contentID string, priceWei *big.Int, title, category, description string) (*TxOutcome, error)

	// PurchaseResource 提交购买交易（携带资源价格的转账）并阻塞到确认
	PurchaseResource(ctx context.Context, signer wallet.Signer, resourceID uint64, priceWei *big.Int) (*TxOutcome, error)

	// ContractInfo 查询合约的诊断性只读信息
	ContractInfo(ctx context.Context) (*types.ContractInfo, error)
}

// gateway Gateway 实现
type gateway struct {
	backend  Backend
	contract common.Address
	logger   client.Logger
	retry    *client.RetryConfig

	// confirmInterval 交易确认轮询间隔
	confirmInterval time.Duration
}

// NewGateway 基于已建立的节点连接创建账本网关
func NewGateway(cli *client.Client) Gateway {
	return &gateway{
		backend:         cli.Eth(),
		contract:        common.HexToAddress(cli.Config().ContractAddress),
		logger:          cli.Logger(),
		retry:           cli.Retry(),
		confirmInterval: 2 * time.Second,
	}
}

// NewGatewayWithBackend 用自定义 Backend 创建账本网关（测试用）
func NewGatewayWithBackend(backend Backend, contract common.Address, logger client.Logger) Gateway {
	if logger == nil {
		logger = client.NewNopLogger()
	}
	return &gateway{
		backend:         backend,
		contract:        contract,
		logger:          logger,
		confirmInterval: 10 * time.Millisecond,
	}
}

// callContract 执行一次合约只读调用（带重试）
func (g *gateway) callContract(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	input, err := hubABI.Pack(method, args...)
	if err != nil {
		return nil, types.NewHubError(types.ErrUnknown, "encode call "+method+": "+err.Error(), err)
	}

	msg := ethereum.CallMsg{
		To:   &g.contract,
		Data: input,
	}

	var output []byte
	err = client.Do(ctx, func() error {
		var callErr error
		output, callErr = g.backend.CallContract(ctx, msg, nil)
		return callErr
	}, g.retry)
	if err != nil {
		// revert 说明请求到达了节点但合约不认识该调用；其余按连接性失败处理
		if isRevertError(err) {
			return nil, types.Wrap(types.ErrContractFunctionMissing, err)
		}
		return nil, types.Wrap(types.ErrLedgerUnreachable, err)
	}

	results, err := hubABI.Unpack(method, output)
	if err != nil {
		return nil, types.NewHubError(types.ErrContractFunctionMissing, "decode result of "+method+": "+err.Error(), err)
	}
	return results, nil
}
