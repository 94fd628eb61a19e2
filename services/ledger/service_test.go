package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auraCodesKM/resourcehub-sdk-go/types"
	"github.com/auraCodesKM/resourcehub-sdk-go/wallet"
)

var (
	testContract = common.HexToAddress("0x841ebB789aBf1d8BeF39b8811143Cd3A7D194Db1")
	testUploader = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testBuyer    = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

// fakeBackend 内存账本后端
//
// 按 ABI 选择器分发只读调用；交易路径记录广播的交易并返回
// 预设回执。
type fakeBackend struct {
	mu sync.Mutex

	code    []byte
	codeErr error

	resources []rawResource
	owners    map[string]bool // "resourceID/address"
	callErr   map[string]error
	callCount map[string]int

	info types.ContractInfo

	nonce         uint64
	estimateErr   error
	sendErr       error
	receiptStatus uint64
	sentTxs       []*ethtypes.Transaction
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		code:          []byte{0x60, 0x80},
		owners:        make(map[string]bool),
		callErr:       make(map[string]error),
		callCount:     make(map[string]int),
		receiptStatus: ethtypes.ReceiptStatusSuccessful,
	}
}

func ownerKey(resourceID *big.Int, account common.Address) string {
	return fmt.Sprintf("%s/%s", resourceID, account.Hex())
}

func (b *fakeBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if b.codeErr != nil {
		return nil, b.codeErr
	}
	return b.code, nil
}

func (b *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	method, err := hubABI.MethodById(msg.Data[:4])
	if err != nil {
		return nil, errors.New("execution reverted")
	}
	b.callCount[method.Name]++

	if err := b.callErr[method.Name]; err != nil {
		return nil, err
	}

	switch method.Name {
	case methodGetResources:
		return method.Outputs.Pack(b.resources)
	case methodResourceBuyers:
		args, err := method.Inputs.Unpack(msg.Data[4:])
		if err != nil {
			return nil, err
		}
		id := args[0].(*big.Int)
		account := args[1].(common.Address)
		return method.Outputs.Pack(b.owners[ownerKey(id, account)])
	case methodPaymentToken:
		return method.Outputs.Pack(b.info.PaymentToken)
	case methodPlatformFeePercentage:
		fee := b.info.PlatformFeePercentage
		if fee == nil {
			fee = big.NewInt(0)
		}
		return method.Outputs.Pack(fee)
	case methodPlatformWallet:
		return method.Outputs.Pack(b.info.PlatformWallet)
	case methodOwner:
		return method.Outputs.Pack(b.info.Owner)
	default:
		return nil, errors.New("execution reverted")
	}
}

func (b *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return b.nonce, nil
}

func (b *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *fakeBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if b.estimateErr != nil {
		return 0, b.estimateErr
	}
	return 100_000, nil
}

func (b *fakeBackend) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sentTxs = append(b.sentTxs, tx)
	return nil
}

func (b *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	return &ethtypes.Receipt{
		Status:      b.receiptStatus,
		TxHash:      txHash,
		BlockNumber: big.NewInt(42),
		GasUsed:     90_000,
	}, nil
}

func (b *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(11155111), nil
}

func (b *fakeBackend) count(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.callCount[method]
}

func sampleResources() []rawResource {
	return []rawResource{
		{
			Id: big.NewInt(0), Uploader: testUploader, IpfsHash: "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
			Price: big.NewInt(5_000_000_000_000_000), IsListed: true,
			Title: "Intro to Distributed Systems", Category: "education", Description: "lecture notes",
		},
		{
			Id: big.NewInt(1), Uploader: testUploader, IpfsHash: "QmbWqxBEKC3P8tqsKc98xmWNzrzDtRLMiMPL8wBuTGsMnR",
			Price: big.NewInt(10_000_000_000_000_000), IsListed: false,
			Title: "Unlisted Draft", Category: "education", Description: "",
		},
	}
}

func newTestGateway(backend *fakeBackend) Gateway {
	return NewGatewayWithBackend(backend, testContract, nil)
}

func TestVerifyDeployment(t *testing.T) {
	t.Run("正常部署", func(t *testing.T) {
		backend := newFakeBackend()
		backend.resources = sampleResources()

		result := newTestGateway(backend).VerifyDeployment(context.Background())
		assert.True(t, result.Exists)
		assert.True(t, result.FunctionsExist)
		assert.NoError(t, result.Err)
	})

	t.Run("节点不可达", func(t *testing.T) {
		backend := newFakeBackend()
		backend.codeErr = errors.New("dial tcp: connection refused")

		result := newTestGateway(backend).VerifyDeployment(context.Background())
		assert.False(t, result.Exists)
		assert.False(t, result.FunctionsExist)
		assert.Equal(t, types.ErrLedgerUnreachable, types.KindOf(result.Err))
	})

	t.Run("地址上没有合约代码", func(t *testing.T) {
		backend := newFakeBackend()
		backend.code = nil

		result := newTestGateway(backend).VerifyDeployment(context.Background())
		assert.False(t, result.Exists)
		assert.Equal(t, types.ErrContractNotDeployed, types.KindOf(result.Err))
	})

	t.Run("合约缺少期望函数", func(t *testing.T) {
		backend := newFakeBackend()
		backend.callErr[methodGetResources] = errors.New("execution reverted")

		result := newTestGateway(backend).VerifyDeployment(context.Background())
		assert.True(t, result.Exists)
		assert.False(t, result.FunctionsExist)
		assert.Equal(t, types.ErrContractFunctionMissing, types.KindOf(result.Err))
	})
}

func TestListResources(t *testing.T) {
	backend := newFakeBackend()
	backend.resources = sampleResources()
	gw := newTestGateway(backend)

	seq, err := gw.ListResources(context.Background())
	require.NoError(t, err)

	var got []types.Resource
	for r := range seq {
		got = append(got, r)
	}

	require.Len(t, got, 2)
	assert.Equal(t, uint64(0), got[0].ID)
	assert.Equal(t, "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", got[0].ContentID)
	assert.Equal(t, "Intro to Distributed Systems", got[0].Title)
	assert.Equal(t, "5000000000000000", got[0].PriceWei.String())
	assert.True(t, got[0].Listed)

	assert.Equal(t, uint64(1), got[1].ID)
	assert.False(t, got[1].Listed)
}

func TestListResources_LazyStop(t *testing.T) {
	backend := newFakeBackend()
	backend.resources = sampleResources()
	gw := newTestGateway(backend)

	seq, err := gw.ListResources(context.Background())
	require.NoError(t, err)

	count := 0
	for range seq {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestListResources_Unreachable(t *testing.T) {
	backend := newFakeBackend()
	backend.callErr[methodGetResources] = errors.New("dial tcp: no route to host")
	gw := newTestGateway(backend)

	_, err := gw.ListResources(context.Background())
	assert.Equal(t, types.ErrLedgerUnreachable, types.KindOf(err))
}

func TestCheckOwnership(t *testing.T) {
	backend := newFakeBackend()
	backend.owners[ownerKey(big.NewInt(0), testBuyer)] = true
	gw := newTestGateway(backend)

	owned, err := gw.CheckOwnership(context.Background(), testBuyer, 0)
	require.NoError(t, err)
	assert.True(t, owned)

	// 未拥有不是错误
	owned, err = gw.CheckOwnership(context.Background(), testBuyer, 1)
	require.NoError(t, err)
	assert.False(t, owned)
}

func TestContractInfo(t *testing.T) {
	backend := newFakeBackend()
	backend.info = types.ContractInfo{
		PaymentToken:          common.HexToAddress("0x0000000000000000000000000000000000000000"),
		PlatformFeePercentage: big.NewInt(5),
		PlatformWallet:        common.HexToAddress("0x5555555555555555555555555555555555555555"),
		Owner:                 common.HexToAddress("0x6666666666666666666666666666666666666666"),
	}
	gw := newTestGateway(backend)

	info, err := gw.ContractInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, backend.info.PaymentToken, info.PaymentToken)
	assert.Equal(t, "5", info.PlatformFeePercentage.String())
	assert.Equal(t, backend.info.PlatformWallet, info.PlatformWallet)
	assert.Equal(t, backend.info.Owner, info.Owner)
}

func TestRegisterResource(t *testing.T) {
	backend := newFakeBackend()
	gw := newTestGateway(backend)

	w, err := wallet.NewWallet()
	require.NoError(t, err)

	outcome, err := gw.RegisterResource(context.Background(), w,
		"QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", big.NewInt(5_000_000_000_000_000),
		"Intro to Distributed Systems", "education", "lecture notes")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), outcome.BlockNumber)
	assert.Equal(t, uint64(90_000), outcome.GasUsed)

	require.Len(t, backend.sentTxs, 1)
	tx := backend.sentTxs[0]

	// 登记不携带转账金额
	assert.Equal(t, int64(0), tx.Value().Int64())

	method, err := hubABI.MethodById(tx.Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, methodUploadResource, method.Name)

	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", args[0].(string))
	assert.Equal(t, "5000000000000000", args[1].(*big.Int).String())
	assert.Equal(t, "Intro to Distributed Systems", args[2].(string))
}

func TestRegisterResource_Validation(t *testing.T) {
	backend := newFakeBackend()
	gw := newTestGateway(backend)
	w, err := wallet.NewWallet()
	require.NoError(t, err)

	_, err = gw.RegisterResource(context.Background(), nil, "Qm...", big.NewInt(1), "t", "c", "d")
	assert.Equal(t, types.ErrWalletUnavailable, types.KindOf(err))

	_, err = gw.RegisterResource(context.Background(), w, "", big.NewInt(1), "t", "c", "d")
	assert.Error(t, err)

	_, err = gw.RegisterResource(context.Background(), w, "Qm...", nil, "t", "c", "d")
	assert.Error(t, err)

	assert.Empty(t, backend.sentTxs, "invalid requests must not reach the ledger")
}

func TestPurchaseResource(t *testing.T) {
	backend := newFakeBackend()
	gw := newTestGateway(backend)
	w, err := wallet.NewWallet()
	require.NoError(t, err)

	price := big.NewInt(5_000_000_000_000_000)
	outcome, err := gw.PurchaseResource(context.Background(), w, 0, price)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, outcome.TxHash)

	require.Len(t, backend.sentTxs, 1)
	tx := backend.sentTxs[0]

	// 购买交易必须携带资源的精确价格
	assert.Equal(t, price.String(), tx.Value().String())

	method, err := hubABI.MethodById(tx.Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, methodPurchaseResource, method.Name)
}

func TestPurchaseResource_ErrorClassification(t *testing.T) {
	w, walletErr := wallet.NewWallet()
	require.NoError(t, walletErr)

	t.Run("余额不足", func(t *testing.T) {
		backend := newFakeBackend()
		backend.estimateErr = errors.New("insufficient funds for gas * price + value")

		_, err := newTestGateway(backend).PurchaseResource(context.Background(), w, 0, big.NewInt(1))
		assert.Equal(t, types.ErrInsufficientFunds, types.KindOf(err))
	})

	t.Run("用户拒绝签名", func(t *testing.T) {
		backend := newFakeBackend()

		_, err := newTestGateway(backend).PurchaseResource(context.Background(), rejectingSigner{w}, 0, big.NewInt(1))
		assert.Equal(t, types.ErrUserRejected, types.KindOf(err))
		assert.Empty(t, backend.sentTxs)
	})

	t.Run("广播失败", func(t *testing.T) {
		backend := newFakeBackend()
		backend.sendErr = errors.New("dial tcp: connection refused")

		_, err := newTestGateway(backend).PurchaseResource(context.Background(), w, 0, big.NewInt(1))
		assert.Equal(t, types.ErrLedgerUnreachable, types.KindOf(err))
	})

	t.Run("链上回滚", func(t *testing.T) {
		backend := newFakeBackend()
		backend.receiptStatus = ethtypes.ReceiptStatusFailed

		_, err := newTestGateway(backend).PurchaseResource(context.Background(), w, 0, big.NewInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reverted")
	})

	// 合约在预估阶段直接回滚（如重复购买），属于合约拒绝而非节点不可达
	t.Run("预估阶段回滚", func(t *testing.T) {
		backend := newFakeBackend()
		backend.estimateErr = errors.New("execution reverted: already purchased")

		_, err := newTestGateway(backend).PurchaseResource(context.Background(), w, 0, big.NewInt(1))
		require.Error(t, err)
		assert.NotEqual(t, types.ErrLedgerUnreachable, types.KindOf(err))
		assert.Equal(t, types.ErrUnknown, types.KindOf(err))
		assert.Contains(t, err.Error(), "already purchased")
	})
}

// rejectingSigner 模拟用户在钱包中拒绝签名
type rejectingSigner struct {
	*wallet.LocalWallet
}

func (s rejectingSigner) SignTx(ctx context.Context, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	return nil, errors.New("MetaMask Tx Signature: User denied transaction signature")
}
