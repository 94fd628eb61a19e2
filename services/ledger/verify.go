package ledger

import (
	"context"
	"strings"

	"github.com/auraCodesKM/resourcehub-sdk-go/types"
)

// verifyDeployment 合约部署校验实现
//
// **流程**：
// 1. 查询配置地址上的合约代码（eth_getCode）
// 2. 代码存在时，探测读取函数面（调用 getResources）
// 3. 返回结构化结果
//
// 任何一步失败都终止校验：后续账本调用会以同样的方式失败，
// 只会产生更晦涩的错误，提前拦截是唯一有用的处理。
func (g *gateway) VerifyDeployment(ctx context.Context) VerificationResult {
	// 1. 合约代码检查
	code, err := g.backend.CodeAt(ctx, g.contract, nil)
	if err != nil {
		return VerificationResult{
			Exists:         false,
			FunctionsExist: false,
			Err:            types.Wrap(types.ErrLedgerUnreachable, err),
		}
	}

	if len(code) == 0 {
		g.logger.Warn("No contract code at configured address", "address", g.contract.Hex())
		return VerificationResult{
			Exists:         false,
			FunctionsExist: false,
			Err:            types.NewHubError(types.ErrContractNotDeployed, "no code at "+g.contract.Hex(), nil),
		}
	}

	// 2. 读取函数面探测
	if _, err := g.callContract(ctx, methodGetResources); err != nil {
		kind := types.KindOf(err)
		if kind == types.ErrLedgerUnreachable {
			return VerificationResult{Exists: true, FunctionsExist: false, Err: err}
		}
		return VerificationResult{
			Exists:         true,
			FunctionsExist: false,
			Err:            types.Wrap(types.ErrContractFunctionMissing, err),
		}
	}

	return VerificationResult{Exists: true, FunctionsExist: true}
}

// isRevertError 判断错误是否为合约 revert / 无法执行
func isRevertError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "revert") || strings.Contains(msg, "invalid opcode")
}
