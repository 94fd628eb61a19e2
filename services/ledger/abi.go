package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Resource Hub 合约 ABI（只包含 SDK 用到的函数）
const hubABIJSON = `[
	{
		"type": "function",
		"name": "getResources",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [
			{
				"name": "",
				"type": "tuple[]",
				"components": [
					{"name": "id", "type": "uint256"},
					{"name": "uploader", "type": "address"},
					{"name": "ipfsHash", "type": "string"},
					{"name": "price", "type": "uint256"},
					{"name": "isListed", "type": "bool"},
					{"name": "title", "type": "string"},
					{"name": "category", "type": "string"},
					{"name": "description", "type": "string"}
				]
			}
		]
	},
	{
		"type": "function",
		"name": "resourceBuyers",
		"stateMutability": "view",
		"inputs": [
			{"name": "", "type": "uint256"},
			{"name": "", "type": "address"}
		],
		"outputs": [
			{"name": "", "type": "bool"}
		]
	},
	{
		"type": "function",
		"name": "uploadResource",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "_ipfsHash", "type": "string"},
			{"name": "_price", "type": "uint256"},
			{"name": "_title", "type": "string"},
			{"name": "_category", "type": "string"},
			{"name": "_description", "type": "string"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "purchaseResource",
		"stateMutability": "payable",
		"inputs": [
			{"name": "_resourceId", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "paymentToken",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "address"}]
	},
	{
		"type": "function",
		"name": "platformFeePercentage",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"type": "function",
		"name": "platformWallet",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "address"}]
	},
	{
		"type": "function",
		"name": "owner",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "address"}]
	}
]`

// 合约函数名常量
const (
	methodGetResources          = "getResources"
	methodResourceBuyers        = "resourceBuyers"
	methodUploadResource        = "uploadResource"
	methodPurchaseResource      = "purchaseResource"
	methodPaymentToken          = "paymentToken"
	methodPlatformFeePercentage = "platformFeePercentage"
	methodPlatformWallet        = "platformWallet"
	methodOwner                 = "owner"
)

// hubABI 解析后的合约 ABI
var hubABI = mustParseABI(hubABIJSON)

func mustParseABI(abiJSON string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic("invalid contract ABI: " + err.Error())
	}
	return parsed
}
