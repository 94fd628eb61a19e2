package client

// Config 客户端配置
type Config struct {
	// Endpoint 账本 JSON-RPC 端点地址
	Endpoint string

	// ContractAddress Resource Hub 合约地址（十六进制，0x 前缀）
	//
	// 合约地址与链绑定，链切换后必须重新配置，否则读取会得到
	// 难以排查的底层失败（参见 ledger.VerifyDeployment）。
	ContractAddress string

	// GatewayEndpoint 存储网关上传端点（multipart HTTP）
	GatewayEndpoint string

	// GatewayPublicURL 内容标识解析用的公共网关前缀
	GatewayPublicURL string

	// Timeout 单次 RPC 超时时间（秒）
	Timeout int

	// Retry 重试配置（nil 表示使用默认配置）
	Retry *RetryConfig

	// Debug 调试模式（输出请求/响应日志）
	Debug bool

	// Logger 日志器（nil 表示不输出日志）
	Logger Logger
}

// DefaultConfig 返回默认配置（Sepolia 测试网 + 本地网关）
func DefaultConfig() *Config {
	return &Config{
		Endpoint:         "https://ethereum-sepolia.publicnode.com",
		ContractAddress:  "0x841ebB789aBf1d8BeF39b8811143Cd3A7D194Db1",
		GatewayEndpoint:  "http://localhost:3000/api/upload",
		GatewayPublicURL: "https://gateway.pinata.cloud/ipfs",
		Timeout:          30,
		Debug:            false,
	}
}
