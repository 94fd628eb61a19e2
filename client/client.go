package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client 账本节点连接
//
// 对 go-ethereum 的 rpc/ethclient 做一层薄封装，统一持有配置、
// 日志器和重试策略，供各业务 Gateway 复用同一条连接。
type Client struct {
	cfg    *Config
	rpcCli *rpc.Client
	eth    *ethclient.Client
	logger Logger
	retry  *RetryConfig
}

// Dial 建立到账本节点的连接
func Dial(ctx context.Context, config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	rpcCli, err := rpc.DialOptions(ctx, config.Endpoint,
		rpc.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("dial ledger endpoint %s: %w", config.Endpoint, err)
	}

	retryConfig := config.Retry
	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
		if config.Debug && config.Logger != nil {
			retryConfig.OnRetry = func(attempt int, err error) {
				config.Logger.Warn("Retrying ledger request", "attempt", attempt, "error", err)
			}
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = NewNopLogger()
	}

	return &Client{
		cfg:    config,
		rpcCli: rpcCli,
		eth:    ethclient.NewClient(rpcCli),
		logger: logger,
		retry:  retryConfig,
	}, nil
}

// Eth 返回底层的 ethclient（合约调用、余额、代码查询）
func (c *Client) Eth() *ethclient.Client {
	return c.eth
}

// RPC 返回底层的 JSON-RPC 客户端
func (c *Client) RPC() *rpc.Client {
	return c.rpcCli
}

// Config 返回客户端配置
func (c *Client) Config() *Config {
	return c.cfg
}

// Logger 返回日志器
func (c *Client) Logger() Logger {
	return c.logger
}

// Retry 返回重试配置
func (c *Client) Retry() *RetryConfig {
	return c.retry
}

// ChainID 查询节点链 ID
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("query chain id: %w", err)
	}
	return id.Uint64(), nil
}

// Close 关闭连接
func (c *Client) Close() {
	c.rpcCli.Close()
}
