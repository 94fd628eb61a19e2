package storage

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/auraCodesKM/resourcehub-sdk-go/client"
)

// MaxPayloadSize 上传载荷大小上限（10 MiB）
const MaxPayloadSize = 10 * 1024 * 1024

// UploadRequest 上传请求
type UploadRequest struct {
	// Payload 文件内容（PDF，不超过 MaxPayloadSize）
	Payload []byte

	// Filename 原始文件名（multipart 表单用）
	Filename string

	// Title / Description / Category 资源元数据
	Title       string
	Description string
	Category    string

	// Price 十进制价格字符串（账本原生货币）
	//
	// 网关只透传元数据；真正的计价以账本登记为准。
	Price string
}

// UploadResult 上传结果
type UploadResult struct {
	// ContentID 内容寻址标识（CIDv0）
	ContentID string

	// URL 网关返回的可检索地址
	URL string
}

// Gateway 内容寻址存储网关
//
// 上传一经成功，内容即可寻址且事实上永久存在（网关不暴露删除
// 契约）——没有回滚一说。
type Gateway interface {
	// Upload 上传载荷与元数据，返回内容标识
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)

	// Resolve 将内容标识解析为可检索 URL（纯字符串构造，无网络调用）
	Resolve(contentID string) string
}

// gateway Gateway 实现
type gateway struct {
	endpoint  string
	publicURL string
	http      *http.Client
	logger    client.Logger
}

// NewGateway 基于客户端配置创建存储网关
func NewGateway(cli *client.Client) Gateway {
	cfg := cli.Config()

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &gateway{
		endpoint:  cfg.GatewayEndpoint,
		publicURL: strings.TrimRight(cfg.GatewayPublicURL, "/"),
		http:      &http.Client{Timeout: timeout},
		logger:    cli.Logger(),
	}
}

// NewGatewayWithEndpoint 用显式端点创建存储网关（测试用）
func NewGatewayWithEndpoint(endpoint, publicURL string, logger client.Logger) Gateway {
	if logger == nil {
		logger = client.NewNopLogger()
	}
	return &gateway{
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

// Resolve 内容标识是自描述的，解析只是前缀拼接
func (g *gateway) Resolve(contentID string) string {
	return g.publicURL + "/" + contentID
}
