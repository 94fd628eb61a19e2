package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/auraCodesKM/resourcehub-sdk-go/types"
	"github.com/auraCodesKM/resourcehub-sdk-go/utils"
)

// gatewayResponse 网关的结构化响应
//
// 网关内部如何得出内容标识（子进程、pinning 服务）与客户端无关；
// 客户端只消费这份结构化记录，从不解析自由文本。
type gatewayResponse struct {
	Success  bool   `json:"success"`
	IPFSHash string `json:"ipfsHash"`
	URL      string `json:"url"`
	Error    string `json:"error"`
}

// upload 上传实现
//
// **流程**：
// 1. 本地校验：大小上限、PDF 内容
// 2. 构造 multipart 表单（file / title / description / category / price）
// 3. POST 到网关并解析结构化响应
// 4. 校验返回的内容标识
//
// 上传没有回滚：成功即永久可寻址。失败时账本从未被触碰，
// 这一不变式由调用方（控制器的两阶段流程）依赖。
func (g *gateway) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	// 1. 本地校验
	if len(req.Payload) == 0 {
		return nil, types.NewHubError(types.ErrUnsupportedType, "empty payload", nil)
	}
	if len(req.Payload) > MaxPayloadSize {
		return nil, types.NewHubError(types.ErrPayloadTooLarge,
			fmt.Sprintf("payload is %d bytes, limit is %d", len(req.Payload), MaxPayloadSize), nil)
	}
	if !utils.IsPDF(req.Payload) {
		return nil, types.NewHubError(types.ErrUnsupportedType, "payload is not a PDF document", nil)
	}

	// 2. multipart 表单
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	filename := req.Filename
	if filename == "" {
		filename = "document.pdf"
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, types.Wrap(types.ErrGatewayError, err)
	}
	if _, err := part.Write(req.Payload); err != nil {
		return nil, types.Wrap(types.ErrGatewayError, err)
	}

	fields := map[string]string{
		"title":       req.Title,
		"description": req.Description,
		"category":    req.Category,
		"price":       req.Price,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, types.Wrap(types.ErrGatewayError, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, types.Wrap(types.ErrGatewayError, err)
	}

	// 3. 请求网关
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, &body)
	if err != nil {
		return nil, types.Wrap(types.ErrGatewayError, err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	g.logger.Debug("Uploading to storage gateway",
		"endpoint", g.endpoint, "bytes", len(req.Payload), "title", req.Title)

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return nil, types.Wrap(types.ErrGatewayError, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.Wrap(types.ErrGatewayError, err)
	}

	var decoded gatewayResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, types.NewHubError(types.ErrGatewayError,
			fmt.Sprintf("gateway returned non-structured response (HTTP %d)", resp.StatusCode), err)
	}

	if resp.StatusCode != http.StatusOK || !decoded.Success {
		detail := decoded.Error
		if detail == "" {
			detail = fmt.Sprintf("gateway rejected upload (HTTP %d)", resp.StatusCode)
		}
		return nil, types.NewHubError(types.ErrGatewayError, detail, nil)
	}

	// 4. 内容标识校验
	if err := ValidateContentID(decoded.IPFSHash); err != nil {
		return nil, types.NewHubError(types.ErrGatewayError, "invalid content id from gateway: "+err.Error(), err)
	}

	url := decoded.URL
	if url == "" {
		url = g.Resolve(decoded.IPFSHash)
	}

	g.logger.Info("Upload complete", "contentId", decoded.IPFSHash)

	return &UploadResult{
		ContentID: decoded.IPFSHash,
		URL:       url,
	}, nil
}
