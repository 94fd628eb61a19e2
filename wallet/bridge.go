package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/gorilla/websocket"
)

// BridgeProvider 通过 WebSocket 连接到钱包桥的 Provider 实现
//
// 钱包桥是浏览器扩展/桌面钱包暴露的本地端点，请求走 JSON-RPC，
// 事件（accountsChanged / chainChanged / connect / disconnect）
// 作为无 id 的通知推送。
type BridgeProvider struct {
	endpoint string
	conn     *websocket.Conn

	closed int32
	nextID atomic.Uint64

	muReq    sync.Mutex
	requests map[uint64]chan *bridgeResponse

	muSub  sync.RWMutex
	nextCB int
	subs   map[int]func(Event)

	muWrite sync.Mutex
}

// bridgeRequest 桥接请求
type bridgeRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      uint64      `json:"id"`
}

// bridgeResponse 桥接响应 / 通知
type bridgeResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *bridgeError    `json:"error,omitempty"`
	ID      *uint64         `json:"id,omitempty"`

	// 通知字段（无 id 时有效）
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// bridgeError 桥接错误
type bridgeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewBridgeProvider 连接钱包桥
func NewBridgeProvider(endpoint string) (*BridgeProvider, error) {
	// 将 http:// 或 https:// 转换为 ws:// 或 wss://
	if strings.HasPrefix(endpoint, "http://") {
		endpoint = "ws://" + strings.TrimPrefix(endpoint, "http://")
	} else if strings.HasPrefix(endpoint, "https://") {
		endpoint = "wss://" + strings.TrimPrefix(endpoint, "https://")
	} else if !strings.HasPrefix(endpoint, "ws://") && !strings.HasPrefix(endpoint, "wss://") {
		endpoint = "ws://" + endpoint
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial wallet bridge: %w", err)
	}

	p := &BridgeProvider{
		endpoint: endpoint,
		conn:     conn,
		requests: make(map[uint64]chan *bridgeResponse),
		subs:     make(map[int]func(Event)),
	}

	go p.readLoop()

	return p, nil
}

// readLoop 消息读取循环（响应派发 + 事件通知）
func (p *BridgeProvider) readLoop() {
	defer func() {
		atomic.StoreInt32(&p.closed, 1)
		p.muReq.Lock()
		for _, ch := range p.requests {
			close(ch)
		}
		p.requests = make(map[uint64]chan *bridgeResponse)
		p.muReq.Unlock()

		p.dispatch(Event{Type: EventDisconnect})
	}()

	for {
		if atomic.LoadInt32(&p.closed) == 1 {
			return
		}

		var resp bridgeResponse
		if err := p.conn.ReadJSON(&resp); err != nil {
			return
		}

		if resp.ID != nil {
			// 请求的响应
			p.muReq.Lock()
			ch, ok := p.requests[*resp.ID]
			if ok {
				delete(p.requests, *resp.ID)
			}
			p.muReq.Unlock()

			if ok {
				ch <- &resp
				close(ch)
			}
			continue
		}

		// 无 id：事件通知
		p.handleNotification(&resp)
	}
}

// handleNotification 解析通知并派发事件
func (p *BridgeProvider) handleNotification(resp *bridgeResponse) {
	switch resp.Method {
	case "accountsChanged":
		var hexAccounts []string
		if err := json.Unmarshal(resp.Params, &hexAccounts); err != nil {
			return
		}
		accounts := make([]common.Address, 0, len(hexAccounts))
		for _, h := range hexAccounts {
			accounts = append(accounts, common.HexToAddress(h))
		}
		p.dispatch(Event{Type: EventAccountsChanged, Accounts: accounts})

	case "chainChanged":
		var params []string
		if err := json.Unmarshal(resp.Params, &params); err != nil || len(params) == 0 {
			return
		}
		chainID, err := hexutil.DecodeUint64(params[0])
		if err != nil {
			return
		}
		p.dispatch(Event{Type: EventChainChanged, ChainID: chainID})

	case "connect":
		p.dispatch(Event{Type: EventConnect})

	case "disconnect":
		p.dispatch(Event{Type: EventDisconnect})
	}
}

// dispatch 将事件派发给全部订阅者
func (p *BridgeProvider) dispatch(ev Event) {
	p.muSub.RLock()
	subs := make([]func(Event), 0, len(p.subs))
	for _, cb := range p.subs {
		subs = append(subs, cb)
	}
	p.muSub.RUnlock()

	for _, cb := range subs {
		cb(ev)
	}
}

// call 发送请求并等待响应
func (p *BridgeProvider) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	if atomic.LoadInt32(&p.closed) == 1 {
		return nil, fmt.Errorf("wallet bridge connection closed")
	}

	id := p.nextID.Add(1)
	ch := make(chan *bridgeResponse, 1)

	p.muReq.Lock()
	p.requests[id] = ch
	p.muReq.Unlock()

	req := &bridgeRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      id,
	}

	p.muWrite.Lock()
	err := p.conn.WriteJSON(req)
	p.muWrite.Unlock()
	if err != nil {
		p.muReq.Lock()
		delete(p.requests, id)
		p.muReq.Unlock()
		return nil, fmt.Errorf("write bridge request: %w", err)
	}

	select {
	case <-ctx.Done():
		p.muReq.Lock()
		delete(p.requests, id)
		p.muReq.Unlock()
		return nil, ctx.Err()
	case resp, ok := <-ch:
		if !ok || resp == nil {
			return nil, fmt.Errorf("wallet bridge connection closed")
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("bridge error [%d]: %s", resp.Error.Code, resp.Error.Message)
		}
		return resp.Result, nil
	}
}

// RequestAccounts 请求账户授权（桥侧弹出用户确认）
func (p *BridgeProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return p.accountsCall(ctx, "eth_requestAccounts")
}

// Accounts 返回已授权账户（不弹出确认）
func (p *BridgeProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	return p.accountsCall(ctx, "eth_accounts")
}

func (p *BridgeProvider) accountsCall(ctx context.Context, method string) ([]common.Address, error) {
	result, err := p.call(ctx, method, []interface{}{})
	if err != nil {
		return nil, err
	}

	var hexAccounts []string
	if err := json.Unmarshal(result, &hexAccounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	accounts := make([]common.Address, 0, len(hexAccounts))
	for _, h := range hexAccounts {
		accounts = append(accounts, common.HexToAddress(h))
	}
	return accounts, nil
}

// ChainID 查询桥当前所在链
func (p *BridgeProvider) ChainID(ctx context.Context) (uint64, error) {
	result, err := p.call(ctx, "eth_chainId", []interface{}{})
	if err != nil {
		return 0, err
	}

	var hexID string
	if err := json.Unmarshal(result, &hexID); err != nil {
		return 0, fmt.Errorf("decode chain id: %w", err)
	}
	return hexutil.DecodeUint64(hexID)
}

// SignTx 请求桥签名交易（桥侧弹出用户确认）
func (p *BridgeProvider) SignTx(ctx context.Context, account common.Address, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	rawTx, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}

	params := []interface{}{map[string]string{
		"from":    account.Hex(),
		"chainId": hexutil.EncodeBig(chainID),
		"rawTx":   hexutil.Encode(rawTx),
	}}

	result, err := p.call(ctx, "eth_signTransaction", params)
	if err != nil {
		return nil, err
	}

	var signedHex string
	if err := json.Unmarshal(result, &signedHex); err != nil {
		return nil, fmt.Errorf("decode signed transaction: %w", err)
	}

	signedRaw, err := hexutil.Decode(signedHex)
	if err != nil {
		return nil, fmt.Errorf("decode signed transaction hex: %w", err)
	}

	var signed ethtypes.Transaction
	if err := signed.UnmarshalBinary(signedRaw); err != nil {
		return nil, fmt.Errorf("unmarshal signed transaction: %w", err)
	}
	return &signed, nil
}

// Subscribe 订阅桥事件
func (p *BridgeProvider) Subscribe(cb func(Event)) Unsubscribe {
	p.muSub.Lock()
	defer p.muSub.Unlock()

	id := p.nextCB
	p.nextCB++
	p.subs[id] = cb

	return func() {
		p.muSub.Lock()
		defer p.muSub.Unlock()
		delete(p.subs, id)
	}
}

// Close 关闭桥连接
func (p *BridgeProvider) Close() error {
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		return nil
	}
	return p.conn.Close()
}
