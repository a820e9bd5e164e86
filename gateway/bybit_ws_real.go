package gateway

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"trade-dashboard-go/metrics"
)

// BybitPrivateWSEndpoint v5 私有流默认地址。
const BybitPrivateWSEndpoint = "wss://stream.bybit.com/v5/private"

// BybitWSReal 连接 bybit v5 私有流：认证、订阅 order/position、读循环。
// 仅做传输与解析，业务处理全部交给 WSHandler。
type BybitWSReal struct {
	Endpoint  string
	APIKey    string
	APISecret string
	Dialer    *websocket.Dialer

	// 重连参数，零值时取默认（5 次 / 3 秒）。
	MaxReconnects  int
	ReconnectDelay time.Duration

	ReadTimeout time.Duration

	// 连接状态回调（告警接入），可为 nil。
	OnDisconnect func(attempt int, err error)
	OnGiveUp     func(attempts int)

	// 连接状态事件出口（结构化日志），可为 nil。
	Events func(event string, fields map[string]interface{})
}

func (b *BybitWSReal) emit(state string, fields map[string]interface{}) {
	if b.Events == nil {
		return
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["state"] = state
	b.Events("ws_state", fields)
}

func NewBybitWSReal() *BybitWSReal {
	return &BybitWSReal{
		Endpoint:       BybitPrivateWSEndpoint,
		Dialer:         websocket.DefaultDialer,
		MaxReconnects:  5,
		ReconnectDelay: 3 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

type wsRequest struct {
	Op   string        `json:"op"`
	Args []interface{} `json:"args,omitempty"`
}

// Run 连接并循环读取，断线后按配置重连；达到重连上限后返回最后一次错误。
func (b *BybitWSReal) Run(handler WSHandler) error {
	if handler == nil {
		return fmt.Errorf("handler required")
	}
	maxAttempts := b.MaxReconnects
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	delay := b.ReconnectDelay
	if delay <= 0 {
		delay = 3 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			metrics.WsReconnects.Inc()
			time.Sleep(delay)
		}
		err := b.runOnce(handler, &attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		metrics.WsDisconnects.Inc()
		b.emit("disconnected", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
		if b.OnDisconnect != nil {
			b.OnDisconnect(attempt, err)
		}
	}
	b.emit("gave_up", map[string]interface{}{"attempts": maxAttempts})
	if b.OnGiveUp != nil {
		b.OnGiveUp(maxAttempts)
	}
	return fmt.Errorf("ws gave up after %d attempts: %w", maxAttempts, lastErr)
}

// runOnce 单次连接生命周期；认证成功后把 attempt 归零，使重连计数只针对连续失败。
func (b *BybitWSReal) runOnce(handler WSHandler, attempt *int) error {
	dialer := b.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.Dial(b.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	expires := time.Now().Add(10 * time.Second).UnixMilli()
	auth := wsRequest{
		Op:   "auth",
		Args: []interface{}{b.APIKey, expires, SignWS(b.APISecret, expires)},
	}
	if err := conn.WriteJSON(auth); err != nil {
		return fmt.Errorf("send auth: %w", err)
	}

	for {
		if b.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(b.ReadTimeout))
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		msg, perr := ParseMessage(raw)
		if perr != nil {
			handler.OnUnrecognized(raw)
			continue
		}
		switch msg.Kind {
		case KindAuth:
			if !msg.Success {
				return fmt.Errorf("auth rejected: %s", msg.RetMsg)
			}
			*attempt = 0
			b.emit("connected", nil)
			sub := wsRequest{Op: "subscribe", Args: []interface{}{"order", "position"}}
			if err := conn.WriteJSON(sub); err != nil {
				return fmt.Errorf("send subscribe: %w", err)
			}
		case KindSubscribe:
			if !msg.Success {
				return fmt.Errorf("subscribe rejected: %s", msg.RetMsg)
			}
		case KindPing:
			if err := conn.WriteJSON(wsRequest{Op: "pong"}); err != nil {
				return fmt.Errorf("send pong: %w", err)
			}
		case KindPong:
			// 心跳应答，无需处理
		case KindOrder:
			handler.OnOrderUpdates(msg.Orders)
		case KindPosition:
			handler.OnPositionUpdates(msg.Positions)
		default:
			handler.OnUnrecognized(raw)
		}
	}
}
