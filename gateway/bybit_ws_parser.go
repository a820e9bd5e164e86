package gateway

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Envelope 对应 bybit v5 私有流的外层消息。
type Envelope struct {
	Topic   string          `json:"topic"`
	Op      string          `json:"op"`
	Success *bool           `json:"success"`
	RetMsg  string          `json:"ret_msg"`
	Data    json.RawMessage `json:"data"`
}

// MessageKind 标识一条消息解析后的类别。
type MessageKind int

const (
	KindUnknown MessageKind = iota
	KindOrder
	KindPosition
	KindAuth
	KindSubscribe
	KindPing
	KindPong
)

// Message 是 ParseMessage 的归一化结果。
type Message struct {
	Kind      MessageKind
	Success   bool
	RetMsg    string
	Orders    []OrderUpdate
	Positions []PositionUpdate
}

// OrderUpdate 订单推送的归一化视图；数值字段缺失或非法时为 0。
type OrderUpdate struct {
	OrderID      string  `json:"orderId"`
	Symbol       string  `json:"symbol"`
	Side         string  `json:"side"`
	Status       string  `json:"orderStatus"`
	Qty          float64 `json:"qty"`
	CumExecQty   float64 `json:"cumExecQty"`
	CumExecValue float64 `json:"cumExecValue"`
	AvgPrice     float64 `json:"avgPrice"`
	Price        float64 `json:"price"`
	CumExecFee   float64 `json:"cumExecFee"`
	ClosedPnl    float64 `json:"closedPnl"`
	ReduceOnly   bool    `json:"reduceOnly"`
	CreatedTime  int64   `json:"createdTime"`
	UpdatedTime  int64   `json:"updatedTime"`
}

// PositionUpdate 仓位推送的归一化视图。
type PositionUpdate struct {
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	Size          float64 `json:"size"`
	AvgPrice      float64 `json:"avgPrice"`
	MarkPrice     float64 `json:"markPrice"`
	UnrealisedPnl float64 `json:"unrealisedPnl"`
}

// flexFloat 接受字符串或数字形式的 JSON 数值；解析失败降级为 0。
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*f = 0
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexInt 同 flexFloat，用于毫秒时间戳。
type flexInt int64

func (i *flexInt) UnmarshalJSON(raw []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(raw); err != nil {
		*i = 0
		return nil
	}
	*i = flexInt(f)
	return nil
}

type rawOrder struct {
	OrderID      string    `json:"orderId"`
	Symbol       string    `json:"symbol"`
	Side         string    `json:"side"`
	OrderStatus  string    `json:"orderStatus"`
	Status       string    `json:"status"`
	Qty          flexFloat `json:"qty"`
	CumExecQty   flexFloat `json:"cumExecQty"`
	CumExecValue flexFloat `json:"cumExecValue"`
	AvgPrice     flexFloat `json:"avgPrice"`
	Price        flexFloat `json:"price"`
	CumExecFee   flexFloat `json:"cumExecFee"`
	ClosedPnl    flexFloat `json:"closedPnl"`
	ReduceOnly   bool      `json:"reduceOnly"`
	CreatedTime  flexInt   `json:"createdTime"`
	UpdatedTime  flexInt   `json:"updatedTime"`
}

func (r rawOrder) normalize() OrderUpdate {
	status := r.OrderStatus
	if status == "" {
		status = r.Status
	}
	return OrderUpdate{
		OrderID:      r.OrderID,
		Symbol:       r.Symbol,
		Side:         r.Side,
		Status:       status,
		Qty:          float64(r.Qty),
		CumExecQty:   float64(r.CumExecQty),
		CumExecValue: float64(r.CumExecValue),
		AvgPrice:     float64(r.AvgPrice),
		Price:        float64(r.Price),
		CumExecFee:   float64(r.CumExecFee),
		ClosedPnl:    float64(r.ClosedPnl),
		ReduceOnly:   r.ReduceOnly,
		CreatedTime:  int64(r.CreatedTime),
		UpdatedTime:  int64(r.UpdatedTime),
	}
}

type rawPosition struct {
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side"`
	Size          flexFloat `json:"size"`
	AvgPrice      flexFloat `json:"avgPrice"`
	EntryPrice    flexFloat `json:"entryPrice"`
	MarkPrice     flexFloat `json:"markPrice"`
	UnrealisedPnl flexFloat `json:"unrealisedPnl"`
}

func (r rawPosition) normalize() PositionUpdate {
	avg := float64(r.AvgPrice)
	if avg == 0 {
		avg = float64(r.EntryPrice)
	}
	return PositionUpdate{
		Symbol:        r.Symbol,
		Side:          r.Side,
		Size:          float64(r.Size),
		AvgPrice:      avg,
		MarkPrice:     float64(r.MarkPrice),
		UnrealisedPnl: float64(r.UnrealisedPnl),
	}
}

// ParseMessage 解析一条私有流推送并归一化，纯函数。
// 无法识别的消息返回 KindUnknown，不报错。
func ParseMessage(raw []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Message{Kind: KindUnknown}, err
	}

	msg := Message{Kind: KindUnknown, RetMsg: env.RetMsg}
	if env.Success != nil {
		msg.Success = *env.Success
	}

	switch env.Op {
	case "auth":
		msg.Kind = KindAuth
		return msg, nil
	case "subscribe":
		msg.Kind = KindSubscribe
		return msg, nil
	case "ping":
		msg.Kind = KindPing
		return msg, nil
	case "pong":
		msg.Kind = KindPong
		return msg, nil
	}

	switch env.Topic {
	case "order":
		var raws []rawOrder
		if err := json.Unmarshal(env.Data, &raws); err != nil {
			return Message{Kind: KindUnknown}, err
		}
		msg.Kind = KindOrder
		msg.Orders = make([]OrderUpdate, 0, len(raws))
		for _, r := range raws {
			msg.Orders = append(msg.Orders, r.normalize())
		}
		return msg, nil
	case "position":
		var raws []rawPosition
		if err := json.Unmarshal(env.Data, &raws); err != nil {
			return Message{Kind: KindUnknown}, err
		}
		msg.Kind = KindPosition
		msg.Positions = make([]PositionUpdate, 0, len(raws))
		for _, r := range raws {
			msg.Positions = append(msg.Positions, r.normalize())
		}
		return msg, nil
	}

	return msg, nil
}
