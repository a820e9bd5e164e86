package gateway

import "testing"

func TestParseOrderMessage(t *testing.T) {
	raw := []byte(`{
		"topic": "order",
		"data": [{
			"orderId": "abc-1",
			"symbol": "BTCUSDT",
			"side": "Buy",
			"orderStatus": "Filled",
			"qty": "1.5",
			"cumExecQty": "1.5",
			"cumExecValue": "96000.5",
			"avgPrice": "64000.33",
			"cumExecFee": "0.05",
			"closedPnl": "0",
			"reduceOnly": false,
			"createdTime": "1714000000000"
		}]
	}`)

	msg, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindOrder || len(msg.Orders) != 1 {
		t.Fatalf("kind=%v orders=%d", msg.Kind, len(msg.Orders))
	}
	o := msg.Orders[0]
	if o.OrderID != "abc-1" || o.Status != "Filled" {
		t.Fatalf("identity: %+v", o)
	}
	if o.CumExecQty != 1.5 || o.CumExecValue != 96000.5 || o.AvgPrice != 64000.33 {
		t.Fatalf("numeric coercion: %+v", o)
	}
	if o.CreatedTime != 1714000000000 {
		t.Fatalf("createdTime = %d", o.CreatedTime)
	}
}

func TestParseNumericVariants(t *testing.T) {
	// 数字形式、空串、垃圾值都不报错，垃圾值归零
	raw := []byte(`{
		"topic": "order",
		"data": [{
			"orderId": "abc-2",
			"orderStatus": "PartiallyFilled",
			"qty": 2.5,
			"cumExecQty": "",
			"avgPrice": "not-a-number",
			"closedPnl": null
		}]
	}`)

	msg, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o := msg.Orders[0]
	if o.Qty != 2.5 {
		t.Errorf("qty = %f", o.Qty)
	}
	if o.CumExecQty != 0 || o.AvgPrice != 0 || o.ClosedPnl != 0 {
		t.Errorf("bad values should coerce to zero: %+v", o)
	}
}

func TestParsePositionMessage(t *testing.T) {
	raw := []byte(`{
		"topic": "position",
		"data": [{
			"symbol": "ETHUSDT",
			"side": "Sell",
			"size": "2",
			"entryPrice": "3000.5",
			"markPrice": "2990",
			"unrealisedPnl": "21"
		}]
	}`)

	msg, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindPosition || len(msg.Positions) != 1 {
		t.Fatalf("kind=%v positions=%d", msg.Kind, len(msg.Positions))
	}
	p := msg.Positions[0]
	// avgPrice 缺失时回退 entryPrice
	if p.AvgPrice != 3000.5 {
		t.Errorf("avgPrice fallback = %f", p.AvgPrice)
	}
	if p.Size != 2 || p.UnrealisedPnl != 21 {
		t.Errorf("numeric fields: %+v", p)
	}
}

func TestParseControlMessages(t *testing.T) {
	tests := []struct {
		raw  string
		kind MessageKind
	}{
		{`{"op":"auth","success":true}`, KindAuth},
		{`{"op":"subscribe","success":true}`, KindSubscribe},
		{`{"op":"ping"}`, KindPing},
		{`{"op":"pong"}`, KindPong},
		{`{"topic":"wallet","data":[]}`, KindUnknown},
	}
	for _, tt := range tests {
		msg, err := ParseMessage([]byte(tt.raw))
		if err != nil {
			t.Fatalf("%s: %v", tt.raw, err)
		}
		if msg.Kind != tt.kind {
			t.Errorf("%s: kind = %v, want %v", tt.raw, msg.Kind, tt.kind)
		}
	}

	msg, _ := ParseMessage([]byte(`{"op":"auth","success":false,"ret_msg":"bad sign"}`))
	if msg.Success || msg.RetMsg != "bad sign" {
		t.Errorf("auth failure fields: %+v", msg)
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := ParseMessage([]byte(`{broken`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
	msg, err := ParseMessage([]byte(`{"topic":"order","data":"not-an-array"}`))
	if err == nil || msg.Kind != KindUnknown {
		t.Fatalf("bad data payload: kind=%v err=%v", msg.Kind, err)
	}
}
