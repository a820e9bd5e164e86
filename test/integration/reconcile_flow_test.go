package integration

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"trade-dashboard-go/gateway"
	"trade-dashboard-go/infrastructure/logger"
	"trade-dashboard-go/internal/server"
	"trade-dashboard-go/internal/store"
)

// feed 把一条原始私有流消息走完 解析 → 引擎 的完整路径。
func feed(t *testing.T, st *store.Store, raw string) {
	t.Helper()
	msg, err := gateway.ParseMessage([]byte(raw))
	if err != nil {
		st.OnUnrecognized([]byte(raw))
		return
	}
	switch msg.Kind {
	case gateway.KindOrder:
		st.OnOrderUpdates(msg.Orders)
	case gateway.KindPosition:
		st.OnPositionUpdates(msg.Positions)
	default:
		st.OnUnrecognized([]byte(raw))
	}
}

// TestReconcileFlow 测试从原始消息到完结交易的完整对账流程
func TestReconcileFlow(t *testing.T) {
	// 1. 初始化组件
	log, err := logger.New(logger.Config{
		Level:   "error",
		Outputs: []string{"stdout"},
		Format:  "console",
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer log.Close()

	st := store.New(store.Config{}, log.LogEvent)

	// 2. 仓位快照先到，分类器有了方向兜底信号
	feed(t, st, `{"topic":"position","data":[
		{"symbol":"BTCUSDT","side":"Buy","size":"0","avgPrice":"0","unrealisedPnl":"0"}
	]}`)

	// 3. 部分成交 → 终态成交，开仓 5 @ 100
	feed(t, st, `{"topic":"order","data":[
		{"orderId":"1","symbol":"BTCUSDT","side":"Buy","orderStatus":"PartiallyFilled","cumExecQty":"2","closedPnl":"0"}
	]}`)
	snap := st.Snapshot()
	if len(snap.PendingPartials) != 1 {
		t.Fatalf("pending partials = %d, want 1", len(snap.PendingPartials))
	}

	feed(t, st, `{"topic":"order","data":[
		{"orderId":"1","symbol":"BTCUSDT","side":"Buy","orderStatus":"Filled","cumExecQty":"5","cumExecValue":"500","closedPnl":"0"}
	]}`)
	snap = st.Snapshot()
	if snap.OpeningQty != 5 {
		t.Fatalf("opening qty = %f, want 5", snap.OpeningQty)
	}
	if len(snap.PendingPartials) != 0 {
		t.Fatalf("partial should be merged, %d left", len(snap.PendingPartials))
	}

	// 4. 平仓 5 @ 110，数量配平即完结一笔交易
	feed(t, st, `{"topic":"order","data":[
		{"orderId":"2","symbol":"BTCUSDT","side":"Sell","orderStatus":"Filled","cumExecQty":"5","cumExecValue":"550","closedPnl":"50","reduceOnly":true}
	]}`)
	snap = st.Snapshot()
	if len(snap.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(snap.Trades))
	}
	trade := snap.Trades[0]
	if trade.EntryPrice != 100 || trade.ExitPrice != 110 || trade.RealizedPnL != 50 {
		t.Fatalf("trade = %+v, want entry 100 exit 110 pnl 50", trade)
	}
	if snap.OpeningQty != 0 || snap.ClosingQty != 0 {
		t.Fatalf("group should reset: %f / %f", snap.OpeningQty, snap.ClosingQty)
	}
	if snap.Stats.WinCount != 1 || snap.Stats.WinRate != 100 {
		t.Fatalf("stats = %+v", snap.Stats)
	}

	// 5. 垃圾消息只计数，状态不变
	feed(t, st, `{broken json`)
	snap = st.Snapshot()
	if snap.MalformedTotal != 1 {
		t.Fatalf("malformed = %d, want 1", snap.MalformedTotal)
	}
	if len(snap.Trades) != 1 {
		t.Fatalf("garbage must not mutate the ledger")
	}

	// 6. 展示层从查询服务读到同一份视图
	srv := server.New(":0", st, log)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/snapshot")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	defer resp.Body.Close()
	var served store.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&served); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(served.Trades) != 1 || served.Trades[0].RealizedPnL != 50 {
		t.Fatalf("served snapshot diverges: %+v", served.Trades)
	}
}

// TestReconnectReplayFlow 测试重连后重放历史消息不产生重复交易
func TestReconnectReplayFlow(t *testing.T) {
	st := store.New(store.Config{}, nil)

	frames := []string{
		`{"topic":"order","data":[{"orderId":"1","symbol":"ETHUSDT","side":"Buy","orderStatus":"Filled","cumExecQty":"2","cumExecValue":"6000"}]}`,
		`{"topic":"order","data":[{"orderId":"2","symbol":"ETHUSDT","side":"Sell","orderStatus":"Filled","cumExecQty":"2","cumExecValue":"6100","closedPnl":"100","reduceOnly":true}]}`,
	}
	for _, f := range frames {
		feed(t, st, f)
	}
	// 断线重连，交易所把最近一批事件重推一遍
	for _, f := range frames {
		feed(t, st, f)
	}

	snap := st.Snapshot()
	if len(snap.Trades) != 1 {
		t.Fatalf("replay doubled the ledger: %d trades", len(snap.Trades))
	}
	if snap.DuplicateTotal != 2 {
		t.Fatalf("duplicates = %d, want 2", snap.DuplicateTotal)
	}
	if snap.Stats.TotalPnL != 100 {
		t.Fatalf("total pnl = %f, want 100", snap.Stats.TotalPnL)
	}
}
