package reconcile

import (
	"math"
	"testing"

	"trade-dashboard-go/gateway"
)

func TestExecQtyFallback(t *testing.T) {
	if got := ExecQty(gateway.OrderUpdate{CumExecQty: 0.5, Qty: 1}); got != 0.5 {
		t.Fatalf("ExecQty = %f, want cum qty", got)
	}
	if got := ExecQty(gateway.OrderUpdate{Qty: 1}); got != 1 {
		t.Fatalf("ExecQty fallback = %f, want order qty", got)
	}
}

func TestExecValueFallback(t *testing.T) {
	if got := ExecValue(gateway.OrderUpdate{CumExecValue: 107}); got != 107 {
		t.Fatalf("ExecValue = %f, want cum value", got)
	}
	// 没有累计成交额时，用均价估算
	if got := ExecValue(gateway.OrderUpdate{CumExecQty: 0.5, AvgPrice: 100}); got != 50 {
		t.Fatalf("ExecValue avg fallback = %f, want 50", got)
	}
	// 均价也缺失时退回委托价
	if got := ExecValue(gateway.OrderUpdate{Qty: 2, Price: 30}); got != 60 {
		t.Fatalf("ExecValue price fallback = %f, want 60", got)
	}
}

func TestMatchGroupWeightedAverages(t *testing.T) {
	g := NewMatchGroup(0)

	// 两笔开仓：0.3 @ 100 + 0.7 @ 110
	if _, done := g.Absorb(gateway.OrderUpdate{
		OrderID: "o1", Symbol: "BTCUSDT", Side: "Buy", Status: StatusFilled,
		CumExecQty: 0.3, CumExecValue: 30, CumExecFee: 0.01, CreatedTime: 1000,
	}, Opening, nil); done {
		t.Fatalf("group must not finalize before closings arrive")
	}
	if _, done := g.Absorb(gateway.OrderUpdate{
		OrderID: "o2", Symbol: "BTCUSDT", Side: "Buy", Status: StatusFilled,
		CumExecQty: 0.7, CumExecValue: 77, CumExecFee: 0.02,
	}, Opening, nil); done {
		t.Fatalf("still unbalanced")
	}

	// 一笔平仓 1.0 @ 120 配平
	trade, done := g.Absorb(gateway.OrderUpdate{
		OrderID: "c1", Symbol: "BTCUSDT", Side: "Sell", Status: StatusFilled,
		CumExecQty: 1.0, CumExecValue: 120, CumExecFee: 0.03, ClosedPnl: 13,
	}, Closing, nil)
	if !done {
		t.Fatalf("balanced group should finalize")
	}

	if trade.Symbol != "BTCUSDT" || trade.Time != 1000 {
		t.Errorf("identity fields: %+v", trade)
	}
	if math.Abs(trade.Qty-1.0) > 1e-9 {
		t.Errorf("qty = %f, want 1", trade.Qty)
	}
	if math.Abs(trade.EntryPrice-107) > 1e-9 {
		t.Errorf("entry = %f, want 107", trade.EntryPrice)
	}
	if math.Abs(trade.ExitPrice-120) > 1e-9 {
		t.Errorf("exit = %f, want 120", trade.ExitPrice)
	}
	if math.Abs(trade.RealizedPnL-13) > 1e-9 {
		t.Errorf("pnl = %f, want 13", trade.RealizedPnL)
	}
	if math.Abs(trade.Fees-0.06) > 1e-9 {
		t.Errorf("fees = %f, want 0.06", trade.Fees)
	}

	// 完结后组清零，可继续撮合下一笔
	openQty, closeQty := g.Quantities()
	if openQty != 0 || closeQty != 0 {
		t.Errorf("group not reset: %f / %f", openQty, closeQty)
	}
	if len(g.OpeningFills()) != 0 || len(g.ClosingFills()) != 0 {
		t.Errorf("fill lists not reset")
	}
}

func TestMatchGroupPartialMergedForDisplayOnly(t *testing.T) {
	g := NewMatchGroup(0)

	partial := gateway.OrderUpdate{
		OrderID: "o1", Symbol: "BTCUSDT", Side: "Buy", Status: StatusPartiallyFilled,
		CumExecQty: 0.4, CumExecValue: 40,
	}
	terminal := gateway.OrderUpdate{
		OrderID: "o1", Symbol: "BTCUSDT", Side: "Buy", Status: StatusFilled,
		CumExecQty: 1.0, CumExecValue: 100,
	}
	g.Absorb(terminal, Opening, &partial)

	// 数量只取终态成交的累计字段，部分成交不再叠加
	openQty, _ := g.Quantities()
	if math.Abs(openQty-1.0) > 1e-9 {
		t.Fatalf("opening qty = %f, want 1 (partial must not double count)", openQty)
	}
	// 部分成交进展示序列
	if fills := g.OpeningFills(); len(fills) != 2 || fills[0].Status != StatusPartiallyFilled {
		t.Fatalf("display fills = %+v", fills)
	}
}

func TestMatchGroupEpsilonBoundary(t *testing.T) {
	g := NewMatchGroup(1e-8)

	g.Absorb(gateway.OrderUpdate{OrderID: "o1", Symbol: "X", CumExecQty: 1.0, CumExecValue: 100}, Opening, nil)

	// 差一个略大于容差的量不配平
	if _, done := g.Absorb(gateway.OrderUpdate{OrderID: "c1", Symbol: "X", CumExecQty: 1.0 - 2e-8, CumExecValue: 100}, Closing, nil); done {
		t.Fatalf("beyond-epsilon difference must not balance")
	}
	// 补足到容差内即配平
	if _, done := g.Absorb(gateway.OrderUpdate{OrderID: "c2", Symbol: "X", CumExecQty: 2e-8, CumExecValue: 0}, Closing, nil); !done {
		t.Fatalf("within-epsilon difference should balance")
	}
}

func TestMatchGroupEmptyNeverBalances(t *testing.T) {
	g := NewMatchGroup(0)
	// 纯平仓流（0 == 0 的另一侧）不得完结
	if _, done := g.Absorb(gateway.OrderUpdate{OrderID: "c1", Symbol: "X", CumExecQty: 0, CumExecValue: 0}, Closing, nil); done {
		t.Fatalf("zero-qty absorb must not finalize")
	}
}
