package reconcile

import (
	"math"

	"trade-dashboard-go/gateway"
)

// CompletedTrade 一笔配平后的完整交易，入账后不可变。
type CompletedTrade struct {
	Symbol      string  `json:"symbol"`
	Time        int64   `json:"time"`
	Qty         float64 `json:"qty"`
	EntryPrice  float64 `json:"entryPrice"`
	ExitPrice   float64 `json:"exitPrice"`
	RealizedPnL float64 `json:"realizedPnL"`
	Fees        float64 `json:"fees"`
}

// ExecQty 成交数量：优先取累计成交量，缺失时退回委托量。
func ExecQty(o gateway.OrderUpdate) float64 {
	if o.CumExecQty > 0 {
		return o.CumExecQty
	}
	return o.Qty
}

// ExecValue 成交名义价值：优先取累计成交额，缺失时用数量乘均价/委托价估算。
func ExecValue(o gateway.OrderUpdate) float64 {
	if o.CumExecValue != 0 {
		return o.CumExecValue
	}
	price := o.AvgPrice
	if price == 0 {
		price = o.Price
	}
	return ExecQty(o) * price
}

// MatchGroup 累积开仓与平仓成交，数量配平即完结一笔交易。
// 简化：全局只维护一组在途撮合（与源系统一致）。
//
// 不变式：openingQty/closingQty 始终等于各自序列中终态成交的 ExecQty 之和；
// 被合并的部分成交只进展示序列，不贡献数量，其累计字段已含在终态成交里。
type MatchGroup struct {
	epsilon float64

	opening []gateway.OrderUpdate
	closing []gateway.OrderUpdate

	openingQty   float64
	closingQty   float64
	openingValue float64
	closingValue float64
	closedPnl    float64
	fees         float64
}

func NewMatchGroup(epsilon float64) *MatchGroup {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &MatchGroup{epsilon: epsilon}
}

// Absorb 吸收一笔已分类的终态成交；partial 非空时把它并入展示序列。
// 吸收后数量配平则返回完结交易并清空组，否则返回 false。
func (g *MatchGroup) Absorb(o gateway.OrderUpdate, cls Classification, partial *gateway.OrderUpdate) (CompletedTrade, bool) {
	qty := ExecQty(o)
	value := ExecValue(o)

	switch cls {
	case Closing:
		if partial != nil {
			g.closing = append(g.closing, *partial)
		}
		g.closing = append(g.closing, o)
		g.closingQty += qty
		g.closingValue += value
		g.closedPnl += o.ClosedPnl
	default:
		if partial != nil {
			g.opening = append(g.opening, *partial)
		}
		g.opening = append(g.opening, o)
		g.openingQty += qty
		g.openingValue += value
	}
	g.fees += o.CumExecFee

	if !g.balanced() {
		return CompletedTrade{}, false
	}
	trade := g.finalize()
	return trade, true
}

// balanced 开平数量在容差内相等且均为正；空组（0==0）永不配平。
func (g *MatchGroup) balanced() bool {
	if g.openingQty <= 0 || g.closingQty <= 0 {
		return false
	}
	return math.Abs(g.openingQty-g.closingQty) <= g.epsilon
}

func (g *MatchGroup) finalize() CompletedTrade {
	trade := CompletedTrade{
		Qty:         g.openingQty,
		RealizedPnL: g.closedPnl,
		Fees:        g.fees,
	}
	if len(g.opening) > 0 {
		trade.Symbol = g.opening[0].Symbol
		trade.Time = g.opening[0].CreatedTime
	} else if len(g.closing) > 0 {
		trade.Symbol = g.closing[0].Symbol
		trade.Time = g.closing[0].CreatedTime
	}
	if g.openingQty > 0 {
		trade.EntryPrice = g.openingValue / g.openingQty
	}
	if g.closingQty > 0 {
		trade.ExitPrice = g.closingValue / g.closingQty
	}

	g.opening = nil
	g.closing = nil
	g.openingQty = 0
	g.closingQty = 0
	g.openingValue = 0
	g.closingValue = 0
	g.closedPnl = 0
	g.fees = 0
	return trade
}

// OpeningFills 在途开仓成交（展示用副本）。
func (g *MatchGroup) OpeningFills() []gateway.OrderUpdate {
	return append([]gateway.OrderUpdate(nil), g.opening...)
}

// ClosingFills 在途平仓成交（展示用副本）。
func (g *MatchGroup) ClosingFills() []gateway.OrderUpdate {
	return append([]gateway.OrderUpdate(nil), g.closing...)
}

// Quantities 当前开/平数量合计。
func (g *MatchGroup) Quantities() (opening, closing float64) {
	return g.openingQty, g.closingQty
}
