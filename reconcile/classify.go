package reconcile

import (
	"math"

	"github.com/moznion/go-optional"

	"trade-dashboard-go/gateway"
	"trade-dashboard-go/inventory"
)

// DefaultEpsilon 数量/盈亏比较用的绝对容差，吸收交易所侧的舍入。
const DefaultEpsilon = 1e-8

// Classification 成交的归属：开仓或平仓。
type Classification int

const (
	Opening Classification = iota
	Closing
)

func (c Classification) String() string {
	if c == Closing {
		return "closing"
	}
	return "opening"
}

// Classifier 判定一笔终态成交是开仓还是平仓。
type Classifier struct {
	Epsilon float64
}

func NewClassifier(epsilon float64) Classifier {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return Classifier{Epsilon: epsilon}
}

// Classify 按优先级判定，先到先得：
//  1. reduceOnly 只能减仓，必为平仓；
//  2. closedPnl 非零说明已实现盈亏，必为平仓；
//  3. 有持仓快照时，方向相反为平仓，相同为开仓；
//  4. 无任何信号时按开仓处理。
//
// 交易所给出的 reduceOnly/closedPnl 必须压过持仓方向启发式：
// 仓位流可能滞后于订单流，方向比较可能基于过期快照。
func (c Classifier) Classify(o gateway.OrderUpdate, pos optional.Option[inventory.Position]) Classification {
	if o.ReduceOnly {
		return Closing
	}
	if math.Abs(o.ClosedPnl) > c.Epsilon {
		return Closing
	}
	if pos.IsSome() {
		p := pos.Unwrap()
		if isOppositeSide(p.Side, o.Side) {
			return Closing
		}
		return Opening
	}
	return Opening
}

// isOppositeSide 多头持仓遇到卖单、空头持仓遇到买单即为反向。
func isOppositeSide(positionSide, orderSide string) bool {
	switch positionSide {
	case "Buy":
		return orderSide == "Sell"
	case "Sell":
		return orderSide == "Buy"
	}
	return false
}
