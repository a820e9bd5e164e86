package alert

import (
	"fmt"

	"trade-dashboard-go/reconcile"
)

// TradeWatcher 盯完结交易，单笔亏损超过阈值时告警。
type TradeWatcher struct {
	manager *Manager
	maxLoss float64 // 正数，亏损绝对值阈值；<=0 表示不告警
}

func NewTradeWatcher(manager *Manager, maxLoss float64) *TradeWatcher {
	return &TradeWatcher{manager: manager, maxLoss: maxLoss}
}

// OnTrade 按 store.TradeListener 的签名接入引擎。
func (w *TradeWatcher) OnTrade(trade reconcile.CompletedTrade) {
	if w.maxLoss <= 0 || trade.RealizedPnL >= -w.maxLoss {
		return
	}
	_ = w.manager.SendWarning(
		fmt.Sprintf("trade loss %.4f exceeds limit %.4f", trade.RealizedPnL, w.maxLoss),
		map[string]interface{}{
			"symbol":       trade.Symbol,
			"qty":          trade.Qty,
			"entry_price":  trade.EntryPrice,
			"exit_price":   trade.ExitPrice,
			"realized_pnl": trade.RealizedPnL,
		})
}

// ConnWatcher 盯行情连接状态，断线与重连耗尽分级告警。
type ConnWatcher struct {
	manager *Manager
}

func NewConnWatcher(manager *Manager) *ConnWatcher {
	return &ConnWatcher{manager: manager}
}

// OnDisconnect 单次断线，WARNING 级，同 key 受限流保护。
func (w *ConnWatcher) OnDisconnect(attempt int, err error) {
	fields := map[string]interface{}{"attempt": attempt}
	if err != nil {
		fields["error"] = err.Error()
	}
	_ = w.manager.SendWarning("websocket disconnected", fields)
}

// OnGiveUp 重连次数耗尽，CRITICAL 级。
func (w *ConnWatcher) OnGiveUp(attempts int) {
	_ = w.manager.SendCritical("websocket reconnect attempts exhausted",
		map[string]interface{}{"attempts": attempts})
}
