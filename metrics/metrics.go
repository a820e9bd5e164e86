// Package metrics provides Prometheus metrics for the trade dashboard
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// 事件管道
	EventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_events_total",
		Help: "处理的私有流事件总数",
	})
	MalformedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_events_malformed_total",
		Help: "无法识别而被跳过的消息总数",
	})
	DuplicateFills = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_fills_duplicate_total",
		Help: "按订单ID去重丢弃的终态成交总数",
	})

	// 成交分类
	OpeningFills = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_fills_opening_total",
		Help: "判定为开仓的成交总数",
	})
	ClosingFills = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_fills_closing_total",
		Help: "判定为平仓的成交总数",
	})

	// 撮合组与挂起部分成交
	OpeningQty = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_group_opening_qty",
		Help: "当前撮合组开仓数量合计",
	})
	ClosingQty = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_group_closing_qty",
		Help: "当前撮合组平仓数量合计",
	})
	PendingPartials = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_pending_partials",
		Help: "在途部分成交挂起数",
	})

	// 完结交易与绩效
	TradesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_trades_total",
		Help: "完结交易总数",
	})
	TotalPnL = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_realized_pnl_total",
		Help: "累计已实现盈亏",
	})
	WinRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_win_rate_percent",
		Help: "胜率（0-100）",
	})

	// 仓位
	OpenPositions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_open_positions",
		Help: "当前持仓品种数",
	})

	// 连接
	WsReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_ws_reconnects_total",
		Help: "私有流重连次数",
	})
	WsDisconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_ws_disconnects_total",
		Help: "私有流断开次数",
	})
)

// UpdateFillMetrics 按分类累加成交计数。
func UpdateFillMetrics(closing bool) {
	if closing {
		ClosingFills.Inc()
	} else {
		OpeningFills.Inc()
	}
}

// UpdateGroupMetrics 更新撮合组与挂起状态。
func UpdateGroupMetrics(openingQty, closingQty float64, pendings int) {
	OpeningQty.Set(openingQty)
	ClosingQty.Set(closingQty)
	PendingPartials.Set(float64(pendings))
}

// UpdateTradeMetrics 完结一笔交易后更新绩效指标。
func UpdateTradeMetrics(totalPnL, winRate float64) {
	TradesTotal.Inc()
	TotalPnL.Set(totalPnL)
	WinRate.Set(winRate)
}

// StartMetricsServer 启动Prometheus指标服务器，阻塞直到监听失败。
func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
