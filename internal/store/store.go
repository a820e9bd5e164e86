package store

import (
	"sync"
	"time"

	"trade-dashboard-go/gateway"
	"trade-dashboard-go/inventory"
	"trade-dashboard-go/metrics"
	"trade-dashboard-go/posttrade"
	"trade-dashboard-go/reconcile"
)

// EventSink 接收结构化事件日志，nil 时静默。
type EventSink func(string, map[string]interface{})

// TradeListener 完结一笔交易后的回调（告警等），在锁外调用。
type TradeListener func(reconcile.CompletedTrade)

type Config struct {
	Epsilon      float64 // 数量配平容差，<=0 取默认 1e-8
	SeenCapacity int     // 终态去重集合容量
}

// Store 维护对账引擎的全部状态（持仓、挂起部分成交、撮合组、交易台账、绩效）。
// 单个事件在锁内处理到底：去重 → 分类 → 聚合 → 撮合 → 绩效，
// 两个事件不会交错读写共享状态。
type Store struct {
	mu sync.Mutex

	classifier reconcile.Classifier
	positions  *inventory.Tracker
	pending    *reconcile.PendingBook
	group      *reconcile.MatchGroup
	lifecycle  *reconcile.Lifecycle
	stats      *posttrade.Accumulator
	activity   *activityTracker

	trades []reconcile.CompletedTrade

	eventsTotal    int64
	malformedTotal int64
	duplicateTotal int64
	lastUpdate     time.Time

	sink    EventSink
	pub     *Publisher
	onTrade TradeListener
}

// Snapshot 推给展示层的只读对账视图；展示层从不反向修改引擎状态。
type Snapshot struct {
	Positions       []inventory.Position       `json:"positions"`
	OpeningFills    []gateway.OrderUpdate      `json:"openingFills"`
	ClosingFills    []gateway.OrderUpdate      `json:"closingFills"`
	PendingPartials []gateway.OrderUpdate      `json:"pendingPartials"`
	OpeningQty      float64                    `json:"openingQty"`
	ClosingQty      float64                    `json:"closingQty"`
	Trades          []reconcile.CompletedTrade `json:"trades"`
	Stats           posttrade.Stats            `json:"stats"`
	EventsTotal     int64                      `json:"eventsTotal"`
	MalformedTotal  int64                      `json:"malformedTotal"`
	DuplicateTotal  int64                      `json:"duplicateTotal"`
	EventRate       float64                    `json:"eventRatePerMin"`
	LastUpdate      time.Time                  `json:"lastUpdate"`
}

func New(cfg Config, sink EventSink) *Store {
	return &Store{
		classifier: reconcile.NewClassifier(cfg.Epsilon),
		positions:  inventory.NewTracker(),
		pending:    reconcile.NewPendingBook(cfg.SeenCapacity),
		group:      reconcile.NewMatchGroup(cfg.Epsilon),
		lifecycle:  reconcile.NewLifecycle(),
		stats:      posttrade.NewAccumulator(),
		activity:   newActivityTracker(512, 5*time.Minute),
		sink:       sink,
		pub:        NewPublisher(),
	}
}

// SetTradeListener 注册完结交易回调，可随配置热加载替换。
func (s *Store) SetTradeListener(fn TradeListener) {
	s.mu.Lock()
	s.onTrade = fn
	s.mu.Unlock()
}

// Subscribe 订阅对账快照。
func (s *Store) Subscribe() <-chan Snapshot {
	return s.pub.Subscribe()
}

// Positions 暴露持仓跟踪器（REST 对账同步用）。
func (s *Store) Positions() *inventory.Tracker {
	return s.positions
}

// OnOrderUpdates 实现 gateway.WSHandler。
func (s *Store) OnOrderUpdates(orders []gateway.OrderUpdate) {
	for _, o := range orders {
		s.HandleOrderUpdate(o)
	}
}

// OnPositionUpdates 实现 gateway.WSHandler。
func (s *Store) OnPositionUpdates(positions []gateway.PositionUpdate) {
	s.HandlePositionUpdates(positions)
}

// OnUnrecognized 实现 gateway.WSHandler：记诊断后跳过，绝不中断管道。
func (s *Store) OnUnrecognized(raw []byte) {
	s.mu.Lock()
	s.malformedTotal++
	s.mu.Unlock()
	metrics.MalformedTotal.Inc()
	s.logEvent("event_malformed", map[string]interface{}{
		"bytes": len(raw),
	})
}

// HandleOrderUpdate 订单事件处理，整条对账流水线的入口。
func (s *Store) HandleOrderUpdate(o gateway.OrderUpdate) {
	s.mu.Lock()
	now := time.Now()
	s.eventsTotal++
	s.lastUpdate = now
	s.activity.record(now)
	metrics.EventsTotal.Inc()

	seqErr := s.lifecycle.Observe(o.OrderID, o.Status)

	switch o.Status {
	case reconcile.StatusPartiallyFilled:
		s.pending.Put(o)
		openQty, closeQty, pendings := s.groupStateLocked()
		s.mu.Unlock()

		s.logSeqError(o, seqErr)
		metrics.UpdateGroupMetrics(openQty, closeQty, pendings)
		s.logEvent("order_update", map[string]interface{}{
			"symbol":   o.Symbol,
			"order_id": o.OrderID,
			"status":   o.Status,
			"side":     o.Side,
			"qty":      o.CumExecQty,
		})
		s.publish()
		return

	case reconcile.StatusFilled:
		if !s.pending.MarkAbsorbed(o.OrderID) {
			s.duplicateTotal++
			s.mu.Unlock()
			metrics.DuplicateFills.Inc()
			s.logEvent("order_duplicate", map[string]interface{}{
				"symbol":   o.Symbol,
				"order_id": o.OrderID,
			})
			return
		}

		var partialPtr *gateway.OrderUpdate
		if partial, ok := s.pending.Take(o.OrderID); ok {
			partialPtr = &partial
		}

		cls := s.classifier.Classify(o, s.positions.Lookup(o.Symbol))
		completed, finalized := s.group.Absorb(o, cls, partialPtr)

		openQty, closeQty, pendings := s.groupStateLocked()
		onTrade := s.onTrade
		if finalized {
			s.trades = append(s.trades, completed)
			st := s.stats.Record(completed)
			metrics.UpdateTradeMetrics(st.TotalPnL, st.WinRate)
		}
		s.mu.Unlock()

		s.logSeqError(o, seqErr)
		metrics.UpdateFillMetrics(cls == reconcile.Closing)
		metrics.UpdateGroupMetrics(openQty, closeQty, pendings)
		s.logEvent("order_update", map[string]interface{}{
			"symbol":         o.Symbol,
			"order_id":       o.OrderID,
			"status":         o.Status,
			"side":           o.Side,
			"class":          cls.String(),
			"qty":            reconcile.ExecQty(o),
			"value":          reconcile.ExecValue(o),
			"closed_pnl":     o.ClosedPnl,
			"reduce_only":    o.ReduceOnly,
			"opening_qty":    openQty,
			"closing_qty":    closeQty,
			"merged_partial": partialPtr != nil,
		})
		if finalized {
			s.logEvent("trade_completed", map[string]interface{}{
				"symbol":       completed.Symbol,
				"qty":          completed.Qty,
				"entry_price":  completed.EntryPrice,
				"exit_price":   completed.ExitPrice,
				"realized_pnl": completed.RealizedPnL,
				"fees":         completed.Fees,
			})
			if onTrade != nil {
				onTrade(completed)
			}
		}
		s.publish()
		return
	}

	// 其余状态（New/Cancelled/Rejected 等）只参与生命周期检查
	s.mu.Unlock()
	s.logSeqError(o, seqErr)
}

// HandlePositionUpdates 仓位事件批处理。
func (s *Store) HandlePositionUpdates(list []gateway.PositionUpdate) {
	s.mu.Lock()
	now := time.Now()
	s.eventsTotal++
	s.lastUpdate = now
	s.activity.record(now)
	for _, p := range list {
		s.positions.Update(p)
	}
	count := s.positions.Len()
	s.mu.Unlock()

	metrics.EventsTotal.Inc()
	metrics.OpenPositions.Set(float64(count))
	for _, p := range list {
		s.logEvent("position_update", map[string]interface{}{
			"symbol":         p.Symbol,
			"side":           p.Side,
			"size":           p.Size,
			"avg_price":      p.AvgPrice,
			"mark_price":     p.MarkPrice,
			"unrealised_pnl": p.UnrealisedPnl,
		})
	}
	s.publish()
}

// Snapshot 组装当前对账视图的只读副本。
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	openQty, closeQty := s.group.Quantities()
	return Snapshot{
		Positions:       s.positions.Active(),
		OpeningFills:    s.group.OpeningFills(),
		ClosingFills:    s.group.ClosingFills(),
		PendingPartials: s.pending.Snapshot(),
		OpeningQty:      openQty,
		ClosingQty:      closeQty,
		Trades:          append([]reconcile.CompletedTrade(nil), s.trades...),
		Stats:           s.stats.Snapshot(),
		EventsTotal:     s.eventsTotal,
		MalformedTotal:  s.malformedTotal,
		DuplicateTotal:  s.duplicateTotal,
		EventRate:       s.activity.ratePerMinute(time.Now()),
		LastUpdate:      s.lastUpdate,
	}
}

func (s *Store) groupStateLocked() (float64, float64, int) {
	openQty, closeQty := s.group.Quantities()
	return openQty, closeQty, s.pending.Len()
}

func (s *Store) publish() {
	if !s.pub.HasSubscribers() {
		return
	}
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.pub.Publish(snap)
}

func (s *Store) logSeqError(o gateway.OrderUpdate, err error) {
	if err == nil {
		return
	}
	s.logEvent("order_out_of_sequence", map[string]interface{}{
		"symbol":   o.Symbol,
		"order_id": o.OrderID,
		"status":   o.Status,
		"detail":   err.Error(),
	})
}

func (s *Store) logEvent(event string, fields map[string]interface{}) {
	if s.sink == nil {
		return
	}
	s.sink(event, fields)
}
