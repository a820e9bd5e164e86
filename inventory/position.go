package inventory

import (
	"sort"
	"sync"

	"github.com/moznion/go-optional"

	"trade-dashboard-go/gateway"
)

// Position 某个品种的最新持仓快照。
type Position struct {
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	Size          float64 `json:"size"`
	AvgPrice      float64 `json:"avgPrice"`
	MarkPrice     float64 `json:"markPrice"`
	UnrealisedPnl float64 `json:"unrealisedPnl"`
}

// Tracker 维护每个品种至多一条持仓快照。
// 只是分类的兜底信号，不是权威数据源：没收到过快照的品种查不到。
type Tracker struct {
	mu        sync.RWMutex
	positions map[string]Position
}

func NewTracker() *Tracker {
	return &Tracker{positions: make(map[string]Position)}
}

// Update 用最新快照覆盖该品种的条目；零仓位视为无持仓并删除。
func (t *Tracker) Update(p gateway.PositionUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applyLocked(p)
}

func (t *Tracker) applyLocked(p gateway.PositionUpdate) {
	if p.Symbol == "" {
		return
	}
	if p.Size == 0 {
		delete(t.positions, p.Symbol)
		return
	}
	t.positions[p.Symbol] = Position{
		Symbol:        p.Symbol,
		Side:          p.Side,
		Size:          p.Size,
		AvgPrice:      p.AvgPrice,
		MarkPrice:     p.MarkPrice,
		UnrealisedPnl: p.UnrealisedPnl,
	}
}

// Lookup 查询品种持仓，无副作用。
func (t *Tracker) Lookup(symbol string) optional.Option[Position] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.positions[symbol]
	if !ok {
		return optional.None[Position]()
	}
	return optional.Some(p)
}

// Active 返回当前全部持仓（按品种排序的只读副本）。
func (t *Tracker) Active() []Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Position, 0, len(t.positions))
	for _, p := range t.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Len 当前持仓品种数。
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.positions)
}

// Replace 用 REST 返回的仓位列表覆盖本地快照（断线重连场景）。
func (t *Tracker) Replace(list []gateway.PositionUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positions = make(map[string]Position, len(list))
	for _, p := range list {
		t.applyLocked(p)
	}
}
