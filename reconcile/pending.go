package reconcile

import (
	"sort"

	"trade-dashboard-go/gateway"
)

// PendingBook 按订单ID保存在途的部分成交，直到同一订单的终态成交到达。
// 不同订单的部分成交互不挤占；同时记录已吸收的终态订单ID用于去重，
// 防止传输层重连后重放同一笔终态成交导致数量翻倍。
type PendingBook struct {
	partials map[string]gateway.OrderUpdate

	seen      map[string]struct{}
	seenOrder []string
	seenCap   int
}

// NewPendingBook 创建挂起簿；seenCap 限制去重集合的大小，<=0 取默认 1024。
func NewPendingBook(seenCap int) *PendingBook {
	if seenCap <= 0 {
		seenCap = 1024
	}
	return &PendingBook{
		partials: make(map[string]gateway.OrderUpdate),
		seen:     make(map[string]struct{}),
		seenCap:  seenCap,
	}
}

// Put 记录或覆盖该订单的最新部分成交。
func (b *PendingBook) Put(o gateway.OrderUpdate) {
	if o.OrderID == "" {
		return
	}
	b.partials[o.OrderID] = o
}

// Take 取出并清除该订单的挂起部分成交。
func (b *PendingBook) Take(orderID string) (gateway.OrderUpdate, bool) {
	o, ok := b.partials[orderID]
	if ok {
		delete(b.partials, orderID)
	}
	return o, ok
}

// MarkAbsorbed 标记终态成交已吸收；重复标记返回 false，调用方应丢弃该事件。
func (b *PendingBook) MarkAbsorbed(orderID string) bool {
	if orderID == "" {
		return true
	}
	if _, dup := b.seen[orderID]; dup {
		return false
	}
	b.seen[orderID] = struct{}{}
	b.seenOrder = append(b.seenOrder, orderID)
	// 限制去重集合占用，最旧的先淘汰
	if len(b.seenOrder) > b.seenCap {
		evict := b.seenOrder[0]
		b.seenOrder = b.seenOrder[1:]
		delete(b.seen, evict)
	}
	return true
}

// Len 当前挂起的部分成交数量。
func (b *PendingBook) Len() int {
	return len(b.partials)
}

// Snapshot 返回挂起部分成交的只读副本（按订单ID排序）。
func (b *PendingBook) Snapshot() []gateway.OrderUpdate {
	out := make([]gateway.OrderUpdate, 0, len(b.partials))
	for _, o := range b.partials {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}
