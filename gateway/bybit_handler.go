package gateway

// WSHandler 接收解析后的私有流事件。
// 实现方负责串行消费：Run 在单个读循环中逐条回调，不会并发调用。
type WSHandler interface {
	OnOrderUpdates(orders []OrderUpdate)
	OnPositionUpdates(positions []PositionUpdate)
	OnUnrecognized(raw []byte)
}
