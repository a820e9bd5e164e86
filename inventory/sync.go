package inventory

import (
	"context"
	"time"

	"trade-dashboard-go/gateway"
)

// PositionSource 提供仓位快照的来源（REST 客户端或测试桩）。
type PositionSource interface {
	GetPositions(category, symbol string) ([]gateway.PositionUpdate, error)
}

// Syncer 周期性用 REST 快照覆盖本地持仓，纠正推送流漏掉的变更。
type Syncer struct {
	Tracker  *Tracker
	Source   PositionSource
	Category string
	Interval time.Duration

	// OnError 可选；nil 时静默跳过本轮。
	OnError func(error)
}

// Run 阻塞轮询直到 ctx 取消。
func (s *Syncer) Run(ctx context.Context) error {
	if s.Tracker == nil || s.Source == nil {
		return nil
	}
	interval := s.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.SyncOnce(); err != nil && s.OnError != nil {
				s.OnError(err)
			}
		}
	}
}

// SyncOnce 执行一次覆盖同步。
func (s *Syncer) SyncOnce() error {
	list, err := s.Source.GetPositions(s.Category, "")
	if err != nil {
		return err
	}
	s.Tracker.Replace(list)
	return nil
}
