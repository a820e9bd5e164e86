package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"trade-dashboard-go/gateway"
	"trade-dashboard-go/infrastructure/alert"
	"trade-dashboard-go/infrastructure/logger"
	"trade-dashboard-go/internal/server"
	"trade-dashboard-go/internal/store"
	"trade-dashboard-go/inventory"
)

// EngineState 引擎状态
type EngineState int

const (
	// StateIdle 空闲状态
	StateIdle EngineState = iota
	// StateRunning 运行状态
	StateRunning
	// StateStopped 停止状态
	StateStopped
)

// String 返回状态名称
func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Components 引擎依赖组件
type Components struct {
	Store        *store.Store
	WS           *gateway.BybitWSReal
	Syncer       *inventory.Syncer
	Server       *server.Server
	AlertManager *alert.Manager
	Logger       *logger.Logger
}

// DashboardEngine 把行情接入、持仓对账同步和查询服务编排成一个可启停的整体。
// 引擎自身不做业务处理，业务全部在 store 内完成。
type DashboardEngine struct {
	store    *store.Store
	ws       *gateway.BybitWSReal
	syncer   *inventory.Syncer
	srv      *server.Server
	alertMgr *alert.Manager
	logger   *logger.Logger

	state EngineState
	mu    sync.RWMutex

	cancel context.CancelFunc
	wg     sync.WaitGroup

	stats Statistics
}

// Statistics 引擎统计信息
type Statistics struct {
	StartTime      time.Time
	WsSessions     int64
	SnapshotsSent  int64
	LastSnapshotAt time.Time
	mu             sync.RWMutex
}

// New 创建引擎
func New(components Components) (*DashboardEngine, error) {
	if err := validateComponents(components); err != nil {
		return nil, fmt.Errorf("invalid components: %w", err)
	}

	return &DashboardEngine{
		store:    components.Store,
		ws:       components.WS,
		syncer:   components.Syncer,
		srv:      components.Server,
		alertMgr: components.AlertManager,
		logger:   components.Logger,
		state:    StateIdle,
	}, nil
}

// Start 启动引擎，所有子任务挂在派生 ctx 上。
func (e *DashboardEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StateRunning {
		e.mu.Unlock()
		return fmt.Errorf("engine already started (state: %s)", e.state)
	}
	e.state = StateRunning
	e.stats.StartTime = time.Now()
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	endpoint := ""
	if e.ws != nil {
		endpoint = e.ws.Endpoint
	}
	e.logger.Info("Dashboard engine starting",
		zap.String("ws_endpoint", endpoint),
		zap.String("server_addr", e.srv.Addr))

	// 行情会话：Run 内部处理重连，返回即重连耗尽。
	// ws 为 nil 时（dry-run）不接行情，只跑查询服务。
	if e.ws != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			for {
				select {
				case <-runCtx.Done():
					return
				default:
				}
				e.stats.mu.Lock()
				e.stats.WsSessions++
				e.stats.mu.Unlock()
				if err := e.ws.Run(e.store); err != nil {
					e.logger.Error("Websocket session ended", zap.Error(err))
					if e.alertMgr != nil {
						_ = e.alertMgr.SendCritical("market data stream lost", map[string]interface{}{
							"error": err.Error(),
						})
					}
				}
				select {
				case <-runCtx.Done():
					return
				case <-time.After(10 * time.Second):
					// 耗尽后退避更久再重新开一轮会话
				}
			}
		}()
	}

	// REST 持仓对账
	if e.syncer != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			_ = e.syncer.Run(runCtx)
		}()
	}

	// 快照广播
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		updates := e.store.Subscribe()
		for {
			select {
			case <-runCtx.Done():
				return
			case snap, ok := <-updates:
				if !ok {
					return
				}
				e.srv.Broadcast(snap)
				e.stats.mu.Lock()
				e.stats.SnapshotsSent++
				e.stats.LastSnapshotAt = time.Now()
				e.stats.mu.Unlock()
			}
		}
	}()

	// 查询服务
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.srv.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Error("API server stopped", zap.Error(err))
		}
	}()

	e.logger.Info("Dashboard engine started")
	return nil
}

// Stop 停止引擎并等待子任务退出。
func (e *DashboardEngine) Stop() error {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return fmt.Errorf("engine not running (state: %s)", e.state)
	}
	e.state = StateStopped
	cancel := e.cancel
	e.mu.Unlock()

	e.logger.Info("Dashboard engine stopping...")
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		e.logger.Warn("Timeout waiting for engine to stop")
	}

	e.logger.Info("Dashboard engine stopped")
	return nil
}

// GetState 获取引擎状态
func (e *DashboardEngine) GetState() EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// GetStatistics 获取统计信息
func (e *DashboardEngine) GetStatistics() (startTime time.Time, wsSessions, snapshotsSent int64) {
	e.stats.mu.RLock()
	defer e.stats.mu.RUnlock()
	return e.stats.StartTime, e.stats.WsSessions, e.stats.SnapshotsSent
}

// validateComponents 验证组件
func validateComponents(comp Components) error {
	if comp.Store == nil {
		return errors.New("store is required")
	}
	if comp.Server == nil {
		return errors.New("server is required")
	}
	if comp.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}
