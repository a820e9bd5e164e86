package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-dashboard-go/gateway"
	"trade-dashboard-go/infrastructure/logger"
	"trade-dashboard-go/internal/server"
	"trade-dashboard-go/internal/store"
	"trade-dashboard-go/reconcile"
)

func newTestComponents(t *testing.T) Components {
	t.Helper()
	zlog, err := logger.New(logger.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = zlog.Close() })

	st := store.New(store.Config{}, nil)
	return Components{
		Store:  st,
		Server: server.New("127.0.0.1:0", st, zlog),
		Logger: zlog,
	}
}

func TestNewRejectsMissingComponents(t *testing.T) {
	_, err := New(Components{})
	assert.Error(t, err)

	comp := newTestComponents(t)
	comp.Server = nil
	_, err = New(comp)
	assert.Error(t, err)

	comp = newTestComponents(t)
	comp.Logger = nil
	_, err = New(comp)
	assert.Error(t, err)
}

// ws 为空时引擎照常启动，只走查询/广播路径（dry-run 模式）。
func TestStartStopWithoutWS(t *testing.T) {
	eng, err := New(newTestComponents(t))
	require.NoError(t, err)
	assert.Equal(t, StateIdle, eng.GetState())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, eng.Start(ctx))
	assert.Equal(t, StateRunning, eng.GetState())

	// 重复启动拒绝
	assert.Error(t, eng.Start(ctx))

	require.NoError(t, eng.Stop())
	assert.Equal(t, StateStopped, eng.GetState())

	// 已停止后再停报错
	assert.Error(t, eng.Stop())
}

func TestBroadcastLoopCountsSnapshots(t *testing.T) {
	comp := newTestComponents(t)
	eng, err := New(comp)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, eng.Start(ctx))
	defer func() { _ = eng.Stop() }()

	comp.Store.HandleOrderUpdate(gateway.OrderUpdate{
		OrderID: "o1", Symbol: "BTCUSDT", Side: "Buy",
		Status: reconcile.StatusFilled, CumExecQty: 1, CumExecValue: 100,
	})

	deadline := time.After(2 * time.Second)
	for {
		_, _, sent := eng.GetStatistics()
		if sent > 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("snapshot never broadcast")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestEngineStateString(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "RUNNING", StateRunning.String())
	assert.Equal(t, "STOPPED", StateStopped.String())
	assert.Equal(t, "UNKNOWN", EngineState(99).String())
}
