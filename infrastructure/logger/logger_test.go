package logger

import "testing"

func TestNewWithBadLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "noisy"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestLogEventDoesNotPanic(t *testing.T) {
	l, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer l.Close()

	// 完整字段
	l.LogEvent("trade_completed", map[string]interface{}{
		"symbol":       "BTCUSDT",
		"qty":          1.0,
		"entry_price":  100.0,
		"exit_price":   110.0,
		"realized_pnl": 10.0,
	})
	// 缺字段走 warn 路径，不丢日志也不崩
	l.LogEvent("trade_completed", map[string]interface{}{"symbol": "BTCUSDT"})
	// nil 字段
	l.LogEvent("ws_state", nil)
}

func TestWithFields(t *testing.T) {
	l, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer l.Close()

	child := l.WithFields(map[string]interface{}{"component": "test"})
	if child == nil || child.Logger == nil {
		t.Fatalf("WithFields returned nil")
	}
	child.Info("hello")
}
