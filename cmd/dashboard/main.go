package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"

	"trade-dashboard-go/config"
	"trade-dashboard-go/gateway"
	"trade-dashboard-go/infrastructure/alert"
	"trade-dashboard-go/infrastructure/logger"
	"trade-dashboard-go/internal/engine"
	"trade-dashboard-go/internal/server"
	"trade-dashboard-go/internal/store"
	"trade-dashboard-go/inventory"
	"trade-dashboard-go/metrics"
)

// 实时成交对账面板服务。
// 用法：
//
//	go run ./cmd/dashboard -config configs/dashboard.yaml
func main() {
	cfgPath := flag.String("config", "configs/dashboard.yaml", "配置文件路径")
	addr := flag.String("addr", "", "API 监听地址，覆盖配置文件")
	metricsAddr := flag.String("metricsAddr", "", "Prometheus metrics 监听地址，覆盖配置文件")
	dryRun := flag.Bool("dryRun", false, "不接交易所行情，只跑查询服务（联调前端用）")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Close()

	// 告警：日志通道兜底，生产环境可再挂其他通道
	var alertMgr *alert.Manager
	if cfg.Alert.Enabled {
		alertMgr = alert.NewManager(
			[]alert.Channel{alert.NewLogChannel("log", os.Stdout)},
			cfg.Alert.ThrottleInterval(),
		)
	}

	st := store.New(store.Config{
		Epsilon:      cfg.Engine.Epsilon,
		SeenCapacity: cfg.Engine.SeenCapacity,
	}, zlog.LogEvent)

	if alertMgr != nil {
		watcher := alert.NewTradeWatcher(alertMgr, cfg.Alert.MaxTradeLoss)
		st.SetTradeListener(watcher.OnTrade)
	}

	var ws *gateway.BybitWSReal
	var syncer *inventory.Syncer
	if !*dryRun {
		ws = gateway.NewBybitWSReal()
		if cfg.Gateway.WSURL != "" {
			ws.Endpoint = cfg.Gateway.WSURL
		}
		ws.APIKey = cfg.Gateway.APIKey
		ws.APISecret = cfg.Gateway.APISecret
		ws.MaxReconnects = cfg.Gateway.ReconnectMax
		ws.ReconnectDelay = cfg.Gateway.ReconnectDelay()
		ws.Events = zlog.LogEvent
		if alertMgr != nil {
			connWatcher := alert.NewConnWatcher(alertMgr)
			ws.OnDisconnect = connWatcher.OnDisconnect
			ws.OnGiveUp = connWatcher.OnGiveUp
		}

		rest := &gateway.BybitRESTClient{
			BaseURL:      cfg.Gateway.RestURL,
			APIKey:       cfg.Gateway.APIKey,
			Secret:       cfg.Gateway.APISecret,
			HTTPClient:   gateway.NewDefaultHTTPClient(),
			RecvWindowMs: cfg.Gateway.RecvWindowMs,
			Limiter:      gateway.NewTokenBucketLimiter(5, 10),
		}
		syncer = &inventory.Syncer{
			Tracker:  st.Positions(),
			Source:   rest,
			Category: cfg.Gateway.Category,
			Interval: cfg.Gateway.SyncInterval(),
			OnError: func(err error) {
				zlog.LogError(err, map[string]interface{}{"op": "position_sync"})
			},
		}
	}

	srv := server.New(cfg.Server.Addr, st, zlog)

	eng, err := engine.New(engine.Components{
		Store:        st,
		WS:           ws,
		Syncer:       syncer,
		Server:       srv,
		AlertManager: alertMgr,
		Logger:       zlog,
	})
	if err != nil {
		log.Fatalf("初始化引擎失败: %v", err)
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.StartMetricsServer(cfg.Metrics.Addr); err != nil {
				zlog.LogError(err, map[string]interface{}{"op": "metrics_server"})
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 配置热加载：目前只动告警阈值，凭证/地址类改动需重启
	go func() {
		w := config.Watcher{Path: *cfgPath, OnError: func(err error) {
			zlog.LogError(err, map[string]interface{}{"op": "config_reload"})
		}}
		_ = w.Start(ctx, func(newCfg config.AppConfig) {
			zlog.Info("config reloaded", zap.String("path", *cfgPath))
			if alertMgr != nil && newCfg.Alert.Enabled {
				watcher := alert.NewTradeWatcher(alertMgr, newCfg.Alert.MaxTradeLoss)
				st.SetTradeListener(watcher.OnTrade)
			}
		})
	}()

	if err := eng.Start(ctx); err != nil {
		log.Fatalf("启动引擎失败: %v", err)
	}
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	zlog.Info("signal received, shutting down", zap.String("signal", sig.String()))

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	cancel()
	if err := eng.Stop(); err != nil {
		zlog.LogError(err, map[string]interface{}{"op": "engine_stop"})
	}

	// 给 zap 一点时间把尾部日志刷出去
	time.Sleep(100 * time.Millisecond)
}
