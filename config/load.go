package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"trade-dashboard-go/infrastructure/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env     string        `yaml:"env"`
	Gateway GatewayConfig `yaml:"gateway"`
	Engine  EngineConfig  `yaml:"engine"`
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
	Alert   AlertConfig   `yaml:"alert"`
	Log     logger.Config `yaml:"log"`
}

type GatewayConfig struct {
	APIKey           string `yaml:"apiKey"`
	APISecret        string `yaml:"apiSecret"`
	WSURL            string `yaml:"wsURL"`
	RestURL          string `yaml:"restURL"`
	Category         string `yaml:"category"` // linear / inverse / spot
	RecvWindowMs     int    `yaml:"recvWindowMs"`
	ReconnectMax     int    `yaml:"reconnectMax"`
	ReconnectDelayMs int    `yaml:"reconnectDelayMs"`
	SyncIntervalMs   int    `yaml:"syncIntervalMs"` // REST 持仓对账周期
}

type EngineConfig struct {
	Epsilon      float64 `yaml:"epsilon"`      // 数量配平容差
	SeenCapacity int     `yaml:"seenCapacity"` // 终态去重集合容量
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type AlertConfig struct {
	Enabled         bool    `yaml:"enabled"`
	MaxTradeLoss    float64 `yaml:"maxTradeLoss"`    // 单笔亏损告警阈值（正数）
	ThrottleSeconds int     `yaml:"throttleSeconds"` // 相同告警的最小间隔
}

// ReconnectDelay 带默认值的重连间隔。
func (g GatewayConfig) ReconnectDelay() time.Duration {
	if g.ReconnectDelayMs <= 0 {
		return 3 * time.Second
	}
	return time.Duration(g.ReconnectDelayMs) * time.Millisecond
}

// SyncInterval 带默认值的 REST 对账周期。
func (g GatewayConfig) SyncInterval() time.Duration {
	if g.SyncIntervalMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(g.SyncIntervalMs) * time.Millisecond
}

// ThrottleInterval 带默认值的告警限流间隔。
func (a AlertConfig) ThrottleInterval() time.Duration {
	if a.ThrottleSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(a.ThrottleSeconds) * time.Second
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides sensitive fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("TD_API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := os.Getenv("TD_API_SECRET"); v != "" {
		cfg.Gateway.APISecret = v
	}
	return cfg, Validate(cfg)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Gateway.Category == "" {
		cfg.Gateway.Category = "linear"
	}
	if cfg.Gateway.RecvWindowMs <= 0 {
		cfg.Gateway.RecvWindowMs = 5000
	}
	if cfg.Gateway.ReconnectMax <= 0 {
		cfg.Gateway.ReconnectMax = 5
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log = logger.DefaultConfig()
	}
}

// Validate ensures required fields are present.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Gateway.APIKey == "" || cfg.Gateway.APISecret == "" {
		return errors.New("gateway.apiKey/apiSecret is required (or env overrides)")
	}
	switch cfg.Gateway.Category {
	case "linear", "inverse", "spot":
	default:
		return fmt.Errorf("gateway.category %q must be linear, inverse or spot", cfg.Gateway.Category)
	}
	if cfg.Engine.Epsilon < 0 {
		return errors.New("engine.epsilon must be >= 0")
	}
	if cfg.Engine.SeenCapacity < 0 {
		return errors.New("engine.seenCapacity must be >= 0")
	}
	if cfg.Alert.Enabled && cfg.Alert.MaxTradeLoss < 0 {
		return errors.New("alert.maxTradeLoss must be >= 0")
	}
	return nil
}
