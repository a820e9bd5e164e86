package gateway

import (
	"net/http"
	"os"
)

// EnvConfig 从环境变量读取的连接参数。
type EnvConfig struct {
	APIKey     string
	APISecret  string
	RestURL    string
	WSEndpoint string
}

// LoadEnvConfig 读取 TD_* 环境变量，缺省回退到主网地址。
func LoadEnvConfig() EnvConfig {
	cfg := EnvConfig{
		APIKey:     os.Getenv("TD_API_KEY"),
		APISecret:  os.Getenv("TD_API_SECRET"),
		RestURL:    os.Getenv("TD_REST_URL"),
		WSEndpoint: os.Getenv("TD_WS_URL"),
	}
	if cfg.RestURL == "" {
		cfg.RestURL = "https://api.bybit.com"
	}
	if cfg.WSEndpoint == "" {
		cfg.WSEndpoint = BybitPrivateWSEndpoint
	}
	return cfg
}

// BuildRealBybitClients 根据环境变量快速构建 REST/WS 客户端（仅骨架，不发起连接）。
// 调用方可传入自定义 http.Client（带代理/超时），否则使用默认。
func BuildRealBybitClients(httpCli *http.Client) (*BybitRESTClient, *BybitWSReal) {
	env := LoadEnvConfig()
	if httpCli == nil {
		httpCli = NewDefaultHTTPClient()
	}
	rest := &BybitRESTClient{
		BaseURL:      env.RestURL,
		APIKey:       env.APIKey,
		Secret:       env.APISecret,
		HTTPClient:   httpCli,
		RecvWindowMs: 5000,
	}
	ws := NewBybitWSReal()
	ws.Endpoint = env.WSEndpoint
	ws.APIKey = env.APIKey
	ws.APISecret = env.APISecret
	return rest, ws
}
