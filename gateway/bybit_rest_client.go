package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// BybitRESTClient 一个可签名的简化客户端；HTTPClient 可注入 httptest。
// 只覆盖仓位快照查询，下单/撤单不属于本系统。
type BybitRESTClient struct {
	BaseURL      string
	APIKey       string
	Secret       string
	HTTPClient   *http.Client
	RecvWindowMs int
	Limiter      RateLimiter
}

type positionListResp struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []rawPosition `json:"list"`
	} `json:"result"`
}

// GetPositions 调用 /v5/position/list 获取当前仓位快照。
func (c *BybitRESTClient) GetPositions(category, symbol string) ([]PositionUpdate, error) {
	if c == nil || c.HTTPClient == nil {
		return nil, fmt.Errorf("http client not set")
	}
	if c.Limiter != nil {
		c.Limiter.Wait()
	}

	q := url.Values{}
	if category == "" {
		category = "linear"
	}
	q.Set("category", category)
	if symbol != "" {
		q.Set("symbol", symbol)
	} else {
		q.Set("settleCoin", "USDT")
	}
	query := q.Encode()

	recvWindow := c.RecvWindowMs
	if recvWindow <= 0 {
		recvWindow = 5000
	}
	ts := time.Now().UnixMilli()
	sig := SignREST(c.Secret, c.APIKey, ts, recvWindow, query)

	endpoint := c.BaseURL + "/v5/position/list?" + query
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-BAPI-API-KEY", c.APIKey)
	req.Header.Set("X-BAPI-TIMESTAMP", strconv.FormatInt(ts, 10))
	req.Header.Set("X-BAPI-RECV-WINDOW", strconv.Itoa(recvWindow))
	req.Header.Set("X-BAPI-SIGN", sig)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("position list status %d", resp.StatusCode)
	}

	var pr positionListResp
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, err
	}
	if pr.RetCode != 0 {
		return nil, fmt.Errorf("position list retCode %d: %s", pr.RetCode, pr.RetMsg)
	}

	positions := make([]PositionUpdate, 0, len(pr.Result.List))
	for _, r := range pr.Result.List {
		positions = append(positions, r.normalize())
	}
	return positions, nil
}

// NewDefaultHTTPClient 提供一个带超时的 http.Client。
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
