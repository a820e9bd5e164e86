package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SignWS 计算私有流认证签名：HMAC-SHA256("GET/realtime{expires}")。
func SignWS(secret string, expires int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "GET/realtime%d", expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignREST 计算 REST 请求签名：HMAC-SHA256(timestamp+apiKey+recvWindow+query)。
func SignREST(secret, apiKey string, timestampMs int64, recvWindowMs int, query string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d%s%d%s", timestampMs, apiKey, recvWindowMs, query)
	return hex.EncodeToString(mac.Sum(nil))
}
