package gateway

import (
	"sync"
	"time"
)

// RateLimiter 控制 REST 请求节奏，避免触发交易所限流。
type RateLimiter interface {
	Wait()
}

// TokenBucketLimiter 令牌桶限流：rate 为每秒补充的令牌数，burst 为桶容量。
// 仓位轮询和手动刷新共用一个实例即可覆盖交易所的账户级限额。
type TokenBucketLimiter struct {
	mu     sync.Mutex
	rate   float64
	burst  float64
	tokens float64
	refill time.Time
}

func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucketLimiter{
		rate:   rate,
		burst:  float64(burst),
		tokens: float64(burst),
		refill: time.Now(),
	}
}

// Wait 取走一个令牌，桶空时阻塞到下一个令牌生成。
func (l *TokenBucketLimiter) Wait() {
	l.mu.Lock()
	l.refillLocked(time.Now())
	if l.tokens >= 1 {
		l.tokens--
		l.mu.Unlock()
		return
	}
	wait := time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
	l.tokens = 0
	l.mu.Unlock()

	time.Sleep(wait)
}

func (l *TokenBucketLimiter) refillLocked(now time.Time) {
	elapsed := now.Sub(l.refill).Seconds()
	l.refill = now
	l.tokens += elapsed * l.rate
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
}
