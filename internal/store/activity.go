package store

import "time"

// activityTracker 跟踪近期事件（滑动窗口），给仪表盘的处理统计面板用。
type activityTracker struct {
	recent     []time.Time
	maxHistory int
	windowSize time.Duration
	total      int64
}

func newActivityTracker(maxHistory int, windowSize time.Duration) *activityTracker {
	if maxHistory <= 0 {
		maxHistory = 512
	}
	if windowSize <= 0 {
		windowSize = 5 * time.Minute
	}
	return &activityTracker{
		recent:     make([]time.Time, 0, maxHistory),
		maxHistory: maxHistory,
		windowSize: windowSize,
	}
}

// record 记录一次事件并清理过期记录；调用方持有 Store 锁。
func (a *activityTracker) record(now time.Time) {
	a.recent = append(a.recent, now)
	a.total++

	cutoff := now.Add(-a.windowSize)
	validStart := len(a.recent)
	for i, ts := range a.recent {
		if ts.After(cutoff) {
			validStart = i
			break
		}
	}
	if validStart > 0 {
		a.recent = a.recent[validStart:]
	}
	if len(a.recent) > a.maxHistory {
		a.recent = a.recent[len(a.recent)-a.maxHistory:]
	}
}

// ratePerMinute 窗口内事件数折算成每分钟速率。
func (a *activityTracker) ratePerMinute(now time.Time) float64 {
	windowMinutes := a.windowSize.Minutes()
	if windowMinutes <= 0 {
		return 0
	}
	cutoff := now.Add(-a.windowSize)
	count := 0
	for _, ts := range a.recent {
		if ts.After(cutoff) {
			count++
		}
	}
	return float64(count) / windowMinutes
}
