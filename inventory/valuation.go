package inventory

// ROE 基于入场均价估算收益率（百分比），展示用。
func (p Position) ROE() float64 {
	if p.AvgPrice == 0 {
		return 0
	}
	return p.UnrealisedPnl / p.AvgPrice * 100
}

// TotalUnrealised 汇总全部持仓的未实现盈亏。
func (t *Tracker) TotalUnrealised() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var sum float64
	for _, p := range t.positions {
		sum += p.UnrealisedPnl
	}
	return sum
}
