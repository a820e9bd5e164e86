package posttrade

import (
	"math"
	"sync"

	"trade-dashboard-go/reconcile"
)

// Stats contains running performance metrics over completed trades.
type Stats struct {
	TotalTrades  int     `json:"totalTrades"`
	WinCount     int     `json:"winCount"`
	LossCount    int     `json:"lossCount"`
	TotalPnL     float64 `json:"totalPnL"`
	AvgWin       float64 `json:"avgWin"`
	AvgLoss      float64 `json:"avgLoss"`
	WinRate      float64 `json:"winRate"`
	BestTrade    float64 `json:"bestTrade"`
	WorstTrade   float64 `json:"worstTrade"`
	ProfitFactor float64 `json:"profitFactor"`
	TotalFees    float64 `json:"totalFees"`
	TotalVolume  float64 `json:"totalVolume"`
}

// Accumulator updates Stats incrementally from each completed trade.
// Winning and losing PnL are accumulated separately so the averages
// never mix signs.
type Accumulator struct {
	mu       sync.RWMutex
	stats    Stats
	winPnL   float64
	lossPnL  float64
	hasTrade bool
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Record folds one completed trade into the running metrics and
// returns the updated snapshot. A trade with exactly zero PnL counts
// toward totals but is neither a win nor a loss.
func (a *Accumulator) Record(t reconcile.CompletedTrade) Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := &a.stats
	pnl := t.RealizedPnL

	s.TotalTrades++
	s.TotalPnL += pnl
	s.TotalFees += t.Fees
	s.TotalVolume += t.Qty * t.EntryPrice

	if pnl > 0 {
		s.WinCount++
		a.winPnL += pnl
	} else if pnl < 0 {
		s.LossCount++
		a.lossPnL += pnl
	}

	if !a.hasTrade || pnl > s.BestTrade {
		s.BestTrade = pnl
	}
	if !a.hasTrade || pnl < s.WorstTrade {
		s.WorstTrade = pnl
	}
	a.hasTrade = true

	if s.WinCount > 0 {
		s.AvgWin = a.winPnL / float64(s.WinCount)
	}
	if s.LossCount > 0 {
		s.AvgLoss = math.Abs(a.lossPnL) / float64(s.LossCount)
	}
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinCount) / float64(s.TotalTrades) * 100
	}
	if a.lossPnL != 0 {
		s.ProfitFactor = a.winPnL / math.Abs(a.lossPnL)
	} else {
		s.ProfitFactor = 0
	}

	return *s
}

// Snapshot returns a copy of the current metrics.
func (a *Accumulator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}
