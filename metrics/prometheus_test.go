package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestUpdateFillMetrics(t *testing.T) {
	opening := testutil.ToFloat64(OpeningFills)
	closing := testutil.ToFloat64(ClosingFills)

	UpdateFillMetrics(false)
	UpdateFillMetrics(true)
	UpdateFillMetrics(true)

	if got := testutil.ToFloat64(OpeningFills) - opening; got != 1 {
		t.Errorf("OpeningFills delta = %f, want 1", got)
	}
	if got := testutil.ToFloat64(ClosingFills) - closing; got != 2 {
		t.Errorf("ClosingFills delta = %f, want 2", got)
	}
}

func TestUpdateGroupMetrics(t *testing.T) {
	UpdateGroupMetrics(1.5, 0.5, 3)

	if got := testutil.ToFloat64(OpeningQty); got != 1.5 {
		t.Errorf("OpeningQty = %f, want 1.5", got)
	}
	if got := testutil.ToFloat64(ClosingQty); got != 0.5 {
		t.Errorf("ClosingQty = %f, want 0.5", got)
	}
	if got := testutil.ToFloat64(PendingPartials); got != 3 {
		t.Errorf("PendingPartials = %f, want 3", got)
	}
}

func TestUpdateTradeMetrics(t *testing.T) {
	trades := testutil.ToFloat64(TradesTotal)

	UpdateTradeMetrics(123.45, 60)

	if got := testutil.ToFloat64(TradesTotal) - trades; got != 1 {
		t.Errorf("TradesTotal delta = %f, want 1", got)
	}
	if got := testutil.ToFloat64(TotalPnL); got != 123.45 {
		t.Errorf("TotalPnL = %f, want 123.45", got)
	}
	if got := testutil.ToFloat64(WinRate); got != 60 {
		t.Errorf("WinRate = %f, want 60", got)
	}
}
