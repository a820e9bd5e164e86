package reconcile

import "fmt"

// Order statuses as reported by the venue. The engine only acts on
// PartiallyFilled and Filled; the rest participate in lifecycle checks.
const (
	StatusNew             = "New"
	StatusPartiallyFilled = "PartiallyFilled"
	StatusFilled          = "Filled"
	StatusCancelled       = "Cancelled"
	StatusRejected        = "Rejected"
)

type transition struct {
	from string
	to   string
}

// Lifecycle tracks the last seen status per order id and flags
// out-of-sequence transitions. Violations are diagnostics only: the
// engine does not reorder the venue stream, it just surfaces the gap.
type Lifecycle struct {
	last        map[string]string
	transitions map[transition]bool
}

func NewLifecycle() *Lifecycle {
	legal := []transition{
		{StatusNew, StatusNew},
		{StatusNew, StatusPartiallyFilled},
		{StatusNew, StatusFilled},
		{StatusNew, StatusCancelled},
		{StatusNew, StatusRejected},

		// repeated partials are normal
		{StatusPartiallyFilled, StatusPartiallyFilled},
		{StatusPartiallyFilled, StatusFilled},
		{StatusPartiallyFilled, StatusCancelled},
	}
	m := make(map[transition]bool, len(legal))
	for _, t := range legal {
		m[t] = true
	}
	return &Lifecycle{
		last:        make(map[string]string),
		transitions: m,
	}
}

// Observe records the status for an order id and reports whether the
// transition from the previously seen status is legal. The first
// observation of an id is always legal.
func (l *Lifecycle) Observe(orderID, status string) error {
	if orderID == "" || status == "" {
		return nil
	}
	prev, ok := l.last[orderID]
	if IsTerminal(status) {
		delete(l.last, orderID)
	} else {
		l.last[orderID] = status
	}
	if !ok {
		return nil
	}
	if !l.transitions[transition{prev, status}] {
		return fmt.Errorf("out-of-sequence order status: %s -> %s", prev, status)
	}
	return nil
}

// IsTerminal reports whether a status ends the order lifecycle.
func IsTerminal(status string) bool {
	switch status {
	case StatusFilled, StatusCancelled, StatusRejected:
		return true
	}
	return false
}
