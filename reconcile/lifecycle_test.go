package reconcile

import "testing"

func TestLifecycleLegalFlow(t *testing.T) {
	l := NewLifecycle()

	steps := []string{StatusNew, StatusPartiallyFilled, StatusPartiallyFilled, StatusFilled}
	for i, s := range steps {
		if err := l.Observe("ord-1", s); err != nil {
			t.Fatalf("step %d (%s): %v", i, s, err)
		}
	}

	// 终态后条目清除，同一ID重新出现视为首次观察
	if err := l.Observe("ord-1", StatusNew); err != nil {
		t.Fatalf("reused id after terminal: %v", err)
	}
}

func TestLifecycleOutOfSequence(t *testing.T) {
	l := NewLifecycle()
	_ = l.Observe("ord-1", StatusPartiallyFilled)
	if err := l.Observe("ord-1", StatusNew); err == nil {
		t.Fatalf("PartiallyFilled -> New should be flagged")
	}

	_ = l.Observe("ord-2", StatusNew)
	if err := l.Observe("ord-2", StatusFilled); err != nil {
		t.Fatalf("New -> Filled is legal: %v", err)
	}
}

func TestLifecycleFirstObservationAlwaysLegal(t *testing.T) {
	l := NewLifecycle()
	// 中途接入流，第一条就是 Filled 也不报错
	if err := l.Observe("ord-1", StatusFilled); err != nil {
		t.Fatalf("first observation must be legal: %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []string{StatusFilled, StatusCancelled, StatusRejected} {
		if !IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []string{StatusNew, StatusPartiallyFilled} {
		if IsTerminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
