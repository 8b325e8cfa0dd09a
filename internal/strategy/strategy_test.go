package strategy

import (
	"context"
	"fmt"
	"testing"

	"coaltracker/internal"
)

type stubStrategy struct {
	name  string
	data  internal.Dataset
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(context.Context) internal.Dataset {
	s.calls++
	return s.data
}

func TestChainShortCircuits(t *testing.T) {
	// A small result from an earlier strategy beats a larger one later.
	small := &stubStrategy{name: "small", data: plantRecords("A", "B", "C", "D", "E")}
	largeNames := make([]string, 50)
	for i := range largeNames {
		largeNames[i] = fmt.Sprintf("plant-%d", i)
	}
	large := &stubStrategy{name: "large", data: plantRecords(largeNames...)}

	chain := NewChain(testLogger(), small, large)
	data, winner := chain.Resolve(context.Background())

	if winner != "small" {
		t.Errorf("winner = %q, want small", winner)
	}
	if len(data) != 5 {
		t.Errorf("got %d records, want 5", len(data))
	}
	if large.calls != 0 {
		t.Errorf("later strategy ran %d times, want 0", large.calls)
	}
}

func TestChainSkipsEmptyStrategies(t *testing.T) {
	empty := &stubStrategy{name: "empty"}
	full := &stubStrategy{name: "full", data: plantRecords("A")}

	chain := NewChain(testLogger(), empty, full)
	data, winner := chain.Resolve(context.Background())

	if empty.calls != 1 || full.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", empty.calls, full.calls)
	}
	if winner != "full" || len(data) != 1 {
		t.Errorf("winner = %q with %d records, want full with 1", winner, len(data))
	}
}

func TestChainAllEmpty(t *testing.T) {
	chain := NewChain(testLogger(), &stubStrategy{name: "a"}, &stubStrategy{name: "b"})
	data, winner := chain.Resolve(context.Background())

	if data != nil || winner != "" {
		t.Errorf("got %v/%q, want nil dataset and empty winner", data, winner)
	}
}
