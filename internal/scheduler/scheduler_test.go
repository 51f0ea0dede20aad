package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingRefresher struct {
	n atomic.Int32
}

func (c *countingRefresher) Refresh() {
	c.n.Add(1)
}

func TestSchedulerRefreshesPeriodically(t *testing.T) {
	target := &countingRefresher{}
	s := New(time.Second, target)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for target.n.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if target.n.Load() == 0 {
		t.Fatal("expected at least one refresh")
	}
}

func TestSchedulerDisabled(t *testing.T) {
	target := &countingRefresher{}
	s := New(0, target)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()

	if n := target.n.Load(); n != 0 {
		t.Fatalf("expected no refreshes, got %d", n)
	}
}
