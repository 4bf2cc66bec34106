package include

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopBoundsConcurrency(t *testing.T) {
	loop := NewLoop(context.Background(), 2)

	var running, peak atomic.Int32
	done := 0
	for range 6 {
		loop.Go(func(ctx context.Context) func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return func() { done++ }
		})
	}
	if loop.Pending() != 6 {
		t.Errorf("Pending() = %d, want 6", loop.Pending())
	}
	if err := loop.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if done != 6 {
		t.Errorf("continuations run = %d, want 6", done)
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", peak.Load())
	}
	if loop.Pending() != 0 {
		t.Errorf("Pending() = %d after Run()", loop.Pending())
	}
}

func TestLoopContinuationSchedulesMore(t *testing.T) {
	loop := NewLoop(context.Background(), 0)

	var order []int
	loop.Go(func(context.Context) func() {
		return func() {
			order = append(order, 1)
			loop.Go(func(context.Context) func() {
				return func() { order = append(order, 2) }
			})
		}
	})
	if err := loop.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestLoopCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(ctx, 1)

	ran := false
	loop.Go(func(ctx context.Context) func() {
		<-ctx.Done()
		return func() { ran = true }
	})
	cancel()

	if err := loop.Run(); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if ran {
		t.Error("Continuation ran after cancellation")
	}
}
