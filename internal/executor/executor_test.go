package executor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunsInSubmissionOrder(t *testing.T) {
	e := New()
	var mu sync.Mutex
	var got []int
	for i := 0; i < 10; i++ {
		i := i
		e.Submit(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	e.Shutdown()
	for i, v := range got {
		if v != i {
			t.Fatalf("task order wrong at %d: %v", i, got)
		}
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 tasks, ran %d", len(got))
	}
}

func TestSubmitToFrontRunsBeforeQueued(t *testing.T) {
	e := New()
	var mu sync.Mutex
	var got []string

	gate := make(chan struct{})
	e.Submit(func() { <-gate })
	e.Submit(func() {
		mu.Lock()
		got = append(got, "queued")
		mu.Unlock()
	})
	e.SubmitToFront(func() {
		mu.Lock()
		got = append(got, "front")
		mu.Unlock()
	})
	close(gate)
	e.Shutdown()

	if len(got) != 2 || got[0] != "front" || got[1] != "queued" {
		t.Fatalf("front task should run before queued tasks, got %v", got)
	}
}

func TestNoConcurrentExecution(t *testing.T) {
	e := New()
	var running atomic.Int32
	var overlap atomic.Bool
	for i := 0; i < 50; i++ {
		e.Submit(func() {
			if running.Add(1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
		})
	}
	e.Shutdown()
	if overlap.Load() {
		t.Fatal("two tasks ran concurrently")
	}
}

func TestShutdownDrains(t *testing.T) {
	e := New()
	var ran atomic.Int32
	gate := make(chan struct{})
	e.Submit(func() { <-gate })
	for i := 0; i < 5; i++ {
		e.Submit(func() { ran.Add(1) })
	}
	close(gate)
	e.Shutdown()
	if ran.Load() != 5 {
		t.Fatalf("shutdown should drain queued tasks, ran %d of 5", ran.Load())
	}
}

func TestSubmitAfterShutdownRejected(t *testing.T) {
	e := New()
	e.Shutdown()
	if e.Submit(func() {}) {
		t.Fatal("Submit should fail after Shutdown")
	}
	if e.SubmitToFront(func() {}) {
		t.Fatal("SubmitToFront should fail after Shutdown")
	}
}

func TestShutdownIdempotent(t *testing.T) {
	e := New()
	e.Submit(func() {})
	e.Shutdown()
	e.Shutdown()
}
