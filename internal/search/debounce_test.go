package search

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerSingleCall(t *testing.T) {
	var calls int32
	d := NewDebouncer(50 * time.Millisecond)

	d.Debounce(func() {
		atomic.AddInt32(&calls, 1)
	})

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDebouncerBurstRunsOnceWithFinalValue(t *testing.T) {
	var calls int32
	var lastValue atomic.Value
	d := NewDebouncer(50 * time.Millisecond)

	for _, query := range []string{"a", "ac", "acm", "acme"} {
		q := query
		d.Debounce(func() {
			lastValue.Store(q)
			atomic.AddInt32(&calls, 1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, want exactly 1 for the burst", calls)
	}
	if got := lastValue.Load(); got != "acme" {
		t.Errorf("executed with %v, want the final input %q", got, "acme")
	}
}

func TestDebouncerCancelDropsPendingCall(t *testing.T) {
	var calls int32
	d := NewDebouncer(50 * time.Millisecond)

	d.Debounce(func() {
		atomic.AddInt32(&calls, 1)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("calls = %d, want 0 after cancel", calls)
	}
}

func TestDebouncerFlushRunsImmediately(t *testing.T) {
	var calls int32
	d := NewDebouncer(time.Hour)

	d.Debounce(func() {
		atomic.AddInt32(&calls, 10)
	})
	d.Flush(func() {
		atomic.AddInt32(&calls, 1)
	})

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1: flush runs inline and drops the pending call", calls)
	}
}
