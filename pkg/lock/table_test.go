package lock

import (
	"sync"
	"testing"
	"time"

	"akdb/pkg/events"
)

func TestSingleReaderGrantsImmediately(t *testing.T) {
	lt := New(Config{}, nil)

	if err := lt.Acquire(1, Shared, 1); err != nil {
		t.Fatalf("expected immediate grant, got %v", err)
	}
	if lt.IsEmpty() {
		t.Error("table should not be empty while a lock is held")
	}
	lt.Release(1, 1)
	if !lt.IsEmpty() {
		t.Error("table should be empty after release")
	}
}

func TestTwoReadersOverlap(t *testing.T) {
	lt := New(Config{}, nil)

	if err := lt.Acquire(1, Shared, 1); err != nil {
		t.Fatalf("txn 1: %v", err)
	}
	if err := lt.Acquire(1, Shared, 2); err != nil {
		t.Fatalf("txn 2: %v", err)
	}

	snap := lt.Snapshot()
	if len(snap) != 1 || len(snap[0].Requests) != 2 {
		t.Fatalf("expected one resource with two granted requests, got %+v", snap)
	}
	for _, r := range snap[0].Requests {
		if !r.Granted {
			t.Error("both shared requests should be granted")
		}
	}

	lt.Release(1, 1)
	lt.Release(1, 2)
	if !lt.IsEmpty() {
		t.Error("table should be empty once both readers release")
	}
}

func TestWriterQueuesBehindReader(t *testing.T) {
	lt := New(Config{}, nil)

	if err := lt.Acquire(1, Shared, 1); err != nil {
		t.Fatalf("reader: %v", err)
	}

	writerDone := make(chan error, 1)
	go func() { writerDone <- lt.Acquire(1, Exclusive, 2) }()

	select {
	case <-writerDone:
		t.Fatal("writer should not be granted while reader holds the lock")
	case <-time.After(50 * time.Millisecond):
	}

	lt.Release(1, 1)

	select {
	case err := <-writerDone:
		if err != nil {
			t.Fatalf("writer should be granted after reader releases: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("writer was never granted")
	}

	lt.Release(1, 2)
	if !lt.IsEmpty() {
		t.Error("table should be empty after writer releases")
	}
}

func TestReentrantExclusiveIsIdempotent(t *testing.T) {
	lt := New(Config{}, nil)

	if err := lt.Acquire(1, Exclusive, 1); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := lt.Acquire(1, Exclusive, 1); err != nil {
		t.Fatalf("re-entrant acquire: %v", err)
	}
	if err := lt.Acquire(1, Shared, 1); err != nil {
		t.Fatalf("shared re-request against own exclusive: %v", err)
	}

	snap := lt.Snapshot()
	if len(snap[0].Requests) != 1 {
		t.Fatalf("expected a single request entry for re-entrant grants, got %d", len(snap[0].Requests))
	}

	lt.Release(1, 1)
	if !lt.IsEmpty() {
		t.Error("table should be empty after release")
	}
}

func TestAcquireTimesOut(t *testing.T) {
	lt := New(Config{WaitTimeout: 30}, nil)

	if err := lt.Acquire(1, Exclusive, 1); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	err := lt.Acquire(1, Exclusive, 2)
	if err == nil {
		t.Fatal("expected a timeout error")
	}

	lt.Release(1, 1)
	if !lt.IsEmpty() {
		t.Error("table should be empty once the holder releases")
	}
}

func TestReleasePublishesLockReleasedEvent(t *testing.T) {
	bus := events.NewBus()
	lt := New(Config{}, bus)

	var fired atomic32
	bus.Subscribe(events.LockReleased, func(events.Event) { fired.add(1) })

	if err := lt.Acquire(1, Exclusive, 1); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	lt.Release(1, 1)

	if fired.get() != 1 {
		t.Errorf("expected exactly one LockReleased event, got %d", fired.get())
	}
}

func TestConcurrentSharedAcquisitions(t *testing.T) {
	lt := New(Config{}, nil)
	const n = 20

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(txn int64) {
			defer wg.Done()
			if err := lt.Acquire(1, Shared, TxnID(txn)); err != nil {
				errs <- err
			}
		}(int64(i + 1))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error acquiring shared lock: %v", err)
	}

	snap := lt.Snapshot()
	if len(snap[0].Requests) != n {
		t.Fatalf("expected %d granted requests, got %d", n, len(snap[0].Requests))
	}

	for i := 0; i < n; i++ {
		lt.Release(1, TxnID(i+1))
	}
	if !lt.IsEmpty() {
		t.Error("table should be empty once every reader releases")
	}
}

// atomic32 is a tiny mutex-guarded counter for event-fired assertions.
type atomic32 struct {
	mu sync.Mutex
	n  int
}

func (a *atomic32) add(d int) {
	a.mu.Lock()
	a.n += d
	a.mu.Unlock()
}

func (a *atomic32) get() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.n
}
