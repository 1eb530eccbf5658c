package lock

import (
	"sync"
	"sync/atomic"
	"time"

	"akdb/pkg/dberror"
	"akdb/pkg/events"
	"akdb/pkg/logging"
	"akdb/pkg/metrics"
)

// bucket is one slot of the LockTable's array; it holds a circular list of
// ResourceEntries that hash to it.
type bucket struct {
	head *ResourceEntry
}

// LockTable is a fixed-size hashed index of per-resource lock queues. One
// mutex protects the whole table, its buckets, and every resource's queue;
// one condition variable is broadcast on every release so waiters can
// re-check their grant predicate.
type LockTable struct {
	buckets     []bucket
	mu          sync.Mutex
	cond        *sync.Cond
	bus         *events.Bus
	waitTimeout time.Duration
}

// New creates a LockTable with the given configuration and event bus. A nil
// bus is replaced with a private one nobody subscribes to, so callers that
// don't care about lifecycle events can omit it.
func New(cfg Config, bus *events.Bus) *LockTable {
	n := cfg.NumBuckets
	if n <= 0 {
		n = defaultNumBuckets
	}
	if bus == nil {
		bus = events.NewBus()
	}
	lt := &LockTable{
		buckets:     make([]bucket, n),
		bus:         bus,
		waitTimeout: time.Duration(cfg.WaitTimeout) * time.Millisecond,
	}
	lt.cond = sync.NewCond(&lt.mu)
	return lt
}

func (lt *LockTable) hash(addr BlockAddress) int {
	n := len(lt.buckets)
	h := int(addr) % n
	if h < 0 {
		h += n
	}
	return h
}

// lookup walks the bucket's circular list once. Caller must hold lt.mu.
func (lt *LockTable) lookup(addr BlockAddress) *ResourceEntry {
	b := &lt.buckets[lt.hash(addr)]
	if b.head == nil {
		return nil
	}
	e := b.head
	for {
		if e.addr == addr {
			return e
		}
		e = e.bucketNext
		if e == b.head {
			return nil
		}
	}
}

// getOrCreate returns the existing entry for addr, or links a new one-
// element ring into the bucket. Caller must hold lt.mu.
func (lt *LockTable) getOrCreate(addr BlockAddress) *ResourceEntry {
	if e := lt.lookup(addr); e != nil {
		return e
	}
	e := &ResourceEntry{addr: addr}
	b := &lt.buckets[lt.hash(addr)]
	if b.head == nil {
		e.bucketNext, e.bucketPrev = e, e
		b.head = e
		return e
	}
	tail := b.head.bucketPrev
	e.bucketNext = b.head
	e.bucketPrev = tail
	tail.bucketNext = e
	b.head.bucketPrev = e
	return e
}

// removeEntry unlinks e from its bucket's circular list. Caller must hold
// lt.mu.
func (lt *LockTable) removeEntry(e *ResourceEntry) {
	b := &lt.buckets[lt.hash(e.addr)]
	if e.bucketNext == e {
		b.head = nil
	} else {
		e.bucketPrev.bucketNext = e.bucketNext
		e.bucketNext.bucketPrev = e.bucketPrev
		if b.head == e {
			b.head = e.bucketNext
		}
	}
	e.bucketNext, e.bucketPrev = nil, nil
}

// Acquire blocks the calling goroutine until (addr, mode, txn) is granted,
// or until the configured wait timeout elapses, in which case it returns a
// dberror.DBError with Code dberror.CodeLockTimeout and the caller's
// transaction must abort. Re-requesting a lock the transaction already
// holds is idempotent: a held Exclusive satisfies any mode, a held Shared
// satisfies another Shared request, without enqueueing a duplicate.
func (lt *LockTable) Acquire(addr BlockAddress, mode Mode, txn TxnID) error {
	log := logging.WithLock(int(txn), int(addr))

	lt.mu.Lock()
	entry := lt.getOrCreate(addr)

	if existing := entry.findByTxn(txn); existing != nil && existing.granted {
		if existing.mode == Exclusive || mode == Shared {
			lt.mu.Unlock()
			log.Debug("lock re-request satisfied by existing grant", "mode", mode)
			return nil
		}
	}

	req := entry.enqueue(txn, mode)
	req.granted = evaluateGrant(entry, req)
	if req.granted {
		entry.dominant = entry.head.mode
		lt.mu.Unlock()
		metrics.LocksGranted.WithLabelValues(mode.String()).Inc()
		metrics.LockWaitDuration.WithLabelValues("immediate").Observe(0)
		log.Debug("lock granted immediately", "mode", mode)
		return nil
	}

	var timedOut atomic.Bool
	var timer *time.Timer
	if lt.waitTimeout > 0 {
		timer = time.AfterFunc(lt.waitTimeout, func() {
			timedOut.Store(true)
			lt.mu.Lock()
			lt.cond.Broadcast()
			lt.mu.Unlock()
		})
	}

	metrics.WaitingTransactions.Inc()
	waitStart := time.Now()
	log.Debug("lock request queued, waiting", "mode", mode)
	for !req.granted {
		lt.cond.Wait()
		req.granted = evaluateGrant(entry, req)
		if req.granted {
			entry.dominant = entry.head.mode
		} else if timedOut.Load() {
			entry.unlink(req)
			if entry.empty() {
				lt.removeEntry(entry)
			}
			lt.mu.Unlock()
			metrics.WaitingTransactions.Dec()
			metrics.LockWaitDuration.WithLabelValues("timeout").Observe(time.Since(waitStart).Seconds())
			log.Debug("lock request timed out", "mode", mode)
			return dberror.LockTimeout("Acquire", req.txn.String())
		}
	}
	if timer != nil {
		timer.Stop()
	}
	lt.mu.Unlock()
	metrics.WaitingTransactions.Dec()
	metrics.LocksGranted.WithLabelValues(mode.String()).Inc()
	metrics.LockWaitDuration.WithLabelValues("granted").Observe(time.Since(waitStart).Seconds())
	log.Debug("lock granted after wait", "mode", mode)
	return nil
}

// Release releases txn's lock on addr, if held, and wakes every waiter so
// it can re-check its grant predicate. Releasing an address the transaction
// does not hold is a no-op.
func (lt *LockTable) Release(addr BlockAddress, txn TxnID) {
	lt.ReleaseAll([]BlockAddress{addr}, txn)
}

// ReleaseAll releases every lock txn holds among addrs in a single critical
// section, then publishes one LockReleased event if anything was freed.
// Workers call this once per transaction with the full union of acquired
// addresses; releasing per command would leave earlier commands' locks
// stranded on abort.
func (lt *LockTable) ReleaseAll(addrs []BlockAddress, txn TxnID) {
	if len(addrs) == 0 {
		return
	}
	lt.mu.Lock()
	released := 0
	for _, addr := range addrs {
		entry := lt.lookup(addr)
		if entry == nil {
			continue
		}
		mode := entry.findByTxn(txn)
		if mode == nil {
			continue
		}
		releasedMode := mode.mode
		entry.removeTxn(txn)
		released++
		metrics.LocksReleased.WithLabelValues(releasedMode.String()).Inc()
		if entry.empty() {
			lt.removeEntry(entry)
		} else {
			entry.dominant = entry.head.mode
		}
	}
	if released > 0 {
		lt.cond.Broadcast()
	}
	lt.mu.Unlock()

	if released > 0 {
		logging.WithTx(int(txn)).Debug("locks released", "count", released)
		lt.bus.Publish(events.Event{Kind: events.LockReleased})
	}
}

// IsEmpty reports whether the table holds no resource entries anywhere,
// the state required at quiescence.
func (lt *LockTable) IsEmpty() bool {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	for _, b := range lt.buckets {
		if b.head != nil {
			return false
		}
	}
	return true
}

// Snapshot returns, for every live resource entry, its address and the
// transaction/mode/granted state of every queued request. It exists for
// [akdb/pkg/monitor] and for tests; it takes the table lock and is not
// cheap enough to call from a hot path.
func (lt *LockTable) Snapshot() []ResourceSnapshot {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	var out []ResourceSnapshot
	for _, b := range lt.buckets {
		if b.head == nil {
			continue
		}
		e := b.head
		for {
			reqs := e.waiters()
			rs := make([]RequestSnapshot, len(reqs))
			for i, r := range reqs {
				rs[i] = RequestSnapshot{Txn: r.txn, Mode: r.mode, Granted: r.granted}
			}
			out = append(out, ResourceSnapshot{Addr: e.addr, Dominant: e.dominant, Requests: rs})
			e = e.bucketNext
			if e == b.head {
				break
			}
		}
	}
	return out
}

// ResourceSnapshot is a point-in-time, read-only view of one ResourceEntry.
type ResourceSnapshot struct {
	Addr     BlockAddress
	Dominant Mode
	Requests []RequestSnapshot
}

// RequestSnapshot is a point-in-time, read-only view of one LockRequest.
type RequestSnapshot struct {
	Txn     TxnID
	Mode    Mode
	Granted bool
}
