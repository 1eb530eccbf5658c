package txn

import (
	"sync"
	"sync/atomic"

	"akdb/pkg/collab"
	"akdb/pkg/dberror"
	"akdb/pkg/events"
	"akdb/pkg/lock"
	"akdb/pkg/logging"
	"akdb/pkg/metrics"
)

// Config configures a Manager.
type Config struct {
	// MaxActiveTransactions bounds the worker pool. Defaults to 10.
	MaxActiveTransactions int
}

const defaultMaxActiveTransactions = 10

func (c Config) maxActive() int {
	if c.MaxActiveTransactions <= 0 {
		return defaultMaxActiveTransactions
	}
	return c.MaxActiveTransactions
}

// Submission is the handle Submit returns for one admitted batch. Wait
// blocks until the worker finishes and returns its outcome.
type Submission struct {
	ID   lock.TxnID
	done chan struct{}
	err  error
}

// Wait blocks until the transaction commits or aborts and returns the
// outcome (nil on commit).
func (s *Submission) Wait() error {
	<-s.done
	return s.err
}

// Manager admits command batches and runs each in its own worker, bounding
// concurrency at Config.MaxActiveTransactions.
type Manager struct {
	cfg       Config
	lt        *lock.LockTable
	bus       *events.Bus
	addresser collab.BlockAddresser
	executor  collab.Executor

	nextID atomic.Int64

	mu     sync.Mutex
	cond   *sync.Cond
	active int
}

// New creates a Manager over lt, publishing lifecycle events on bus. A nil
// bus is replaced with a private one nobody subscribes to.
func New(cfg Config, lt *lock.LockTable, bus *events.Bus, addresser collab.BlockAddresser, executor collab.Executor) *Manager {
	if bus == nil {
		bus = events.NewBus()
	}
	m := &Manager{cfg: cfg, lt: lt, bus: bus, addresser: addresser, executor: executor}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Submit admits batch, blocking the caller until a worker slot is free if
// the pool is saturated, then spawns a worker and returns immediately; the
// worker itself runs asynchronously. Call Submission.Wait for the outcome.
func (m *Manager) Submit(batch []collab.Command) *Submission {
	m.acquireSlot()
	return m.spawn(batch)
}

// TrySubmit admits batch only if a worker slot is immediately free; it
// never blocks the caller, returning dberror.PoolSaturated otherwise.
func (m *Manager) TrySubmit(batch []collab.Command) (*Submission, error) {
	m.mu.Lock()
	if m.active >= m.cfg.maxActive() {
		active := m.active
		m.mu.Unlock()
		return nil, dberror.PoolSaturated(active, m.cfg.maxActive())
	}
	m.active++
	m.mu.Unlock()

	return m.spawn(batch), nil
}

func (m *Manager) acquireSlot() {
	m.mu.Lock()
	for m.active >= m.cfg.maxActive() {
		m.cond.Wait()
	}
	m.active++
	m.mu.Unlock()
}

func (m *Manager) spawn(batch []collab.Command) *Submission {
	id := lock.TxnID(m.nextID.Add(1))
	sub := &Submission{ID: id, done: make(chan struct{})}

	log := logging.WithTx(int(id))
	log.Info("transaction admitted", "commands", len(batch))
	metrics.ActiveTransactions.Inc()

	go func() {
		w := newWorker(id, m.lt, m.addresser, m.executor)
		err := w.run(batch)
		m.finish(id, err)
		sub.err = err
		close(sub.done)
	}()

	return sub
}

// finish records a worker's terminal transition, publishes
// TransactionFinished, and publishes AllTransactionsFinished when the last
// active worker leaves.
func (m *Manager) finish(id lock.TxnID, err error) {
	committed := err == nil
	state := StateCommitted
	if !committed {
		state = StateAborted
	}
	logging.WithTx(int(id)).Info("transaction finished", "state", state.String())
	metrics.ActiveTransactions.Dec()
	metrics.RecordOutcome(committed)

	m.mu.Lock()
	m.active--
	remaining := m.active
	m.cond.Broadcast()
	m.mu.Unlock()

	m.bus.Publish(events.Event{Kind: events.TransactionFinished, TxnID: int64(id), Committed: committed})
	if remaining == 0 {
		m.bus.Publish(events.Event{Kind: events.AllTransactionsFinished})
	}
}

// ActiveCount returns the number of workers currently running, for the
// monitor package.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// AwaitQuiescence blocks until every admitted transaction has finished.
func (m *Manager) AwaitQuiescence() {
	m.mu.Lock()
	for m.active > 0 {
		m.cond.Wait()
	}
	m.mu.Unlock()
}
