package txn

import (
	"akdb/pkg/collab"
	"akdb/pkg/dberror"
	"akdb/pkg/lock"
	"akdb/pkg/logging"
)

// worker runs one submitted batch of commands to completion. It tracks the
// union of every block address it acquires across the whole batch so release
// is a single phase on commit/abort: a command may revisit blocks an earlier
// command already locked, and all of them must still be freed together at
// the end.
type worker struct {
	id        lock.TxnID
	lt        *lock.LockTable
	addresser collab.BlockAddresser
	executor  collab.Executor

	held map[lock.BlockAddress]struct{}
}

func newWorker(id lock.TxnID, lt *lock.LockTable, addresser collab.BlockAddresser, executor collab.Executor) *worker {
	return &worker{
		id:        id,
		lt:        lt,
		addresser: addresser,
		executor:  executor,
		held:      make(map[lock.BlockAddress]struct{}),
	}
}

// run executes every command's lock-acquisition phase, then invokes the
// executor once for the whole batch, then releases every lock this
// transaction acquired. It returns a non-nil error when the transaction
// must abort.
func (w *worker) run(commands []collab.Command) error {
	log := logging.WithTx(int(w.id))
	log.Debug("worker started", "commands", len(commands))

	for _, cmd := range commands {
		addrs, err := w.addresser.BlockAddresses(cmd.Table)
		if err != nil {
			w.releaseHeld()
			return dberror.Wrap(err, dberror.CodeMissingBlocks, "ResolveBlocks", dberror.ComponentWorker)
		}
		if len(addrs) == 0 {
			w.releaseHeld()
			return dberror.MissingBlocks(cmd.Table)
		}

		if err := w.acquireAll(addrs, cmd.Kind.LockMode()); err != nil {
			logging.WithError(err).Warn("lock acquisition failed, aborting", "table", cmd.Table)
			w.releaseHeld()
			return err
		}
	}

	if err := w.executor.Execute(commands); err != nil {
		logging.WithError(err).Warn("executor reported failure, aborting")
		w.releaseHeld()
		return dberror.ExecutorFailure(err)
	}

	w.releaseHeld()
	return nil
}

// acquireAll acquires mode on every address, one at a time in the order the
// addresser enumerated them. Keeping the enumeration order gives every
// worker the same per-table acquisition sequence, which is the only
// cycle-avoidance discipline this module offers in the absence of a
// deadlock detector.
func (w *worker) acquireAll(addrs []lock.BlockAddress, mode lock.Mode) error {
	for _, addr := range addrs {
		if err := w.lt.Acquire(addr, mode, w.id); err != nil {
			return err
		}
		w.held[addr] = struct{}{}
	}
	return nil
}

// releaseHeld releases the union of every address this worker has acquired
// across the whole batch, in a single ReleaseAll call.
func (w *worker) releaseHeld() {
	addrs := make([]lock.BlockAddress, 0, len(w.held))
	for a := range w.held {
		addrs = append(addrs, a)
	}
	w.held = make(map[lock.BlockAddress]struct{})

	w.lt.ReleaseAll(addrs, w.id)
}
