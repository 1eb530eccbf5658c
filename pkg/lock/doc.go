// Package lock implements the hashed lock table and strict two-phase-locking
// grant protocol described for akdb's transaction core.
//
// # Overview
//
// A [LockTable] is a fixed-size array of hash buckets keyed by
// [BlockAddress]. Each bucket holds a circular list of [ResourceEntry]
// values that collide on the bucket's hash; each ResourceEntry in turn owns
// a FIFO queue of [LockRequest] records, one per waiting or holding
// transaction.
//
// # Grant predicate
//
// A request r in a resource's queue is granted iff:
//
//   - r is the queue head (the oldest request), or
//   - the head holds [Shared] and r also requests [Shared], or
//   - the head holds [Exclusive] and belongs to the same transaction as r
//     (re-entrant acquire).
//
// Everything else waits. This is strict FIFO 2PL with a shared-compatibility
// fast path. The predicate looks only at the head and at r, so while the head
// holds Shared a new shared request is granted even if an exclusive waiter
// is queued ahead of it; that waiter is not protected from later readers.
//
// # Concurrency
//
// One mutex protects the table, its buckets, and every resource's queue.
// One condition variable, broadcast on every release, wakes all waiters to
// re-check their grant predicate. This is coarse but correct at the
// concurrency levels [akdb/pkg/txn] drives it at.
//
// # What this package does not do
//
// It does not detect deadlocks. [LockTable.Acquire] only ever blocks or
// times out (if a wait timeout is configured); callers that need cycle
// freedom must enforce a lock ordering or run an out-of-band detector.
package lock
