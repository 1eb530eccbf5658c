// Package txn implements akdb's transaction admission and execution core: a
// bounded pool of concurrent workers, each running one submitted command
// batch to completion under strict two-phase locking against an
// [akdb/pkg/lock.LockTable], reporting lifecycle transitions on an
// [akdb/pkg/events.Bus].
//
// A worker acquires every lock its batch needs before the batch's single
// executor call, and releases the union of everything it acquired in one
// phase at commit or abort.
package txn
