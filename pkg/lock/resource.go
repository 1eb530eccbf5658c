package lock

// LockRequest is one waiting-or-holding record inside a ResourceEntry's
// queue. Requests form a circular doubly linked list; head.prev is always
// the tail.
type LockRequest struct {
	txn     TxnID
	mode    Mode
	granted bool

	next, prev *LockRequest
}

// Txn returns the requesting transaction.
func (r *LockRequest) Txn() TxnID { return r.txn }

// Mode returns the requested access mode.
func (r *LockRequest) Mode() Mode { return r.mode }

// Granted reports whether the request currently holds the lock.
func (r *LockRequest) Granted() bool { return r.granted }

// ResourceEntry is the lock-queue container for one BlockAddress. It is
// created on the first acquire for that address and removed the instant its
// queue empties.
type ResourceEntry struct {
	addr     BlockAddress
	dominant Mode
	head     *LockRequest // oldest request; nil when the queue is empty

	// bucketNext/bucketPrev link this entry into its hash bucket's circular
	// list of ResourceEntries colliding on the same address.
	bucketNext, bucketPrev *ResourceEntry
}

// Addr returns the block address this entry guards.
func (e *ResourceEntry) Addr() BlockAddress { return e.addr }

// Dominant returns the mode of the current queue head.
func (e *ResourceEntry) Dominant() Mode { return e.dominant }

// enqueue appends a new request for (txn, mode) at the tail of the circular
// queue (insertion is always at head.prev) and returns it.
func (e *ResourceEntry) enqueue(txn TxnID, mode Mode) *LockRequest {
	req := &LockRequest{txn: txn, mode: mode}
	if e.head == nil {
		req.next, req.prev = req, req
		e.head = req
		return req
	}
	tail := e.head.prev
	req.next = e.head
	req.prev = tail
	tail.next = req
	e.head.prev = req
	return req
}

// findByTxn returns this transaction's existing request on the entry, if
// any. A transaction enqueues at most one request per address.
func (e *ResourceEntry) findByTxn(txn TxnID) *LockRequest {
	if e.head == nil {
		return nil
	}
	r := e.head
	for {
		if r.txn == txn {
			return r
		}
		r = r.next
		if r == e.head {
			return nil
		}
	}
}

// unlink removes req from the circular queue in place. It does not touch
// e.head bookkeeping beyond advancing it off a removed head.
func (e *ResourceEntry) unlink(req *LockRequest) {
	if req.next == req {
		e.head = nil
	} else {
		req.prev.next = req.next
		req.next.prev = req.prev
		if e.head == req {
			e.head = req.next
		}
	}
	req.next, req.prev = nil, nil
}

// removeTxn unlinks every request belonging to txn. At most one should
// exist, but release scans the whole queue rather than trusting that.
func (e *ResourceEntry) removeTxn(txn TxnID) {
	for {
		r := e.findByTxn(txn)
		if r == nil {
			return
		}
		e.unlink(r)
	}
}

// empty reports whether the queue holds no requests.
func (e *ResourceEntry) empty() bool { return e.head == nil }

// evaluateGrant implements the grant predicate for request r within its
// entry: head wins, shared requests ride along behind a shared head, and an
// exclusive head's own transaction may re-enter.
func evaluateGrant(e *ResourceEntry, r *LockRequest) bool {
	head := e.head
	switch {
	case r == head:
		return true
	case head.mode == Shared && r.mode == Shared:
		return true
	case head.mode == Exclusive && head.txn == r.txn:
		return true
	default:
		return false
	}
}

// waiters returns every request currently queued on the entry, head first,
// for Snapshot and the tests.
func (e *ResourceEntry) waiters() []*LockRequest {
	if e.head == nil {
		return nil
	}
	out := make([]*LockRequest, 0, 4)
	r := e.head
	for {
		out = append(out, r)
		r = r.next
		if r == e.head {
			return out
		}
	}
}
