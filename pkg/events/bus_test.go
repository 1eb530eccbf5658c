package events

import (
	"sync"
	"testing"
)

func TestSubscribeAndPublishDispatchesToHandler(t *testing.T) {
	bus := NewBus()

	var got Event
	var mu sync.Mutex
	bus.Subscribe(LockReleased, func(e Event) {
		mu.Lock()
		got = e
		mu.Unlock()
	})

	bus.Publish(Event{Kind: LockReleased, TxnID: 7})

	mu.Lock()
	defer mu.Unlock()
	if got.Kind != LockReleased || got.TxnID != 7 {
		t.Errorf("handler did not receive the published event, got %+v", got)
	}
}

func TestPublishOnlyDispatchesMatchingKind(t *testing.T) {
	bus := NewBus()

	var calls int
	var mu sync.Mutex
	bus.Subscribe(TransactionFinished, func(Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	bus.Publish(Event{Kind: LockReleased})
	bus.Publish(Event{Kind: AllTransactionsFinished})

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("handler subscribed to TransactionFinished should not fire for other kinds, fired %d times", calls)
	}
}

func TestMultipleSubscribersAllReceiveTheEvent(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var calls int
	handler := func(Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	}
	bus.Subscribe(LockReleased, handler)
	bus.Subscribe(LockReleased, handler)
	bus.Subscribe(LockReleased, handler)

	bus.Publish(Event{Kind: LockReleased})

	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Errorf("expected all 3 subscribers to fire, got %d", calls)
	}
}

func TestPublishWithNoSubscribersDoesNotPanic(t *testing.T) {
	bus := NewBus()
	bus.Publish(Event{Kind: AllTransactionsFinished})
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		LockReleased:            "LockReleased",
		TransactionFinished:     "TransactionFinished",
		AllTransactionsFinished: "AllTransactionsFinished",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
