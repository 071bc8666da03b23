package cullthrottle

import (
	"testing"

	"github.com/boatbomber/CullThrottle/internal/obslog"
)

func TestListenerSetFiresEveryListener(t *testing.T) {
	set := newListenerSet[Handle]()
	var calls []Handle
	set.add(func(h Handle) { calls = append(calls, h) })
	set.add(func(h Handle) { calls = append(calls, h) })

	set.fire(42, obslog.Nop())

	if len(calls) != 2 || calls[0] != 42 || calls[1] != 42 {
		t.Fatalf("calls = %v, want two deliveries of 42", calls)
	}
}

func TestUnsubscribeStopsFutureDeliveries(t *testing.T) {
	set := newListenerSet[Handle]()
	var calls int
	sub := set.add(func(Handle) { calls++ })

	set.fire(1, obslog.Nop())
	sub.Unsubscribe()
	set.fire(2, obslog.Nop())

	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no delivery after Unsubscribe)", calls)
	}
}

func TestDispatchRecoversFromPanickingListener(t *testing.T) {
	set := newListenerSet[Handle]()
	set.add(func(Handle) { panic("boom") })
	var secondCalled bool
	set.add(func(Handle) { secondCalled = true })

	set.fire(1, obslog.Nop()) // must not panic the test

	if !secondCalled {
		t.Fatalf("a panicking listener must not prevent other listeners from running")
	}
}

func TestHasListeners(t *testing.T) {
	set := newListenerSet[Handle]()
	if set.hasListeners() {
		t.Fatalf("hasListeners() = true on an empty set")
	}
	set.add(func(Handle) {})
	if !set.hasListeners() {
		t.Fatalf("hasListeners() = false after add")
	}
}
