package cullthrottle

import "github.com/boatbomber/CullThrottle/internal/obslog"

// Subscription cancels an event listener registration.
type Subscription interface {
	Unsubscribe()
}

// listenerSet is a fire-and-forget functional event bus, generalized from
// the teacher's logging.Publisher/PublisherFunc shape from log events to
// visibility-transition events.
type listenerSet[T any] struct {
	next int
	fns  map[int]func(T)
}

func newListenerSet[T any]() *listenerSet[T] {
	return &listenerSet[T]{fns: make(map[int]func(T))}
}

func (s *listenerSet[T]) add(fn func(T)) Subscription {
	id := s.next
	s.next++
	s.fns[id] = fn
	return &subscription[T]{set: s, id: id}
}

func (s *listenerSet[T]) hasListeners() bool { return len(s.fns) > 0 }

func (s *listenerSet[T]) fire(v T, logger obslog.Logger) {
	for _, fn := range s.fns {
		dispatch(fn, v, logger)
	}
}

// dispatch invokes fn, recovering from a panic so a misbehaving caller-
// supplied listener cannot corrupt scheduler state.
func dispatch[T any](fn func(T), v T, logger obslog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log(obslog.SeverityWarn, "event listener panicked", map[string]any{"recover": r})
		}
	}()
	fn(v)
}

type subscription[T any] struct {
	set any
	id  int
}

func (s *subscription[T]) Unsubscribe() {
	set := s.set.(*listenerSet[T])
	delete(set.fns, s.id)
}

type events struct {
	entered *listenerSet[Handle]
	exited  *listenerSet[Handle]
	added   *listenerSet[Handle]
	removed *listenerSet[Handle]
}

func newEvents() *events {
	return &events{
		entered: newListenerSet[Handle](),
		exited:  newListenerSet[Handle](),
		added:   newListenerSet[Handle](),
		removed: newListenerSet[Handle](),
	}
}

// OnObjectEnteredView registers fn to be called, fire-and-forget, the
// first frame an object becomes visible after not having been.
func (s *Scheduler) OnObjectEnteredView(fn func(Handle)) Subscription {
	return s.events.entered.add(fn)
}

// OnObjectExitedView registers fn to be called the first frame a
// previously-visible object stops being visible.
func (s *Scheduler) OnObjectExitedView(fn func(Handle)) Subscription {
	return s.events.exited.add(fn)
}

// OnObjectAdded registers fn to be called whenever AddObject or
// AddPhysicsObject successfully registers an object.
func (s *Scheduler) OnObjectAdded(fn func(Handle)) Subscription {
	return s.events.added.add(fn)
}

// OnObjectRemoved registers fn to be called whenever RemoveObject runs.
func (s *Scheduler) OnObjectRemoved(fn func(Handle)) Subscription {
	return s.events.removed.add(fn)
}
