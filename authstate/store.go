package authstate

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Store is the single holder of the current State with replace-and-broadcast
// semantics. One producer (the session controller) and any number of
// consumers. Replace calls are serialized and every subscriber observes the
// exact replacement sequence, starting from the state current at
// subscription time.
type Store struct {
	emitMu  sync.Mutex
	current atomic.Pointer[State]

	subMu  sync.Mutex
	subs   []*subscription
	closed bool
}

type subscription struct {
	fn        func(State)
	cancelled atomic.Bool
}

// NewStore returns a Store initialized to StatusInitializing with a pending
// load, matching application bootstrap.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&State{Status: StatusInitializing, IsLoading: true})

	return s
}

// Current returns the latest state. It never blocks and is safe to call from
// inside a subscriber callback.
func (s *Store) Current() State {
	return *s.current.Load()
}

// Replace swaps in the new state and synchronously invokes every live
// subscriber with it before returning. Calls after Close are dropped.
func (s *Store) Replace(state State) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.subMu.Lock()
	if s.closed {
		s.subMu.Unlock()

		return
	}
	subs := slices.Clone(s.subs)
	s.subMu.Unlock()

	s.current.Store(&state)

	// Iterate over a snapshot so subscribers may unsubscribe without
	// invalidating this broadcast.
	for _, sub := range subs {
		if sub.cancelled.Load() {
			continue
		}
		sub.fn(state)
	}
}

// Subscribe registers fn and immediately invokes it with the current state.
// Registration and the initial delivery are atomic with respect to Replace,
// so fn observes the exact replacement sequence starting from the current
// value, without gaps or duplicates. fn must not call Subscribe. The
// returned cancel function removes the subscription and is safe to call
// more than once, including from inside a callback.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	sub := &subscription{fn: fn}

	s.emitMu.Lock()
	s.subMu.Lock()
	closed := s.closed
	if !closed {
		s.subs = append(s.subs, sub)
	}
	s.subMu.Unlock()

	if !closed {
		fn(s.Current())
	}
	s.emitMu.Unlock()

	if closed {
		return func() {}
	}

	return func() {
		if sub.cancelled.Swap(true) {
			return
		}
		s.subMu.Lock()
		s.subs = slices.DeleteFunc(s.subs, func(x *subscription) bool { return x == sub })
		s.subMu.Unlock()
	}
}

// Close completes the store. All subscriptions are released and subsequent
// Replace calls are dropped. The last state remains readable via Current.
func (s *Store) Close() {
	s.subMu.Lock()
	s.closed = true
	s.subs = nil
	s.subMu.Unlock()
}
