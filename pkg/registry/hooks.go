package registry

import (
	"sync"

	"github.com/agentstation/mavroute/pkg/endpoint"
)

// Hook function types for registry events.
type (
	// AddedHook is called after an endpoint is registered.
	AddedHook func(e endpoint.Endpoint)

	// RemovedHook is called after an endpoint is unregistered. forced is set
	// when a protected endpoint was removed with force.
	RemovedHook func(e endpoint.Endpoint, forced bool)
)

// hooks holds the registered callbacks. They run on the caller's goroutine
// after the registry lock has been released, in the order the changes were
// committed: a change waits until the callbacks of every earlier change have
// returned. Callbacks may read the registry but must not modify it.
type hooks struct {
	mu        sync.RWMutex
	onAdded   []AddedHook
	onRemoved []RemovedHook

	turnMu sync.Mutex
	turn   *sync.Cond
	next   uint64 // ticket whose callbacks run next
}

// OnAdded registers fn to run after every successful Add.
func (r *Registry) OnAdded(fn AddedHook) {
	r.hooks.mu.Lock()
	defer r.hooks.mu.Unlock()
	r.hooks.onAdded = append(r.hooks.onAdded, fn)
}

// OnRemoved registers fn to run after every successful removal.
func (r *Registry) OnRemoved(fn RemovedHook) {
	r.hooks.mu.Lock()
	defer r.hooks.mu.Unlock()
	r.hooks.onRemoved = append(r.hooks.onRemoved, fn)
}

func (h *hooks) added(ticket uint64, e endpoint.Endpoint) {
	h.inTurn(ticket, func() {
		h.mu.RLock()
		defer h.mu.RUnlock()
		for _, fn := range h.onAdded {
			fn(e)
		}
	})
}

func (h *hooks) removed(ticket uint64, e endpoint.Endpoint, forced bool) {
	h.inTurn(ticket, func() {
		h.mu.RLock()
		defer h.mu.RUnlock()
		for _, fn := range h.onRemoved {
			fn(e, forced)
		}
	})
}

// inTurn runs fn once every lower ticket has finished. The turn advances
// even if fn panics.
func (h *hooks) inTurn(ticket uint64, fn func()) {
	h.turnMu.Lock()
	if h.turn == nil {
		h.turn = sync.NewCond(&h.turnMu)
	}
	for h.next != ticket {
		h.turn.Wait()
	}
	h.turnMu.Unlock()

	defer func() {
		h.turnMu.Lock()
		h.next++
		h.turn.Broadcast()
		h.turnMu.Unlock()
	}()
	fn()
}
