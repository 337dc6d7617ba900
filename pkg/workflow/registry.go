package workflow

import "sync"

// Slots closed longer than the registry cares to track are swept once the
// map grows past this bound.
const maxIdleSlots = 512

// Registry hands out the single workflow slot for an action family within
// one dashboard session. Controllers hold a registry per action family so
// overlapping requests from the same operator contend on one state
// machine: a second open while a submit is in flight is rejected, and a
// workflow left open by a failed submit is still there when the retry
// arrives.
type Registry[C any] struct {
	mu    sync.Mutex
	slots map[string]*Workflow[C]
}

func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{slots: make(map[string]*Workflow[C])}
}

// For returns the session's workflow, creating it on first use.
func (r *Registry[C]) For(key string) *Workflow[C] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.slots) > maxIdleSlots {
		for k, w := range r.slots {
			if k != key && w.Phase() == PhaseClosed {
				delete(r.slots, k)
			}
		}
	}
	w, ok := r.slots[key]
	if !ok {
		w = New[C]()
		r.slots[key] = w
	}
	return w
}
