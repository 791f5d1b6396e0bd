package phys

import (
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"

	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
)

// registry is the active-physics set: every dynamics-enabled non-avatar
// entity, keyed by transient handle. Writers rebuild an immutable snapshot
// slice under the lock and swap it atomically; the per-frame iteration reads
// the snapshot without ever blocking a writer.
type registry struct {
	mutex   deadlock.Mutex
	byID    map[uint32]*scene.Entity
	entries atomic.Pointer[[]*scene.Entity]
}

func newRegistry() *registry {
	r := &registry{byID: make(map[uint32]*scene.Entity)}
	empty := make([]*scene.Entity, 0)
	r.entries.Store(&empty)
	return r
}

func (r *registry) add(e *scene.Entity) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.byID[e.Handle]; ok {
		return
	}
	r.byID[e.Handle] = e
	r.rebuild()
}

func (r *registry) remove(handle uint32) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.byID[handle]; !ok {
		return
	}
	delete(r.byID, handle)
	r.rebuild()
}

// snapshot returns the current backing array. Callers must not mutate it.
func (r *registry) snapshot() []*scene.Entity {
	return *r.entries.Load()
}

func (r *registry) len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.byID)
}

// rebuild must be called with the mutex held.
func (r *registry) rebuild() {
	next := make([]*scene.Entity, 0, len(r.byID))
	for _, e := range r.byID {
		next = append(next, e)
	}
	r.entries.Store(&next)
}
