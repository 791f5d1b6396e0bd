package scene

import (
	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"

	"github.com/openmetaversefoundation/simian-sub002/pkg/event"
	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
)

// EntityUpdate is the payload of the entity-updated feed: the entity plus the
// field-change mask that survived diffing and any caller-supplied extra
// flags.
type EntityUpdate struct {
	Entity *Entity
	Flags  UpdateFlags
	Extra  uint32
}

// Scene stores every entity in the region, keyed by persistent ID and by
// transient numeric handle, and owns the update/diff dispatcher that decides
// which changes are worth telling anyone about.
type Scene struct {
	mutex      deadlock.RWMutex
	entities   map[uuid.UUID]*Entity
	byHandle   map[uint32]*Entity
	presences  []*Presence
	nextHandle uint32

	// updateMutex serializes the diff-and-shadow section of
	// EntityAddOrUpdate and guards kinematic reads and writes that cross
	// goroutines. Feed dispatch happens outside it so handlers may call
	// back into the scene.
	updateMutex deadlock.Mutex

	EntityUpdated       *event.Feed[EntityUpdate]
	EntityRemoved       *event.Feed[*Entity]
	PresenceAdded       *event.Feed[*Presence]
	SignificantMovement *event.Feed[*Entity]
	AnimationsChanged   *event.Feed[*Presence]
}

func NewScene() *Scene {
	return &Scene{
		entities:            make(map[uuid.UUID]*Entity),
		byHandle:            make(map[uint32]*Entity),
		EntityUpdated:       event.NewFeed[EntityUpdate](),
		EntityRemoved:       event.NewFeed[*Entity](),
		PresenceAdded:       event.NewFeed[*Presence](),
		SignificantMovement: event.NewFeed[*Entity](),
		AnimationsChanged:   event.NewFeed[*Presence](),
	}
}

// EntityByID looks an entity up by its persistent ID.
func (s *Scene) EntityByID(id uuid.UUID) (*Entity, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	e, ok := s.entities[id]
	return e, ok
}

// EntityByHandle looks an entity up by its transient numeric handle.
func (s *Scene) EntityByHandle(handle uint32) (*Entity, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	e, ok := s.byHandle[handle]
	return e, ok
}

func (s *Scene) EntityCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entities)
}

// ForEachEntity calls fn for every entity. It iterates a snapshot, so fn may
// mutate the scene.
func (s *Scene) ForEachEntity(fn func(*Entity)) {
	s.mutex.RLock()
	snapshot := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		snapshot = append(snapshot, e)
	}
	s.mutex.RUnlock()

	for _, e := range snapshot {
		fn(e)
	}
}

// ForEachPresence calls fn for every avatar presence, in join order.
func (s *Scene) ForEachPresence(fn func(*Presence)) {
	s.mutex.RLock()
	snapshot := make([]*Presence, len(s.presences))
	copy(snapshot, s.presences)
	s.mutex.RUnlock()

	for _, p := range snapshot {
		fn(p)
	}
}

// EntityState is a point-in-time copy of an entity's transform and
// kinematics.
type EntityState struct {
	Position geom.Vector
	Rotation geom.Quaternion
	Velocity geom.Vector
	Scale    geom.Vector
}

// KinematicState copies the entity's transform under the update lock. Any
// goroutine other than the integrator's that wants to read a transform while
// the simulation runs goes through this rather than the raw fields.
func (s *Scene) KinematicState(e *Entity) EntityState {
	s.updateMutex.Lock()
	defer s.updateMutex.Unlock()
	return EntityState{
		Position: e.Position,
		Rotation: e.Rotation,
		Velocity: e.Velocity,
		Scale:    e.Scale,
	}
}

// CommitKinematics stores one frame's integration result for an entity. The
// write happens under the same lock KinematicState reads behind.
func (s *Scene) CommitKinematics(e *Entity, position, velocity geom.Vector) {
	s.updateMutex.Lock()
	e.Position = position
	e.Velocity = velocity
	s.updateMutex.Unlock()
}

// EntityRemove drops an entity from the scene and fires the removed feed.
// Removing an unregistered entity is a no-op.
func (s *Scene) EntityRemove(e *Entity) {
	s.mutex.Lock()
	if _, ok := s.entities[e.ID]; !ok {
		s.mutex.Unlock()
		return
	}
	delete(s.entities, e.ID)
	delete(s.byHandle, e.Handle)
	if p, isAvatar := e.Presence(); isAvatar {
		for i, existing := range s.presences {
			if existing == p {
				s.presences = append(s.presences[:i], s.presences[i+1:]...)
				break
			}
		}
	}
	s.mutex.Unlock()

	s.EntityRemoved.Send(e)
}
