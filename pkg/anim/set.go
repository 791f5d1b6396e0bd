package anim

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
)

// Sequencer hands out monotonically increasing sequence numbers. One
// sequencer is shared by everything that mutates a single presence's
// animations, so a remote observer merging updates can order them by sequence
// alone.
type Sequencer struct {
	n atomic.Int32
}

func (s *Sequencer) Next() int32 {
	return s.n.Add(1)
}

// Animation is an animation ID plus the sequence number of the change that
// introduced it.
type Animation struct {
	ID       uuid.UUID
	Sequence int32
}

// Set holds one always-present default locomotion animation plus any number
// of layered animations, each unique by ID. Layered animations keep insertion
// order. All operations are safe for concurrent use; the physics thread swaps
// the default while script handlers add and remove layers.
type Set struct {
	mutex       deadlock.Mutex
	defaultAnim Animation
	anims       []Animation
}

// NewSet returns a set whose default animation is the baseline stand.
func NewSet(seq *Sequencer) *Set {
	return &Set{
		defaultAnim: Animation{ID: Stand, Sequence: seq.Next()},
	}
}

// HasAnimation reports whether id is the default or one of the layered
// animations.
func (s *Set) HasAnimation(id uuid.UUID) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.defaultAnim.ID == id {
		return true
	}
	return s.indexOf(id) >= 0
}

// Add inserts a layered animation with the next sequence number. It returns
// false without consuming a sequence number when id is already playing.
func (s *Set) Add(id uuid.UUID, seq *Sequencer) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.defaultAnim.ID == id || s.indexOf(id) >= 0 {
		return false
	}
	s.anims = append(s.anims, Animation{ID: id, Sequence: seq.Next()})
	return true
}

// AddWithSequence inserts a layered animation carrying an explicit sequence
// number, for callers replaying a remote update stream.
func (s *Set) AddWithSequence(id uuid.UUID, sequence int32) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.defaultAnim.ID == id || s.indexOf(id) >= 0 {
		return false
	}
	s.anims = append(s.anims, Animation{ID: id, Sequence: sequence})
	return true
}

// Remove drops id from the set. Removing the default animation resets the
// default to the baseline stand; the set never loses its default.
func (s *Set) Remove(id uuid.UUID, seq *Sequencer) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.defaultAnim.ID == id {
		s.defaultAnim = Animation{ID: Stand, Sequence: seq.Next()}
		return true
	}
	if i := s.indexOf(id); i >= 0 {
		s.anims = append(s.anims[:i], s.anims[i+1:]...)
		return true
	}
	return false
}

// SetDefault replaces the default locomotion animation. It is a no-op
// returning false when id already is the default, so repeated selection of
// the same locomotion state causes no sequence churn.
func (s *Set) SetDefault(id uuid.UUID, seq *Sequencer) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.defaultAnim.ID == id {
		return false
	}
	s.defaultAnim = Animation{ID: id, Sequence: seq.Next()}
	return true
}

// Default returns the current default animation.
func (s *Set) Default() Animation {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.defaultAnim
}

// GetAnimations returns a consistent snapshot: the default animation first,
// then the layered animations in insertion order.
func (s *Set) GetAnimations() []Animation {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	out := make([]Animation, 0, len(s.anims)+1)
	out = append(out, s.defaultAnim)
	out = append(out, s.anims...)
	return out
}

// Clear removes every layered animation and resets the default to the
// baseline stand.
func (s *Set) Clear(seq *Sequencer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.anims = s.anims[:0]
	s.defaultAnim = Animation{ID: Stand, Sequence: seq.Next()}
}

// indexOf must be called with the mutex held.
func (s *Set) indexOf(id uuid.UUID) int {
	for i, a := range s.anims {
		if a.ID == id {
			return i
		}
	}
	return -1
}
