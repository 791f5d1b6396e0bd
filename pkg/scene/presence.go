package scene

import (
	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"

	"github.com/openmetaversefoundation/simian-sub002/pkg/anim"
	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
)

// MovementState is the avatar's requested locomotion mode.
type MovementState byte

const (
	MoveWalking MovementState = iota
	MoveRunning
	MoveFlying
)

func (m MovementState) String() string {
	switch m {
	case MoveWalking:
		return "walking"
	case MoveRunning:
		return "running"
	case MoveFlying:
		return "flying"
	}
	return "unknown"
}

// Jump-start sentinel values. A positive value is the prejump timer start in
// unix milliseconds.
const (
	JumpNone     int64 = 0
	JumpAirborne int64 = -1
)

// Presence is an avatar's physical entity. Input fields are written from
// network goroutines and read by the integrator each frame, so they sit
// behind their own lock; the remaining state belongs to the integrator.
type Presence struct {
	Entity

	inputMutex    deadlock.Mutex
	inputVelocity geom.Vector
	movementState MovementState

	// CollisionPlane is the ground-contact plane shipped to the viewer for
	// client-side movement prediction.
	CollisionPlane geom.Plane

	// JumpStart is 0 when not jumping, a unix-ms timestamp during prejump
	// and JumpAirborne once the avatar has left the ground.
	JumpStart int64

	// StunMS is the remaining landing-stun duration in milliseconds; input
	// is ignored while positive.
	StunMS float64

	// FallStart is the unix-ms timestamp of the first falling frame, 0 when
	// not falling.
	FallStart int64

	// LastState is the movement state observed on the previous frame.
	LastState MovementState

	// IsChild marks an attached or child-agent presence, which the
	// integrator skips.
	IsChild bool

	Sequencer  anim.Sequencer
	Animations *anim.Set
}

// NewPresence returns a root avatar presence standing still.
func NewPresence(name string) *Presence {
	p := &Presence{}
	p.Entity = Entity{
		ID:                uuid.New(),
		Name:              name,
		Rotation:          geom.IdentityQuaternion(),
		Scale:             geom.NewVector(0.45, 0.6, 1.9),
		CollisionsEnabled: true,
		DynamicsEnabled:   true,
		Density:           defaultDensity,
		Proxy:             ProxyAvatar,
	}
	p.Entity.pres = p
	p.Animations = anim.NewSet(&p.Sequencer)
	p.CollisionPlane = geom.Plane{Normal: geom.NewVector(0, 0, 1)}
	return p
}

// SetInput records the avatar's requested movement velocity and state. Called
// from network or script goroutines; picked up by the integrator on its next
// frame.
func (p *Presence) SetInput(velocity geom.Vector, state MovementState) {
	p.inputMutex.Lock()
	p.inputVelocity = velocity
	p.movementState = state
	p.inputMutex.Unlock()
}

// Input returns the most recently requested movement velocity and state.
func (p *Presence) Input() (geom.Vector, MovementState) {
	p.inputMutex.Lock()
	defer p.inputMutex.Unlock()
	return p.inputVelocity, p.movementState
}
