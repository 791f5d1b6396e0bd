package scene

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"

	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
)

// ProxyType selects the collision proxy the physics integrator uses for an
// entity.
type ProxyType byte

const (
	ProxyAvatar ProxyType = iota
	ProxyBox
	ProxySphere
	ProxyMesh
	ProxyConvexHull
)

func (p ProxyType) String() string {
	switch p {
	case ProxyAvatar:
		return "avatar"
	case ProxyBox:
		return "box"
	case ProxySphere:
		return "sphere"
	case ProxyMesh:
		return "mesh"
	case ProxyConvexHull:
		return "convexhull"
	}
	return "unknown"
}

const defaultDensity = 1000.0

// Entity is any simulated object in the scene. Kinematic fields are written
// by the physics goroutine during a step and published through the update
// dispatcher; other goroutines must go through EntityAddOrUpdate rather than
// poking fields and expecting observers to notice.
type Entity struct {
	ID     uuid.UUID
	Handle uint32
	Name   string

	// Parent is nil for root entities. Child entities ride their parent and
	// are not stepped individually.
	Parent *Entity

	Position        geom.Vector
	Rotation        geom.Quaternion
	Scale           geom.Vector
	Velocity        geom.Vector
	Acceleration    geom.Vector
	AngularVelocity geom.Vector
	RotationAxis    geom.Vector

	CollisionsEnabled bool
	DynamicsEnabled   bool
	Frozen            bool

	Density   float64
	Proxy     ProxyType
	MeshAsset uuid.UUID

	// Modified is set by the dispatcher on every non-suppressed update after
	// first registration; the persistence layer clears it when it flushes.
	Modified bool

	mu        deadlock.Mutex
	mass      float64
	massValid bool

	// Dispatcher shadow state. Guarded by the scene's update path.
	lastPosition    geom.Vector
	lastRotation    geom.Quaternion
	lastVelocity    geom.Vector
	lastAccel       geom.Vector
	lastAngVel      geom.Vector
	lastSignificant geom.Vector

	// Back-pointer set by NewPresence; nil for plain entities.
	pres *Presence
}

// NewEntity returns a box entity with sane defaults. Callers adjust fields
// before registering it with the scene.
func NewEntity(name string) *Entity {
	return &Entity{
		ID:                uuid.New(),
		Name:              name,
		Rotation:          geom.IdentityQuaternion(),
		Scale:             geom.NewVector(0.5, 0.5, 0.5),
		CollisionsEnabled: true,
		Density:           defaultDensity,
		Proxy:             ProxyBox,
	}
}

// Presence returns the avatar presence this entity belongs to, if any.
func (e *Entity) Presence() (*Presence, bool) {
	return e.pres, e.pres != nil
}

// ScenePosition resolves the entity's scene-absolute position through its
// parent chain.
func (e *Entity) ScenePosition() geom.Vector {
	pos := e.Position
	for p := e.Parent; p != nil; p = p.Parent {
		pos = pos.Add(p.Position)
	}
	return pos
}

// AABB is the entity's axis-aligned bounding box at its scene-absolute
// position.
func (e *Entity) AABB() geom.AABB {
	return geom.NewAABB(e.ScenePosition(), e.Scale)
}

// Mass returns the entity's mass, computing and caching it from scale and
// density on first use. The cache is invalidated whenever a scale or shape
// update flag passes through the dispatcher.
func (e *Entity) Mass() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.massValid {
		e.mass = e.Scale.X * e.Scale.Y * e.Scale.Z * e.Density
		e.massValid = true
	}
	return e.mass
}

func (e *Entity) InvalidateMass() {
	e.mu.Lock()
	e.massValid = false
	e.mu.Unlock()
}

// ShapeKey is a 64-bit identity for the entity's collision shape, used to
// look up cached mesh and hull decompositions. Scale is quantized to
// millimeters so float jitter does not defeat the cache.
func (e *Entity) ShapeKey() uint64 {
	var buf [41]byte
	buf[0] = byte(e.Proxy)
	binary.LittleEndian.PutUint64(buf[1:], uint64(int64(math.Round(e.Scale.X*1000))))
	binary.LittleEndian.PutUint64(buf[9:], uint64(int64(math.Round(e.Scale.Y*1000))))
	binary.LittleEndian.PutUint64(buf[17:], uint64(int64(math.Round(e.Scale.Z*1000))))
	copy(buf[25:], e.MeshAsset[:])
	return xxhash.Sum64(buf[:])
}
