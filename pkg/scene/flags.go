package scene

// UpdateFlags is the field-change bitmask passed through EntityAddOrUpdate.
type UpdateFlags uint32

const (
	UpdatePosition UpdateFlags = 1 << iota
	UpdateRotation
	UpdateVelocity
	UpdateAcceleration
	UpdateAngularVelocity
	UpdateScale
	UpdateShape
	UpdatePhysicalStatus
	UpdateCollisionPlane
	UpdateAnimations
	UpdateParent
)

// FullUpdate is the reserved all-bits sentinel. Passing it bypasses diffing
// entirely and forces an update event even when nothing changed.
const FullUpdate UpdateFlags = ^UpdateFlags(0)

func (f UpdateFlags) Has(other UpdateFlags) bool {
	return f&other != 0
}
