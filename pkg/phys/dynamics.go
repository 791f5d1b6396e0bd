package phys

import (
	"errors"

	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
)

// ErrNotSupported is returned for dynamics operations this integrator cannot
// express. The kinematic backend has no rigid-body solver; a fuller physics
// backend can be swapped in behind the same surface.
var ErrNotSupported = errors.New("operation not supported by the kinematic integrator")

// ApplyImpulse emits the impulse-applied event. The kinematic integrator
// applies no physical effect; subscribers (script engines, loggers) still see
// the request.
func (s *Simulator) ApplyImpulse(e *scene.Entity, impulse geom.Vector) {
	s.ImpulseApplied.Send(Impulse{Entity: e, Vector: impulse})
}

// ApplyRotationalImpulse emits the rotational-impulse event with no physical
// effect.
func (s *Simulator) ApplyRotationalImpulse(e *scene.Entity, impulse geom.Vector) {
	s.RotationalImpulseApplied.Send(Impulse{Entity: e, Vector: impulse})
}

// SetTorque emits the torque-set event with no physical effect.
func (s *Simulator) SetTorque(e *scene.Entity, torque geom.Vector) {
	s.TorqueSet.Send(Impulse{Entity: e, Vector: torque})
}

// SetRotationAxis constrains which axes an entity may rotate around and
// emits the rotation-axis event. Mesh and convex-hull proxies would need the
// shape-aware backend to honor the constraint, so they are rejected.
func (s *Simulator) SetRotationAxis(e *scene.Entity, axis geom.Vector) error {
	if e.Proxy == scene.ProxyMesh || e.Proxy == scene.ProxyConvexHull {
		return ErrNotSupported
	}
	e.RotationAxis = axis
	s.RotationAxisSet.Send(Impulse{Entity: e, Vector: axis})
	return nil
}
