package scene

// positionTolerance is the absolute per-component tolerance under which a
// position or rotation delta is considered noise and suppressed.
const positionTolerance = 0.01

// significantMovementSq is the squared distance an entity must travel from
// its last recorded significant position before a significant-movement event
// fires (2 units of radius).
const significantMovementSq = 4.0

// EntityAddOrUpdate is the update/diff dispatcher. The first call for an
// entity registers it (assigning its transient handle) and bypasses diffing;
// subsequent calls compare the changed fields against the last published
// values, clear bits for fields that did not really move, and suppress the
// event entirely when nothing survives. The FullUpdate sentinel bypasses all
// of that and publishes every field.
func (s *Scene) EntityAddOrUpdate(e *Entity, flags UpdateFlags, extra uint32) {
	s.mutex.Lock()
	_, known := s.entities[e.ID]
	if !known {
		s.nextHandle++
		e.Handle = s.nextHandle
		s.entities[e.ID] = e
		s.byHandle[e.Handle] = e
		if p, isAvatar := e.Presence(); isAvatar {
			s.presences = append(s.presences, p)
		}
	}
	s.mutex.Unlock()

	if !known {
		s.registerEntity(e, flags, extra)
		return
	}

	s.updateMutex.Lock()

	forced := flags == FullUpdate
	if !forced {
		if flags.Has(UpdatePosition) && e.Position.ApproxEqual(e.lastPosition, positionTolerance) {
			flags &^= UpdatePosition
		}
		if flags.Has(UpdateRotation) && e.Rotation.ApproxEqual(e.lastRotation, positionTolerance) {
			flags &^= UpdateRotation
		}
		// Kinematic fields diff exactly, and only on physical entities: an
		// entity the integrator drives that keeps the same velocity is
		// genuinely unchanged, there is no sensor noise to filter. An edit
		// to a non-physical entity always publishes.
		if e.DynamicsEnabled {
			if flags.Has(UpdateVelocity) && e.Velocity == e.lastVelocity {
				flags &^= UpdateVelocity
			}
			if flags.Has(UpdateAcceleration) && e.Acceleration == e.lastAccel {
				flags &^= UpdateAcceleration
			}
			if flags.Has(UpdateAngularVelocity) && e.AngularVelocity == e.lastAngVel {
				flags &^= UpdateAngularVelocity
			}
		}
	}

	if flags.Has(UpdateScale | UpdateShape) {
		e.InvalidateMass()
	}

	// Significant movement is tracked against the resolved scene-absolute
	// position and runs whether or not the update itself is suppressed.
	moved := false
	abs := e.ScenePosition()
	if abs.Sub(e.lastSignificant).LengthSquared() > significantMovementSq {
		e.lastSignificant = abs
		moved = true
	}

	suppressed := flags == 0 && extra == 0 && !forced
	if !suppressed {
		e.Modified = true
		// Shadow fields advance only for fields that were considered
		// changed; a sub-tolerance wiggle keeps diffing against the old
		// value so repeated wiggles can never silently drift away.
		if forced || flags.Has(UpdatePosition) {
			e.lastPosition = e.Position
		}
		if forced || flags.Has(UpdateRotation) {
			e.lastRotation = e.Rotation
		}
		if forced || flags.Has(UpdateVelocity) {
			e.lastVelocity = e.Velocity
		}
		if forced || flags.Has(UpdateAcceleration) {
			e.lastAccel = e.Acceleration
		}
		if forced || flags.Has(UpdateAngularVelocity) {
			e.lastAngVel = e.AngularVelocity
		}
	}

	s.updateMutex.Unlock()

	if moved {
		s.SignificantMovement.Send(e)
	}
	if !suppressed {
		s.EntityUpdated.Send(EntityUpdate{Entity: e, Flags: flags, Extra: extra})
	}
}

// registerEntity finishes a first registration: shadow state is primed from
// the entity's current fields and the event goes out with the caller's mask
// untouched.
func (s *Scene) registerEntity(e *Entity, flags UpdateFlags, extra uint32) {
	s.updateMutex.Lock()
	e.lastPosition = e.Position
	e.lastRotation = e.Rotation
	e.lastVelocity = e.Velocity
	e.lastAccel = e.Acceleration
	e.lastAngVel = e.AngularVelocity
	e.lastSignificant = e.ScenePosition()
	s.updateMutex.Unlock()

	if flags.Has(UpdateScale | UpdateShape) {
		e.InvalidateMass()
	}

	if p, isAvatar := e.Presence(); isAvatar {
		s.PresenceAdded.Send(p)
	}
	s.EntityUpdated.Send(EntityUpdate{Entity: e, Flags: flags, Extra: extra})
}
