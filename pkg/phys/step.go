package phys

import (
	"math"

	"github.com/google/uuid"

	"github.com/openmetaversefoundation/simian-sub002/pkg/anim"
	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
)

// stepEntity advances one entity by elapsed seconds. p is nil for non-avatar
// entities; for presences it is the avatar the entity belongs to. nowMS is
// the sweep's shared wall-clock timestamp so every entity in a frame agrees
// on "now".
func (s *Simulator) stepEntity(e *scene.Entity, p *scene.Presence, elapsed float64, nowMS int64) {
	if !e.DynamicsEnabled || e.Frozen {
		return
	}
	if e.Parent != nil {
		return
	}
	if p != nil && p.IsChild {
		return
	}

	input := geom.Vector{}
	state := scene.MoveWalking
	stunned := false
	if p != nil {
		input, state = p.Input()
		if p.StunMS > 0 {
			stunned = true
			input = geom.Vector{}
			p.StunMS -= elapsed * 1000
			if p.StunMS < 0 {
				p.StunMS = 0
			}
		}
		// A jump wind-up roots the avatar: movement input is dropped from
		// the frame the prejump begins until the launch.
		windup := p.JumpStart > 0
		if !windup && input.Z > 0 && p.JumpStart == scene.JumpNone &&
			p.FallStart == 0 && state != scene.MoveFlying {
			if water, ok := s.waterHeight(); !ok || e.Position.Z > water {
				windup = true
			}
		}
		if windup {
			input.X = 0
			input.Y = 0
		}
	}
	flying := p != nil && state == scene.MoveFlying
	falling := p != nil && p.FallStart != 0

	pos := e.Position
	vel := e.Velocity

	// Falling avatars do not steer; only a drift fraction of their input
	// still applies.
	drift := 1.0
	if falling && !flying {
		drift = airDrift
	}

	moveX := (vel.X + input.X*drift) * elapsed
	moveY := (vel.Y + input.Y*drift) * elapsed

	// Horizontal collision probes, one per axis, in the direction of travel.
	var colliders []*scene.Entity
	if dir := sign(vel.X + input.X); dir != 0 {
		ray := geom.Ray{Origin: e.ScenePosition(), Direction: geom.NewVector(dir, 0, 0)}
		if hit, dist, ok := s.sceneRaycast(ray, e, false); ok && dist <= collisionMargin {
			moveX = 0
			vel.X = 0
			if hit != nil {
				colliders = append(colliders, hit)
			}
		}
	}
	if dir := sign(vel.Y + input.Y); dir != 0 {
		ray := geom.Ray{Origin: e.ScenePosition(), Direction: geom.NewVector(0, dir, 0)}
		if hit, dist, ok := s.sceneRaycast(ray, e, false); ok && dist <= collisionMargin {
			moveY = 0
			vel.Y = 0
			if hit != nil {
				colliders = append(colliders, hit)
			}
		}
	}

	// Terrain-aware horizontal move: walking up or down a slope bleeds off
	// speed with the slope's steepness, so avatars do not skate up hills.
	heightBefore := s.terrainHeight(pos.X, pos.Y)
	heightAfter := s.terrainHeight(pos.X+moveX, pos.Y+moveY)
	if p != nil && !flying && heightBefore != heightAfter {
		damp := 1 + math.Sqrt2*math.Abs(heightAfter-heightBefore)
		moveX /= damp
		moveY /= damp
	}
	pos.X += moveX
	pos.Y += moveY

	// Gravity raycast straight down; standing on an entity raises the
	// effective floor above the terrain.
	floor := s.terrainHeight(pos.X, pos.Y)
	down := geom.Ray{
		Origin:    pos,
		Direction: geom.NewVector(0, 0, -1),
	}
	if hit, dist, ok := s.sceneRaycast(down, e, false); ok && hit != nil {
		if hitZ := pos.Z - dist; hitZ > floor {
			floor = hitZ
			colliders = append(colliders, hit)
		}
	}

	lowerLimit := floor + e.Scale.Z/2
	water, hasWater := s.waterHeight()
	waterChest := water - e.Scale.Z/3

	// vertInput carries input.Z into the final integration only for modes
	// where vertical input is motion rather than jump intent.
	vertInput := 0.0
	var nextAnim uuid.UUID

	switch {
	case flying:
		p.FallStart = 0
		p.JumpStart = scene.JumpNone

		vel.X *= flyDamping
		vel.Y *= flyDamping
		vel.Z *= flyDampingZ
		vertInput = input.Z

		if pos.Z == lowerLimit {
			vel.Z += hoverImpulse
		}

		switch {
		case input.Z > 0:
			nextAnim = anim.HoverUp
		case input.Z < 0:
			nextAnim = anim.HoverDown
		case input.X != 0 || input.Y != 0:
			nextAnim = anim.Fly
		default:
			nextAnim = anim.Hover
		}

	case pos.Z > lowerLimit+fallForgiveness || (hasWater && pos.Z <= waterChest):
		switch {
		case !hasWater || pos.Z > water:
			// Airborne above any water.
			if p != nil {
				if p.FallStart == 0 {
					p.FallStart = nowMS
				}
				fallElapsed := float64(nowMS-p.FallStart) / 1000
				vel.X *= airInertia
				vel.Y *= airInertia
				vel.Z = -gravity * fallElapsed
				if fallElapsed > fallDelay && p.JumpStart == scene.JumpNone {
					nextAnim = anim.FallDown
				}
			} else {
				vel.Z -= gravity * elapsed
			}

		case pos.Z > waterChest:
			// Bobbing at the waterline.
			vel.X *= waterDamping
			vel.Y *= waterDamping
			vel.Z = 0
			vertInput = input.Z
			if input.Z >= 0 {
				pos.Z = waterChest
				vertInput = 0
			}
			if p != nil {
				p.FallStart = 0
				switch {
				case input.Z > 0:
					nextAnim = anim.HoverUp
				case input.X != 0 || input.Y != 0:
					nextAnim = anim.SwimForward
				default:
					nextAnim = anim.Hover
				}
			}

		default:
			// Fully underwater: heavy drag plus a little buoyancy.
			vel.X *= waterDamping
			vel.Y *= waterDamping
			vel.Z = vel.Z*waterDamping + buoyancyLift
			vertInput = input.Z
			if p != nil {
				p.FallStart = 0
				if input.X != 0 || input.Y != 0 {
					nextAnim = anim.SwimForward
				} else {
					nextAnim = anim.SwimDown
				}
			}
		}

	default:
		// On or near the floor.
		if p != nil {
			if p.FallStart > 0 && p.JumpStart == scene.JumpNone {
				fallElapsed := float64(nowMS-p.FallStart) / 1000
				switch {
				case fallElapsed > fallDelay*3:
					nextAnim = anim.StandUp
					p.StunMS = standupStunMS
				case fallElapsed > fallDelay*2:
					nextAnim = anim.MediumLand
				case fallElapsed > fallDelay:
					nextAnim = anim.Land
				}
			}
			p.FallStart = 0
			p.CollisionPlane = geom.Plane{
				Normal: geom.NewVector(0, 0, 1),
				Offset: floor,
			}
		}

		vel.X *= groundFriction
		vel.Y *= groundFriction
		vel.Z = 0
		pos.Z = lowerLimit

		if p != nil {
			if input.Z > 0 {
				switch {
				case p.JumpStart == scene.JumpAirborne:
					// Pressing jump while already airborne from a jump ends
					// the jump and deliberately skips the rest of this
					// frame's integration, position and velocity included.
					p.JumpStart = scene.JumpNone
					return

				case p.JumpStart == scene.JumpNone:
					p.JumpStart = nowMS
					// A landing animation chosen above wins the frame.
					if nextAnim == uuid.Nil {
						nextAnim = anim.PreJump
					}

				case nowMS-p.JumpStart >= prejumpDelay.Milliseconds():
					// Wind-up over: launch along the current travel
					// direction.
					dir := vel.Horizontal().Normalize()
					vel.X += dir.X * jumpImpulseHorizontal
					vel.Y += dir.Y * jumpImpulseHorizontal
					vel.Z = jumpImpulseVertical
					p.JumpStart = scene.JumpAirborne
					nextAnim = anim.Jump

				default:
					nextAnim = anim.PreJump
				}
			} else {
				p.JumpStart = scene.JumpNone
				// The idle selection only runs when landing did not already
				// pick an animation for this frame.
				if nextAnim == uuid.Nil {
					horizontal := input.X != 0 || input.Y != 0
					switch {
					case input.Z < 0 && horizontal:
						nextAnim = anim.CrouchWalk
					case input.Z < 0:
						nextAnim = anim.Crouch
					case horizontal && state == scene.MoveRunning:
						nextAnim = anim.Run
					case horizontal:
						nextAnim = anim.Walk
					default:
						nextAnim = anim.Stand
					}
				}
			}
		}
	}

	if p != nil {
		p.LastState = state
	}

	// Swap the default locomotion animation unless the presence entered the
	// frame stunned; the landing frame that applies a stun still gets to
	// play its landing animation. The set itself suppresses redundant
	// swaps.
	if p != nil && nextAnim != uuid.Nil && !stunned {
		if p.Animations.SetDefault(nextAnim, &p.Sequencer) {
			s.scene.AnimationsChanged.Send(p)
		}
	}

	// Final integration: vertical delta is bounded by terminal velocity,
	// the entity never sinks below its lower limit, and a near-floor entity
	// has its downward velocity cancelled.
	dz := (vel.Z + vertInput) * elapsed
	limit := terminalVelocity * elapsed
	if dz > limit {
		dz = limit
	} else if dz < -limit {
		dz = -limit
	}
	pos.Z += dz
	if vel.Z > terminalVelocity {
		vel.Z = terminalVelocity
	} else if vel.Z < -terminalVelocity {
		vel.Z = -terminalVelocity
	}

	if pos.Z < lowerLimit {
		pos.Z = lowerLimit
	}
	if pos.Z-lowerLimit <= collisionMargin && vel.Z < 0 {
		vel.Z = 0
	}

	s.scene.CommitKinematics(e, pos, vel)

	for _, other := range colliders {
		s.CollisionDetected.Send(Collision{First: e, Second: other})
		s.CollisionDetected.Send(Collision{First: other, Second: e})
	}

	s.scene.EntityAddOrUpdate(e, scene.UpdatePosition|scene.UpdateVelocity, 0)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
