package phys

import "time"

// DefaultTargetFPS is the simulation rate the integrator aims for.
const DefaultTargetFPS = 10

const (
	// gravity is the downward acceleration applied to falling entities, in
	// meters per second squared.
	gravity = 9.8

	// collisionMargin is how close a probe ray hit has to be before the
	// entity is considered touching the collider, and how near the floor an
	// entity must be before its vertical velocity is zeroed.
	collisionMargin = 0.3

	// fallForgiveness keeps avatars hovering a hair above their lower limit
	// from being classified as falling.
	fallForgiveness = 0.25

	// fallDelay is how long an avatar must fall before the falling
	// animation triggers; landing tiers are multiples of it.
	fallDelay = 0.33

	// prejumpDelay is the crouch-wind-up before a jump launches.
	prejumpDelay = 250 * time.Millisecond

	jumpImpulseVertical   = 8.5
	jumpImpulseHorizontal = 8.0

	// hoverImpulse nudges a flying avatar off the ground when it is resting
	// exactly on its lower limit.
	hoverImpulse = 2.0

	// terminalVelocity bounds the per-frame vertical speed of any entity,
	// in meters per second.
	terminalVelocity = 54.0

	// buoyancyLift is the constant upward velocity applied underwater.
	buoyancyLift = 1.5

	// standupStunMS is the landing stun imposed after the longest fall
	// tier.
	standupStunMS = 2000.0

	// Per-frame velocity damping factors.
	groundFriction = 0.2
	flyDamping     = 0.66
	flyDampingZ    = 0.33
	waterDamping   = 0.25
	airInertia     = 0.95

	// airDrift scales how much horizontal input still steers an avatar that
	// is already falling.
	airDrift = 0.2
)

// probeDistance bounds the horizontal and vertical collision raycasts. Long
// enough to catch anything relevant within a frame, short enough to keep the
// linear scans cheap.
const probeDistance = 256.0
