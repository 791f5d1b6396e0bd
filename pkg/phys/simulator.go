package phys

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sasha-s/go-deadlock"

	"github.com/openmetaversefoundation/simian-sub002/pkg/event"
	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
)

// Terrain is the optional terrain collaborator. A nil Terrain degrades to a
// flat region at height zero with no water.
type Terrain interface {
	HeightAt(x, y float64) float64
	WaterHeight() (float64, bool)
	Heightmap() (heights []float32, width, height int, cellSize float64)
}

// Collision names the two entities of a contact. Every contact is reported
// twice, once in each ordering, so subscribers filtering on First see both
// participants.
type Collision struct {
	First  *scene.Entity
	Second *scene.Entity
}

// Impulse pairs an entity with a force-style vector for the pass-through
// dynamics events.
type Impulse struct {
	Entity *scene.Entity
	Vector geom.Vector
}

// Simulator runs the fixed-timestep movement integration loop over the
// scene's presences and the active-physics registry.
type Simulator struct {
	scene   *scene.Scene
	terrain Terrain
	log     zerolog.Logger

	targetFPS     int
	frameDuration time.Duration
	heartbeat     func()

	active *registry

	running atomic.Bool
	stopped chan struct{}

	// lastElapsed is the wall time of the previous completed frame in
	// seconds; entity steps always integrate with it, never with the frame
	// in progress. Zero before the first frame completes, which makes the
	// first sweep a no-op.
	lastElapsed float64

	// clockMS is the simulation clock in milliseconds. It advances by the
	// integrated elapsed time rather than reading the wall clock inside a
	// sweep, so fall and jump timers are consistent across a frame and
	// reproducible when stepping manually.
	clockMS float64

	dilation atomic.Uint64

	statsMutex  deadlock.RWMutex
	frameTimes  []float64
	frameCursor int
	frameCount  int

	CollisionDetected        *event.Feed[Collision]
	ImpulseApplied           *event.Feed[Impulse]
	RotationalImpulseApplied *event.Feed[Impulse]
	TorqueSet                *event.Feed[Impulse]
	RotationAxisSet          *event.Feed[Impulse]
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithTargetFPS overrides the simulation rate.
func WithTargetFPS(fps int) Option {
	return func(s *Simulator) {
		if fps > 0 {
			s.targetFPS = fps
		}
	}
}

// WithHeartbeat installs a liveness callback invoked once per completed
// sweep, for the host watchdog.
func WithHeartbeat(beat func()) Option {
	return func(s *Simulator) { s.heartbeat = beat }
}

// WithLogger replaces the simulator's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

// New builds a simulator over sc. terrain may be nil. The simulator
// subscribes to the scene's update feeds to keep the active-physics registry
// in sync with dynamics-enabled flags; it does not start stepping until
// Start.
func New(sc *scene.Scene, terrain Terrain, opts ...Option) *Simulator {
	s := &Simulator{
		scene:     sc,
		terrain:   terrain,
		log:       zerolog.Nop(),
		targetFPS: DefaultTargetFPS,
		active:    newRegistry(),
		stopped:   make(chan struct{}),

		CollisionDetected:        event.NewFeed[Collision](),
		ImpulseApplied:           event.NewFeed[Impulse](),
		RotationalImpulseApplied: event.NewFeed[Impulse](),
		TorqueSet:                event.NewFeed[Impulse](),
		RotationAxisSet:          event.NewFeed[Impulse](),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.frameDuration = time.Second / time.Duration(s.targetFPS)
	s.frameTimes = make([]float64, s.targetFPS)
	s.clockMS = float64(time.Now().UnixMilli())
	s.setDilation(1.0)

	sc.EntityUpdated.Notify(s.onEntityUpdated)
	sc.EntityRemoved.Notify(func(e *scene.Entity) {
		s.active.remove(e.Handle)
	})

	return s
}

// onEntityUpdated maintains the active-physics registry. Avatars are stepped
// through the presence list every frame and never enter the registry.
func (s *Simulator) onEntityUpdated(u scene.EntityUpdate) {
	if !u.Flags.Has(scene.UpdatePhysicalStatus) {
		return
	}
	if _, isAvatar := u.Entity.Presence(); isAvatar {
		return
	}
	if u.Entity.DynamicsEnabled {
		s.active.add(u.Entity)
	} else {
		s.active.remove(u.Entity.Handle)
	}
}

// Start launches the integration loop on its own goroutine. Calling Start on
// a running simulator is a no-op.
func (s *Simulator) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.stopped = make(chan struct{})
	go s.loop()
}

// Stop requests shutdown and blocks until the in-flight sweep completes. The
// loop only checks the flag at the top of an iteration; entity steps are
// never aborted part way.
func (s *Simulator) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	<-s.stopped
}

func (s *Simulator) loop() {
	defer close(s.stopped)

	for s.running.Load() {
		start := time.Now()

		if s.lastElapsed > 0 {
			s.Step(s.lastElapsed)
		}

		if s.heartbeat != nil {
			s.heartbeat()
		}

		work := time.Since(start)
		s.recordFrame(work.Seconds())

		if work < s.frameDuration {
			time.Sleep(s.frameDuration - work)
			s.setDilation(1.0)
			s.lastElapsed = s.frameDuration.Seconds()
		} else {
			// The server is falling behind; run the next frame with the
			// true elapsed time and advertise the slowdown.
			elapsed := work.Seconds()
			s.setDilation((1.0 / elapsed) / float64(s.targetFPS))
			s.lastElapsed = elapsed
		}
	}
}

// Step performs one full sweep over every presence and every entry in the
// active-physics registry, integrating with the given elapsed time in
// seconds. The loop calls it once per frame; tests drive it directly.
func (s *Simulator) Step(elapsed float64) {
	if elapsed <= 0 {
		return
	}
	s.clockMS += elapsed * 1000
	now := int64(s.clockMS)

	s.scene.ForEachPresence(func(p *scene.Presence) {
		s.safeStep(&p.Entity, p, elapsed, now)
	})
	for _, e := range s.active.snapshot() {
		s.safeStep(e, nil, elapsed, now)
	}
}

// safeStep isolates a single entity's integration: a panic is logged and the
// sweep moves on to the next entity.
func (s *Simulator) safeStep(e *scene.Entity, p *scene.Presence, elapsed float64, nowMS int64) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Interface("panic", r).
				Str("entity", e.ID.String()).
				Msg("entity step failed; skipping until next frame")
		}
	}()
	s.stepEntity(e, p, elapsed, nowMS)
}

// ActiveEntities reports how many non-avatar entities are currently under
// dynamic simulation.
func (s *Simulator) ActiveEntities() int {
	return s.active.len()
}

// TimeDilation is the current simulation slowdown scalar in (0, 1]; 1 means
// the loop is keeping up with its target rate.
func (s *Simulator) TimeDilation() float64 {
	return math.Float64frombits(s.dilation.Load())
}

func (s *Simulator) setDilation(v float64) {
	s.dilation.Store(math.Float64bits(v))
}

func (s *Simulator) recordFrame(seconds float64) {
	s.statsMutex.Lock()
	s.frameTimes[s.frameCursor] = seconds
	s.frameCursor = (s.frameCursor + 1) % len(s.frameTimes)
	if s.frameCount < len(s.frameTimes) {
		s.frameCount++
	}
	s.statsMutex.Unlock()
}

// FrameTimeMs is the average duration of the recent frames' simulation work
// in milliseconds.
func (s *Simulator) FrameTimeMs() float64 {
	return s.avgFrameSeconds() * 1000
}

// FPS estimates the achieved simulation rate, capped at the target rate when
// the loop is sleeping off surplus time.
func (s *Simulator) FPS() float64 {
	avg := s.avgFrameSeconds()
	if avg <= s.frameDuration.Seconds() {
		return float64(s.targetFPS)
	}
	return 1.0 / avg
}

func (s *Simulator) avgFrameSeconds() float64 {
	s.statsMutex.RLock()
	defer s.statsMutex.RUnlock()

	if s.frameCount == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < s.frameCount; i++ {
		sum += s.frameTimes[i]
	}
	return sum / float64(s.frameCount)
}

// terrainHeight samples the terrain collaborator, tolerating its absence.
func (s *Simulator) terrainHeight(x, y float64) float64 {
	if s.terrain == nil {
		return 0
	}
	return s.terrain.HeightAt(x, y)
}

// waterHeight returns the region water level; ok is false when no terrain
// module is loaded, in which case all water handling is skipped.
func (s *Simulator) waterHeight() (float64, bool) {
	if s.terrain == nil {
		return 0, false
	}
	return s.terrain.WaterHeight()
}
