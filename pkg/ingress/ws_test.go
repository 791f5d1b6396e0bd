package ingress

import (
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/openmetaversefoundation/simian-sub002/pkg/anim"
	"github.com/openmetaversefoundation/simian-sub002/pkg/config"
	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
	"github.com/openmetaversefoundation/simian-sub002/pkg/phys"
	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
)

func newTestIngress() (*scene.Scene, *WSIngress) {
	sc := scene.NewScene()
	sim := phys.New(sc, nil)
	settings := config.Default().Ingress
	server := NewWSIngress(sc, sim, settings, "test", zerolog.Nop())
	return sc, server
}

func newTestClient(p *scene.Presence) *Client {
	return &Client{
		presence:  p,
		send:      make(chan []byte, CLIENT_SEND_LIMIT),
		limiter:   rate.NewLimiter(rate.Inf, 1),
		closeSlow: func() {},
	}
}

func TestInputMessageDrivesPresence(t *testing.T) {
	_, server := newTestIngress()
	p := scene.NewPresence("avatar")
	client := newTestClient(p)

	msg, err := cbor.Marshal(InputMessage{
		Op:       InputOp,
		Velocity: [3]float64{1, 2, 0},
		State:    int(scene.MoveRunning),
	})
	assert.NoError(t, err)

	done := server.handleMessage(client, msg)
	assert.False(t, done)

	vel, state := p.Input()
	assert.Equal(t, 1.0, vel.X)
	assert.Equal(t, 2.0, vel.Y)
	assert.Equal(t, scene.MoveRunning, state)
}

func TestInputMessageClampsBadState(t *testing.T) {
	_, server := newTestIngress()
	p := scene.NewPresence("avatar")
	client := newTestClient(p)

	msg, _ := cbor.Marshal(InputMessage{Op: InputOp, State: 99})
	server.handleMessage(client, msg)

	_, state := p.Input()
	assert.Equal(t, scene.MoveWalking, state)
}

func TestDisconnectMessage(t *testing.T) {
	_, server := newTestIngress()
	client := newTestClient(scene.NewPresence("avatar"))

	msg, _ := cbor.Marshal(GenericMessage{Op: DisconnectOp})
	assert.True(t, server.handleMessage(client, msg))
}

func TestGarbageMessageIgnored(t *testing.T) {
	_, server := newTestIngress()
	client := newTestClient(scene.NewPresence("avatar"))

	assert.False(t, server.handleMessage(client, []byte{0xff, 0x00}))
}

func TestUpdateMessageCarriesMask(t *testing.T) {
	sc := scene.NewScene()
	e := scene.NewEntity("cube")
	msg := updateMessageFor(e, sc.KinematicState(e), scene.UpdatePosition|scene.UpdateVelocity)

	assert.Equal(t, UpdateOp, msg.Op)
	assert.Equal(t, e.ID.String(), msg.ID)
	assert.Equal(t, uint32(scene.UpdatePosition|scene.UpdateVelocity), msg.Flags)
}

func TestSnapshotWhileIntegratorRuns(t *testing.T) {
	sc := scene.NewScene()
	sim := phys.New(sc, nil)
	server := NewWSIngress(sc, sim, config.Default().Ingress, "test", zerolog.Nop())

	e := scene.NewEntity("crate")
	e.DynamicsEnabled = true
	e.Position = geom.NewVector(50, 50, 1000)
	sc.EntityAddOrUpdate(e, scene.FullUpdate, 0)

	sim.Start()
	defer sim.Stop()

	// Joining clients snapshot the scene from their own goroutine while the
	// integrator writes kinematics; every message must still decode cleanly.
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		for _, msg := range server.buildSnapshot() {
			var update UpdateMessage
			assert.NoError(t, cbor.Unmarshal(msg, &update))
			assert.Equal(t, e.ID.String(), update.ID)
		}
	}
}

func TestAnimationMessageDefaultFirst(t *testing.T) {
	p := scene.NewPresence("avatar")
	p.Animations.Add(anim.Jump, &p.Sequencer)

	msg := animationMessageFor(p)
	assert.Len(t, msg.Animations, 2)
	assert.Equal(t, anim.Stand.String(), msg.Animations[0].ID)
	assert.Equal(t, anim.Jump.String(), msg.Animations[1].ID)
}

func TestBuildStatus(t *testing.T) {
	sc, server := newTestIngress()
	sc.EntityAddOrUpdate(scene.NewEntity("cube"), scene.FullUpdate, 0)

	data, err := server.BuildStatus()
	assert.NoError(t, err)

	var status StatusMessage
	assert.NoError(t, cbor.Unmarshal(data, &status))
	assert.Equal(t, StatusOp, status.Op)
	assert.Equal(t, "test", status.Region)
	assert.Equal(t, 1.0, status.TimeDilation)
	assert.Equal(t, 1, status.Entities)
	assert.Equal(t, 0, status.Agents)
}
