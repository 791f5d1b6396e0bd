package ingress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/repeale/fp-go"
	"github.com/rs/zerolog"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"

	"github.com/openmetaversefoundation/simian-sub002/pkg/anim"
	"github.com/openmetaversefoundation/simian-sub002/pkg/config"
	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
	"github.com/openmetaversefoundation/simian-sub002/pkg/phys"
	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
)

const (
	CLIENT_SEND_LIMIT = 64
	WRITE_TIMEOUT     = 5 * time.Second
	STATUS_INTERVAL   = 5 * time.Second
)

type Client struct {
	host      string
	presence  *scene.Presence
	send      chan []byte
	limiter   *rate.Limiter
	closeSlow func()
}

// WSIngress serves the region over websockets. Every client gets a presence;
// scene updates, animation changes, and integrator telemetry fan out to all
// connected clients.
type WSIngress struct {
	log        zerolog.Logger
	scene      *scene.Scene
	sim        *phys.Simulator
	region     string
	rateLimit  float64
	mutex      deadlock.Mutex
	clients    map[*Client]struct{}
	httpServer *http.Server
}

func NewWSIngress(sc *scene.Scene, sim *phys.Simulator, settings config.IngressSettings, region string, logger zerolog.Logger) *WSIngress {
	server := &WSIngress{
		log:       logger,
		scene:     sc,
		sim:       sim,
		region:    region,
		rateLimit: settings.RateLimit,
		clients:   make(map[*Client]struct{}),
	}

	sc.EntityUpdated.Notify(func(update scene.EntityUpdate) {
		if update.Flags == 0 {
			return
		}
		state := sc.KinematicState(update.Entity)
		if bytes, err := cbor.Marshal(updateMessageFor(update.Entity, state, update.Flags)); err == nil {
			server.Broadcast(bytes)
		}
	})

	sc.EntityRemoved.Notify(func(e *scene.Entity) {
		message := RemoveMessage{Op: RemoveOp, ID: e.ID.String()}
		if bytes, err := cbor.Marshal(message); err == nil {
			server.Broadcast(bytes)
		}
	})

	sc.AnimationsChanged.Notify(func(p *scene.Presence) {
		if bytes, err := cbor.Marshal(animationMessageFor(p)); err == nil {
			server.Broadcast(bytes)
		}
	})

	return server
}

func WriteTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageBinary, msg)
}

func (server *WSIngress) AddClient(client *Client) {
	server.mutex.Lock()
	server.clients[client] = struct{}{}
	server.mutex.Unlock()
}

func (server *WSIngress) RemoveClient(client *Client) {
	server.mutex.Lock()
	delete(server.clients, client)
	server.mutex.Unlock()
}

func (server *WSIngress) Broadcast(msg []byte) {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	for client := range server.clients {
		select {
		case client.send <- msg:
		default:
			go client.closeSlow()
		}
	}
}

// BuildStatus snapshots the integrator's health counters.
func (server *WSIngress) BuildStatus() ([]byte, error) {
	agents := 0
	server.scene.ForEachPresence(func(*scene.Presence) {
		agents++
	})

	message := StatusMessage{
		Op:           StatusOp,
		Region:       server.region,
		TimeDilation: server.sim.TimeDilation(),
		FPS:          server.sim.FPS(),
		FrameTimeMs:  server.sim.FrameTimeMs(),
		Entities:     server.scene.EntityCount(),
		Agents:       agents,
	}
	return cbor.Marshal(message)
}

// StartStatusTicker broadcasts telemetry until ctx is done.
func (server *WSIngress) StartStatusTicker(ctx context.Context) {
	ticker := time.NewTicker(STATUS_INTERVAL)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				status, err := server.BuildStatus()
				if err != nil {
					server.log.Error().Err(err).Msg("could not build status")
					continue
				}
				server.Broadcast(status)
			}
		}
	}()
}

func (server *WSIngress) HandleClient(ctx context.Context, c *websocket.Conn, host string) error {
	presence := scene.NewPresence(fmt.Sprintf("agent-%s", host))

	client := &Client{
		host:     host,
		presence: presence,
		send:     make(chan []byte, CLIENT_SEND_LIMIT),
		limiter:  rate.NewLimiter(rate.Limit(server.rateLimit), int(server.rateLimit)),
		closeSlow: func() {
			c.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
		},
	}

	server.AddClient(client)
	defer server.RemoveClient(client)

	server.scene.EntityAddOrUpdate(&presence.Entity, scene.FullUpdate, 0)
	defer server.scene.EntityRemove(&presence.Entity)

	logger := server.log.With().Str("host", host).Uint32("handle", presence.Handle).Logger()
	logger.Info().Msg("client joined")

	connected, err := cbor.Marshal(ConnectedMessage{
		Op:     ConnectedOp,
		ID:     presence.ID.String(),
		Handle: presence.Handle,
	})
	if err != nil {
		return err
	}
	client.send <- connected

	// Snapshot the scene so the client starts complete rather than waiting
	// for each entity to move.
	for _, bytes := range server.buildSnapshot() {
		select {
		case client.send <- bytes:
		default:
		}
	}

	if status, err := server.BuildStatus(); err == nil {
		client.send <- status
	}

	receive := make(chan []byte)
	go func() {
		for {
			if ctx.Err() != nil {
				return
			}
			typ, message, err := c.Read(ctx)
			if err != nil {
				close(receive)
				return
			}
			if typ != websocket.MessageBinary {
				continue
			}
			receive <- message
		}
	}()

	for {
		select {
		case msg, ok := <-receive:
			if !ok {
				logger.Info().Msg("client left")
				return nil
			}
			if !client.limiter.Allow() {
				continue
			}
			if done := server.handleMessage(client, msg); done {
				logger.Info().Msg("client disconnected")
				return nil
			}
		case msg := <-client.send:
			if err := WriteTimeout(ctx, WRITE_TIMEOUT, c, msg); err != nil {
				logger.Error().Msg("client missed write timeout; disconnecting")
				return err
			}
		case <-ctx.Done():
			logger.Info().Msg("client left")
			return ctx.Err()
		}
	}
}

// handleMessage dispatches one client message; returns true on disconnect.
func (server *WSIngress) handleMessage(client *Client, msg []byte) bool {
	var generic GenericMessage
	if err := cbor.Unmarshal(msg, &generic); err != nil {
		return false
	}

	switch generic.Op {
	case InputOp:
		var input InputMessage
		if err := cbor.Unmarshal(msg, &input); err != nil {
			return false
		}
		state := scene.MovementState(input.State)
		if state != scene.MoveWalking && state != scene.MoveRunning && state != scene.MoveFlying {
			state = scene.MoveWalking
		}
		client.presence.SetInput(geom.Vector{
			X: input.Velocity[0],
			Y: input.Velocity[1],
			Z: input.Velocity[2],
		}, state)
	case DisconnectOp:
		return true
	}

	return false
}

func (server *WSIngress) buildSnapshot() [][]byte {
	var messages [][]byte
	server.scene.ForEachEntity(func(e *scene.Entity) {
		// The integrator may be mid-frame; read the transform through the
		// scene's locked copy rather than the raw fields.
		state := server.scene.KinematicState(e)
		bytes, err := cbor.Marshal(updateMessageFor(e, state, scene.FullUpdate))
		if err != nil {
			return
		}
		messages = append(messages, bytes)
	})
	server.scene.ForEachPresence(func(p *scene.Presence) {
		bytes, err := cbor.Marshal(animationMessageFor(p))
		if err != nil {
			return
		}
		messages = append(messages, bytes)
	})
	return messages
}

func (server *WSIngress) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		server.log.Error().Err(err).Msg("error accepting client connection")
		return
	}

	defer c.Close(websocket.StatusInternalError, "operational fault during relay")

	hostname := r.RemoteAddr
	if original, ok := r.Header["X-Forwarded-For"]; ok {
		hostname = original[0]
	}

	err = server.HandleClient(r.Context(), c, hostname)
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		server.log.Error().Err(err).Msg("client session ended with error")
	}
}

// Serve listens until ctx is done.
func (server *WSIngress) Serve(ctx context.Context, port int) error {
	server.StartStatusTicker(ctx)

	mux := http.NewServeMux()
	mux.Handle("/service/proxy/", server)

	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.httpServer.Shutdown(shutdownCtx)
	}()

	err := server.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func updateMessageFor(e *scene.Entity, state scene.EntityState, flags scene.UpdateFlags) UpdateMessage {
	return UpdateMessage{
		Op:       UpdateOp,
		ID:       e.ID.String(),
		Handle:   e.Handle,
		Flags:    uint32(flags),
		Position: [3]float64{state.Position.X, state.Position.Y, state.Position.Z},
		Rotation: [4]float64{state.Rotation.X, state.Rotation.Y, state.Rotation.Z, state.Rotation.W},
		Velocity: [3]float64{state.Velocity.X, state.Velocity.Y, state.Velocity.Z},
		Scale:    [3]float64{state.Scale.X, state.Scale.Y, state.Scale.Z},
	}
}

func animationMessageFor(p *scene.Presence) AnimationMessage {
	entries := fp.Map[anim.Animation, AnimationEntry](func(animation anim.Animation) AnimationEntry {
		return AnimationEntry{
			ID:       animation.ID.String(),
			Sequence: animation.Sequence,
		}
	})(p.Animations.GetAnimations())

	return AnimationMessage{
		Op:         AnimationOp,
		ID:         p.ID.String(),
		Animations: entries,
	}
}
