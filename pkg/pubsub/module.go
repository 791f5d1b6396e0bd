package pubsub

import (
	"context"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog"

	"github.com/openmetaversefoundation/simian-sub002/pkg/config"
	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
)

// Event kinds published to the region channel.
const (
	EventSignificantMovement = "movement"
	EventPresenceAdded       = "presence"
	EventEntityRemoved       = "removed"
	EventCollision           = "collision"
)

type Event struct {
	Kind   string  `cbor:"kind"`
	Region string  `cbor:"region"`
	Entity string  `cbor:"entity"`
	Other  string  `cbor:"other,omitempty"`
	X      float64 `cbor:"x"`
	Y      float64 `cbor:"y"`
	Z      float64 `cbor:"z"`
}

// Publisher pushes coarse scene events to redis so neighbouring regions and
// out-of-process services (chat, maps, analytics) can follow activity
// without subscribing to the full update stream.
type Publisher struct {
	log     zerolog.Logger
	client  *redis.Client
	channel string
	region  string
}

func NewPublisher(settings config.RedisSettings, region string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		log: logger,
		client: redis.NewClient(&redis.Options{
			Addr:     settings.Address,
			Password: settings.Password,
		}),
		channel: settings.Channel,
		region:  region,
	}
}

// Attach subscribes the publisher to the scene's coarse feeds. Events are
// published on the calling goroutine; redis publishes are fire-and-forget
// and a failure only logs.
func (p *Publisher) Attach(ctx context.Context, sc *scene.Scene) {
	sc.SignificantMovement.Notify(func(e *scene.Entity) {
		pos := e.ScenePosition()
		p.publish(ctx, Event{
			Kind:   EventSignificantMovement,
			Entity: e.ID.String(),
			X:      pos.X,
			Y:      pos.Y,
			Z:      pos.Z,
		})
	})

	sc.PresenceAdded.Notify(func(pres *scene.Presence) {
		pos := pres.ScenePosition()
		p.publish(ctx, Event{
			Kind:   EventPresenceAdded,
			Entity: pres.ID.String(),
			X:      pos.X,
			Y:      pos.Y,
			Z:      pos.Z,
		})
	})

	sc.EntityRemoved.Notify(func(e *scene.Entity) {
		p.publish(ctx, Event{
			Kind:   EventEntityRemoved,
			Entity: e.ID.String(),
		})
	})
}

// PublishCollision reports a contact pair.
func (p *Publisher) PublishCollision(ctx context.Context, first, second *scene.Entity) {
	pos := first.ScenePosition()
	p.publish(ctx, Event{
		Kind:   EventCollision,
		Entity: first.ID.String(),
		Other:  second.ID.String(),
		X:      pos.X,
		Y:      pos.Y,
		Z:      pos.Z,
	})
}

func (p *Publisher) publish(ctx context.Context, event Event) {
	event.Region = p.region

	data, err := cbor.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to encode event")
		return
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		p.log.Warn().Err(err).Str("kind", event.Kind).Msg("failed to publish event")
	}
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
