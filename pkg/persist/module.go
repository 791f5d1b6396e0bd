package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sasha-s/go-deadlock"
	"gorm.io/gorm"

	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
)

// Persister mirrors the scene into sqlite. It listens to the scene's update
// feed, collects entities the dispatcher flagged as modified, and flushes
// them on an interval rather than per update; a 10Hz integrator would
// otherwise turn every moving entity into a write per frame.
type Persister struct {
	log   zerolog.Logger
	db    *gorm.DB
	scene *scene.Scene

	mutex   deadlock.Mutex
	dirty   map[uuid.UUID]*scene.Entity
	removed []uuid.UUID
}

func New(db *gorm.DB, sc *scene.Scene, logger zerolog.Logger) *Persister {
	p := &Persister{
		log:   logger,
		db:    db,
		scene: sc,
		dirty: make(map[uuid.UUID]*scene.Entity),
	}

	sc.EntityUpdated.Notify(func(update scene.EntityUpdate) {
		e := update.Entity
		if !e.Modified {
			return
		}
		// Avatars are transient; their owners bring them back.
		if _, isAvatar := e.Presence(); isAvatar {
			return
		}
		p.mutex.Lock()
		p.dirty[e.ID] = e
		p.mutex.Unlock()
	})

	sc.EntityRemoved.Notify(func(e *scene.Entity) {
		p.mutex.Lock()
		delete(p.dirty, e.ID)
		p.removed = append(p.removed, e.ID)
		p.mutex.Unlock()
	})

	return p
}

// Flush writes all pending changes. The Modified flag on each entity is
// cleared once its record is durable.
func (p *Persister) Flush() error {
	p.mutex.Lock()
	dirty := p.dirty
	removed := p.removed
	p.dirty = make(map[uuid.UUID]*scene.Entity)
	p.removed = nil
	p.mutex.Unlock()

	records := make([]EntityRecord, 0, len(dirty))
	entities := make([]*scene.Entity, 0, len(dirty))
	for _, e := range dirty {
		// The integrator may be writing this entity's transform right now.
		records = append(records, recordFor(e, p.scene.KinematicState(e)))
		entities = append(entities, e)
	}

	if err := upsertRecords(p.db, records); err != nil {
		return fmt.Errorf("persisting %d entities: %w", len(records), err)
	}
	for _, e := range entities {
		e.Modified = false
	}

	for _, id := range removed {
		if err := deleteRecord(p.db, id.String()); err != nil {
			return fmt.Errorf("deleting entity %s: %w", id, err)
		}
	}

	return nil
}

// Run flushes on the given interval until ctx is done, then flushes one
// last time.
func (p *Persister) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := p.Flush(); err != nil {
				p.log.Error().Err(err).Msg("final flush failed")
			}
			return
		case <-ticker.C:
			if err := p.Flush(); err != nil {
				p.log.Error().Err(err).Msg("flush failed")
			}
		}
	}
}

// Restore loads every stored entity into the scene at rest. Parent links
// are resolved after all entities exist so child rows can precede their
// parents.
func (p *Persister) Restore() (int, error) {
	records, err := loadRecords(p.db)
	if err != nil {
		return 0, err
	}

	parents := make(map[uuid.UUID]uuid.UUID)
	for _, record := range records {
		id, err := uuid.Parse(record.ID)
		if err != nil {
			p.log.Warn().Str("id", record.ID).Msg("skipping entity with bad id")
			continue
		}

		e := scene.NewEntity(record.Name)
		e.ID = id
		e.Position = geom.Vector{X: record.PositionX, Y: record.PositionY, Z: record.PositionZ}
		e.Rotation = geom.Quaternion{X: record.RotationX, Y: record.RotationY, Z: record.RotationZ, W: record.RotationW}
		e.Scale = geom.Vector{X: record.ScaleX, Y: record.ScaleY, Z: record.ScaleZ}
		e.CollisionsEnabled = record.CollisionsEnabled
		e.DynamicsEnabled = record.DynamicsEnabled
		e.Frozen = record.Frozen
		e.Density = record.Density
		e.Proxy = scene.ProxyType(record.Proxy)
		if record.MeshAsset != "" {
			if asset, err := uuid.Parse(record.MeshAsset); err == nil {
				e.MeshAsset = asset
			}
		}

		if record.ParentID != "" {
			if parentID, err := uuid.Parse(record.ParentID); err == nil {
				parents[id] = parentID
			}
		}

		p.scene.EntityAddOrUpdate(e, scene.FullUpdate, 0)
		e.Modified = false
	}

	for childID, parentID := range parents {
		child, ok := p.scene.EntityByID(childID)
		if !ok {
			continue
		}
		parent, ok := p.scene.EntityByID(parentID)
		if !ok {
			p.log.Warn().
				Str("entity", childID.String()).
				Str("parent", parentID.String()).
				Msg("stored parent missing")
			continue
		}
		child.Parent = parent
	}

	return len(records), nil
}

func recordFor(e *scene.Entity, state scene.EntityState) EntityRecord {
	record := EntityRecord{
		ID:                e.ID.String(),
		Handle:            e.Handle,
		Name:              e.Name,
		PositionX:         state.Position.X,
		PositionY:         state.Position.Y,
		PositionZ:         state.Position.Z,
		RotationX:         state.Rotation.X,
		RotationY:         state.Rotation.Y,
		RotationZ:         state.Rotation.Z,
		RotationW:         state.Rotation.W,
		ScaleX:            state.Scale.X,
		ScaleY:            state.Scale.Y,
		ScaleZ:            state.Scale.Z,
		CollisionsEnabled: e.CollisionsEnabled,
		DynamicsEnabled:   e.DynamicsEnabled,
		Frozen:            e.Frozen,
		Density:           e.Density,
		Proxy:             uint8(e.Proxy),
	}
	if e.Parent != nil {
		record.ParentID = e.Parent.ID.String()
	}
	if e.MeshAsset != uuid.Nil {
		record.MeshAsset = e.MeshAsset.String()
	}
	return record
}
