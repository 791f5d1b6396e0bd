package phys

import (
	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
)

// EntityCollisionTest intersects a ray with a single entity's bounding box.
func (s *Simulator) EntityCollisionTest(ray geom.Ray, e *scene.Entity) (bool, float64) {
	hit, near, _ := e.AABB().IntersectRay(ray)
	return hit, near
}

// FullSceneCollisionTest scans every collidable entity's AABB, and optionally
// the terrain heightfield, returning the closest hit. The entity result is
// nil when the terrain was the closest hit or nothing was hit; the boolean
// reports whether anything was hit at all. exclude is skipped, as are
// entities with collision disabled.
func (s *Simulator) FullSceneCollisionTest(includeTerrain bool, ray geom.Ray, exclude *scene.Entity) (*scene.Entity, float64, bool) {
	var (
		closest     *scene.Entity
		closestDist = probeDistance
		found       bool
	)

	s.scene.ForEachEntity(func(e *scene.Entity) {
		if e == exclude || !e.CollisionsEnabled {
			return
		}
		if hit, dist, _ := e.AABB().IntersectRay(ray); hit && dist < closestDist {
			closest = e
			closestDist = dist
			found = true
		}
	})

	if includeTerrain && s.terrain != nil {
		heights, width, height, cellSize := s.terrain.Heightmap()
		if hit, dist := geom.RayHeightfield(ray, heights, width, height, cellSize, probeDistance); hit && dist < closestDist {
			closest = nil
			closestDist = dist
			found = true
		}
	}

	if !found {
		return nil, 0, false
	}
	return closest, closestDist, true
}

// sceneRaycast is the integrator's internal probe; identical to
// FullSceneCollisionTest but with the argument order the step code wants.
func (s *Simulator) sceneRaycast(ray geom.Ray, exclude *scene.Entity, includeTerrain bool) (*scene.Entity, float64, bool) {
	return s.FullSceneCollisionTest(includeTerrain, ray, exclude)
}
