// Package worlditem tracks item stacks that exist in the game world rather
// than in a storage pool: loot on the ground and stacks dropped out of the
// inventory UI.
package worlditem

import (
	"sync"

	"github.com/google/uuid"
)

// Spawner is the collaborator the transfer protocol calls when a drag is
// released outside every store. Implementations own the spawned entity's
// lifecycle from that point on.
type Spawner interface {
	Spawn(itemID string, count int, x, y float64)
}

// Entity is one item stack lying in the world.
type Entity struct {
	// ID is the unique world entity identifier.
	ID uuid.UUID
	// ItemID is the item identity of the stack.
	ItemID string
	// Count is the stack quantity; always >= 1.
	Count int
	// X, Y is the world position.
	X, Y float64
}

// Ground tracks world item entities per region.
// It is thread-safe via sync.RWMutex.
type Ground struct {
	mu      sync.RWMutex
	regions map[string][]Entity
}

// NewGround creates a Ground with no entities in any region.
//
// Postcondition: returned Ground is ready for use with zero entities.
func NewGround() *Ground {
	return &Ground{
		regions: make(map[string][]Entity),
	}
}

// Drop places a stack in the given region and returns the new entity.
//
// Precondition: regionID and itemID are non-empty; count >= 1.
// Postcondition: the entity is appended to the region's list.
func (g *Ground) Drop(regionID, itemID string, count int, x, y float64) Entity {
	e := Entity{
		ID:     uuid.New(),
		ItemID: itemID,
		Count:  count,
		X:      x,
		Y:      y,
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.regions[regionID] = append(g.regions[regionID], e)
	return e
}

// Pickup removes and returns the entity with the given id from the region.
// Returns false if the entity is not found.
//
// Postcondition: on success, the entity is removed from the region; on
// failure, region state is unchanged.
func (g *Ground) Pickup(regionID string, id uuid.UUID) (Entity, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entities := g.regions[regionID]
	for i, e := range entities {
		if e.ID == id {
			g.regions[regionID] = append(entities[:i], entities[i+1:]...)
			return e, true
		}
	}
	return Entity{}, false
}

// PickupAll removes and returns all entities from the region.
//
// Postcondition: the region is empty; returned slice contains all previously
// held entities.
func (g *Ground) PickupAll(regionID string) []Entity {
	g.mu.Lock()
	defer g.mu.Unlock()
	entities := g.regions[regionID]
	if len(entities) == 0 {
		return []Entity{}
	}
	delete(g.regions, regionID)
	return entities
}

// Entities returns a snapshot copy of all entities in the region.
//
// Postcondition: returned slice is a copy; mutations do not affect internal state.
func (g *Ground) Entities(regionID string) []Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entities := g.regions[regionID]
	out := make([]Entity, len(entities))
	copy(out, entities)
	return out
}

// TotalUnits returns the summed stack counts across every region; the
// conservation accounting term for the world.
func (g *Ground) TotalUnits() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	total := 0
	for _, entities := range g.regions {
		for _, e := range entities {
			total += e.Count
		}
	}
	return total
}

// RegionSpawner binds a Ground to one region so it satisfies Spawner for the
// transfer protocol.
type RegionSpawner struct {
	Ground *Ground
	Region string
}

// Spawn drops the stack into the bound region.
func (s RegionSpawner) Spawn(itemID string, count int, x, y float64) {
	s.Ground.Drop(s.Region, itemID, count, x, y)
}
