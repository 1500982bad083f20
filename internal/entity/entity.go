// Package entity provides the generic Ticker/EntityManager machinery the
// teacher used for mobs and item pickups, repointed at the engine's two
// kinds of transient world object: Collapse Engine debris bodies and
// despawn-to-item-drop stand-ins (spec.md §4.G "Conversion"/"Budget").
package entity

import "github.com/go-gl/mathgl/mgl32"

// Entity is anything the per-tick EntityManager drives: advance its state
// by dt, report whether it should be reaped, and where it is for
// distance-based despawn checks.
type Entity interface {
	Tick(dt float32)
	Position() mgl32.Vec3
	Dead() bool
}

// Manager owns a dense slice of live entities, ticking all of them each
// frame and compacting dead ones out in place — the same "no per-entity
// heap churn" discipline the teacher's mob/item-entity lists used, now
// generalized to any Entity rather than just ItemEntity.
type Manager struct {
	entities []Entity
}

// NewManager returns an empty entity manager.
func NewManager() *Manager { return &Manager{} }

// Spawn adds an entity to be ticked from the next call onward.
func (m *Manager) Spawn(e Entity) { m.entities = append(m.entities, e) }

// Tick advances every live entity by dt and compacts out anything that
// reports Dead() afterward.
func (m *Manager) Tick(dt float32) {
	live := m.entities[:0]
	for _, e := range m.entities {
		e.Tick(dt)
		if !e.Dead() {
			live = append(live, e)
		}
	}
	m.entities = live
}

// Len reports how many entities are currently live.
func (m *Manager) Len() int { return len(m.entities) }

// All returns the live entity slice. Callers must not retain it across a
// Tick call, since Tick compacts in place.
func (m *Manager) All() []Entity { return m.entities }
