package ecs

// World is the top-level entity container. It owns the entity pool, the
// component registry, and a deferred destruction queue flushed at the
// end of each tick.
type World struct {
	pool         *Pool
	registry     *Registry
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *Pool         { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) Create() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Live reports the number of allocated entities, including ones queued
// for destruction but not yet flushed.
func (w *World) Live() int {
	return w.pool.Live()
}

// Destroy queues an entity for end-of-tick cleanup. The entity stays
// alive and keeps its components until Flush runs, so systems later in
// the same tick still see it.
func (w *World) Destroy(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Flush destroys all queued entities and clears their components.
// Runs at the end of each tick.
func (w *World) Flush() {
	for _, id := range w.destroyQueue {
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}

// Reset drops every entity and component. Used when a scene replaces
// the world wholesale; identifiers from before the reset are invalid.
func (w *World) Reset() {
	w.registry.ClearAll()
	w.pool.Reset()
	w.destroyQueue = w.destroyQueue[:0]
}
