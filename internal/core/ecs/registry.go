package ecs

// Registry tracks all component stores so entity destruction and world
// resets reach every store without the world knowing component types.
type Registry struct {
	stores []ComponentStore
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]ComponentStore, 0, 16),
	}
}

// Register adds a component store to the registry.
func (r *Registry) Register(store ComponentStore) {
	r.stores = append(r.stores, store)
}

// RemoveAll clears the given entity from every registered store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}

// ClearAll empties every registered store.
func (r *Registry) ClearAll() {
	for _, s := range r.stores {
		s.Clear()
	}
}
