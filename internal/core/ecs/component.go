package ecs

// ComponentStore is implemented by every typed store so the Registry
// can reach all of them on entity destroy and on world reset.
type ComponentStore interface {
	Remove(id EntityID)
	Clear()
}

// Store is a generic typed map store for components.
// No reflect, no interface{} values. Pure generics.
type Store[T any] struct {
	data map[EntityID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[EntityID]*T, 256),
	}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) {
	delete(s.data, id)
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// Clear drops every component. Used when a scene replaces the world.
func (s *Store[T]) Clear() {
	clear(s.data)
}

func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}
