package system

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Handle identifies a registered system. The zero Handle is never
// issued, so callers can use it as a "not registered" marker.
type Handle int

// ErrNilSystem is returned when a nil system is registered.
var ErrNilSystem = errors.New("system: nil system")

// Runner executes systems in phase order each tick. Registration order
// is preserved within a phase.
type Runner struct {
	systems []System
	order   []int
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

// Register adds a system and returns an opaque handle for later lookup.
// Nil systems and duplicate names are rejected.
func (r *Runner) Register(s System) (Handle, error) {
	if s == nil {
		return 0, ErrNilSystem
	}
	for _, have := range r.systems {
		if have.Name() == s.Name() {
			return 0, fmt.Errorf("system: %q already registered", s.Name())
		}
	}
	r.systems = append(r.systems, s)
	r.sorted = false
	return Handle(len(r.systems)), nil
}

// Get returns the system a handle refers to, or nil for a handle the
// runner never issued.
func (r *Runner) Get(h Handle) System {
	if h < 1 || int(h) > len(r.systems) {
		return nil
	}
	return r.systems[h-1]
}

// Len reports the number of registered systems.
func (r *Runner) Len() int {
	return len(r.systems)
}

// Tick runs every registered system once.
func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, i := range r.order {
		r.systems[i].Update(dt)
	}
}

// TickPhase runs only the systems of one phase. Drivers that poll a
// phase at higher frequency than the full tick use this.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, i := range r.order {
		if r.systems[i].Phase() == phase {
			r.systems[i].Update(dt)
		}
	}
}

// ensureSorted rebuilds the dispatch order. The sort is stable so a
// handle keeps pointing at the same slot regardless of phase shuffles.
func (r *Runner) ensureSorted() {
	if r.sorted {
		return
	}
	r.order = r.order[:0]
	for i := range r.systems {
		r.order = append(r.order, i)
	}
	sort.SliceStable(r.order, func(a, b int) bool {
		return r.systems[r.order[a]].Phase() < r.systems[r.order[b]].Phase()
	})
	r.sorted = true
}
