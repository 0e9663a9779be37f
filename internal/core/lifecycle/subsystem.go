package lifecycle

import "time"

// Subsystem is the uniform lifecycle contract every managed engine
// subsystem satisfies. StartUp leaves the subsystem fully usable or
// fully stopped, never in between. ShutDown releases whatever StartUp
// acquired and tolerates being called on a subsystem that never
// started, or twice.
type Subsystem interface {
	Name() string
	StartUp() error
	ShutDown()
}

// Updater is the optional per-frame hook. The driver calls Update once
// per frame, before the orchestrator runs, for every registered
// subsystem that implements it.
type Updater interface {
	Update(dt time.Duration)
}

// Registration binds a subsystem into the orchestrator's startup order.
// An optional subsystem may fail to start without aborting startup; it
// is skipped and excluded from shutdown.
type Registration struct {
	Subsystem Subsystem
	Optional  bool
}
