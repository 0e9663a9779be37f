package event

// Engine-level events carried between ticks.

// StepMilestone marks every hundredth completed frame.
type StepMilestone struct {
	Step uint64
}

// StopRequested records why the frame loop is ending.
type StopRequested struct {
	Reason string
}

// SceneLoaded announces that a snapshot replaced the world.
type SceneLoaded struct {
	Path     string
	Entities int
}

// EntityExpired announces that a lifetime ran out. Name is the entity's
// label at expiry, possibly empty.
type EntityExpired struct {
	Name string
}

// Topics bundles the engine's event streams on a single bus.
type Topics struct {
	Bus *Bus

	StepMilestone *Topic[StepMilestone]
	StopRequested *Topic[StopRequested]
	SceneLoaded   *Topic[SceneLoaded]
	EntityExpired *Topic[EntityExpired]
}

func NewTopics() *Topics {
	b := NewBus()
	return &Topics{
		Bus:           b,
		StepMilestone: NewTopic[StepMilestone](b),
		StopRequested: NewTopic[StopRequested](b),
		SceneLoaded:   NewTopic[SceneLoaded](b),
		EntityExpired: NewTopic[EntityExpired](b),
	}
}
