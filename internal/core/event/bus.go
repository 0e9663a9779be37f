package event

// Bus groups typed topics under one pump. Events published in tick N
// are delivered in tick N+1: each topic holds a back buffer that
// Publish appends to and a front buffer that Pump drains, so a handler
// never observes an event from the tick that is still running.
type Bus struct {
	topics []pumper
}

type pumper interface {
	pump()
}

func NewBus() *Bus {
	return &Bus{}
}

// Pump rotates every topic's buffers and delivers the previous tick's
// events to their handlers. Called once at tick start.
func (b *Bus) Pump() {
	for _, t := range b.topics {
		t.pump()
	}
}

// Topic is one typed event stream on a Bus. Publish and Subscribe are
// free of reflection; the type key is the Topic value itself.
type Topic[T any] struct {
	front    []T
	back     []T
	handlers []func(T)
}

// NewTopic creates a topic and attaches it to the bus pump.
func NewTopic[T any](b *Bus) *Topic[T] {
	t := &Topic[T]{}
	b.topics = append(b.topics, t)
	return t
}

// Publish queues an event for delivery on the next pump.
func (t *Topic[T]) Publish(ev T) {
	t.back = append(t.back, ev)
}

// Subscribe registers a handler. Handlers run in subscription order,
// on the goroutine that calls Pump.
func (t *Topic[T]) Subscribe(fn func(T)) {
	t.handlers = append(t.handlers, fn)
}

// Pending reports how many events wait for the next pump.
func (t *Topic[T]) Pending() int {
	return len(t.back)
}

func (t *Topic[T]) pump() {
	t.front, t.back = t.back, t.front[:0]
	for _, ev := range t.front {
		for _, fn := range t.handlers {
			fn(ev)
		}
	}
}
