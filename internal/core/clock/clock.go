package clock

import "time"

// Clock measures elapsed time between loop iterations. It reads the
// runtime's monotonic clock, so wall-clock adjustments (NTP steps,
// manual changes) never show up in a measurement.
//
// Delta and Split report microseconds. Delta moves the reference point
// to the current instant; Split leaves it alone. Both return -1 when
// the measurement is unusable (the source stepped backwards, which a
// monotonic source never does but an injected one may).
type Clock struct {
	now  func() time.Time
	prev time.Time
}

// New returns a Clock referenced to the current instant.
func New() *Clock {
	return NewWithSource(time.Now)
}

// NewWithSource returns a Clock reading time from now. Production code
// uses New; tests inject a scripted source.
func NewWithSource(now func() time.Time) *Clock {
	return &Clock{now: now, prev: now()}
}

// Delta returns the microseconds elapsed since the previous Delta call
// (or since construction) and resets the reference point. The reference
// point moves even when the measurement fails, so one bad reading does
// not poison the next.
func (c *Clock) Delta() int64 {
	t := c.now()
	d := t.Sub(c.prev)
	c.prev = t
	if d < 0 {
		return -1
	}
	return d.Microseconds()
}

// Split returns the microseconds elapsed since the last Delta reset
// without touching the reference point. Calling Split any number of
// times never changes what a later Delta reports.
func (c *Clock) Split() int64 {
	d := c.now().Sub(c.prev)
	if d < 0 {
		return -1
	}
	return d.Microseconds()
}
