package domain

import "time"

// Clock supplies the current time. The lifecycle engine takes it as a
// dependency so the "scheduled for today" check is deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
