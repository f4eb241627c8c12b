package service

import "time"

// Clock supplies post timestamps. Injected so bump ordering and eviction
// order are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// UTCClock rounds to microseconds because the database does anyway.
type UTCClock struct{}

func (UTCClock) Now() time.Time {
	return time.Now().UTC().Round(time.Microsecond)
}
