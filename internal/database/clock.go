package database

import (
	"sync"
	"time"
)

// Clock is the time source for server-assigned timestamps
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// stampPrecision is the smallest step between two assigned timestamps
const stampPrecision = time.Microsecond

// stampClock hands out created_at values that strictly increase across
// successive calls, even when the wall clock stalls or steps backwards.
type stampClock struct {
	mux   sync.Mutex
	clock Clock
	last  time.Time
}

func newStampClock(clock Clock) *stampClock {
	return &stampClock{clock: clock}
}

// Next returns a UTC timestamp later than every value returned before
func (s *stampClock) Next() time.Time {
	s.mux.Lock()
	defer s.mux.Unlock()

	now := s.clock.Now().UTC().Truncate(stampPrecision)
	if !now.After(s.last) {
		now = s.last.Add(stampPrecision)
	}
	s.last = now
	return now
}
