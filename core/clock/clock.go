package clock

import "time"

//go:generate mockgen -package=mocks -destination=mocks/mock_clock.go github.com/m3rciful/surplusbot/core/clock Clock

// Clock abstracts wall-clock reads so time-dependent logic can be tested.
type Clock interface {
	Now() time.Time
}

// Real implements Clock using the system clock.
type Real struct{}

// Now returns the current time.
func (Real) Now() time.Time {
	return time.Now()
}

// InLocation returns a clock reporting the time of c in loc.
func InLocation(c Clock, loc *time.Location) Clock {
	if loc == nil {
		return c
	}
	return located{base: c, loc: loc}
}

type located struct {
	base Clock
	loc  *time.Location
}

func (l located) Now() time.Time {
	return l.base.Now().In(l.loc)
}
