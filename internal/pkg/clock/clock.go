package clock

import "time"

// Clock abstracts time.Now so overdue and paid-date logic can be tested with
// fixed timestamps.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// New returns a Clock backed by the system time.
func New() Clock {
	return realClock{}
}

// Fixed is a Clock frozen at a single instant. The zero value reports the zero
// time; set T explicitly in tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
