package common

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is replaced by a fake clock in tests which depend on "today".
var Clock = clockwork.NewRealClock()

func Now() time.Time {
	return Clock.Now()
}

func Today() Date {
	return DateOf(Clock.Now())
}
