package domain

import "github.com/jonboulle/clockwork"

// clock supplies the timestamp reports carry as GeneratedAt. Tests freeze it
// with SetClock so report output stays deterministic.
var clock = clockwork.NewRealClock()

// SetClock replaces the report time source. Passing nil restores the real
// clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}
