package anim

import "time"

const DefaultFPS = 60

// Clock delivers frame ticks.
type Clock interface {
	C() <-chan time.Time
	Stop()
}

type tickerClock struct{ t *time.Ticker }

// NewTicker returns a wall-clock Clock ticking fps times per second.
func NewTicker(fps int) Clock {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return tickerClock{t: time.NewTicker(time.Second / time.Duration(fps))}
}

func (c tickerClock) C() <-chan time.Time { return c.t.C }
func (c tickerClock) Stop()               { c.t.Stop() }
