package tui

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// gauges eases panel meters towards their targets so they don't flicker
// at frame rate.
type gauges struct {
	spring harmonica.Spring
	pos    [gaugeCount]float64
	vel    [gaugeCount]float64
}

const (
	gaugeLinks = iota
	gaugeAlpha
	gaugeLoad
	gaugeCount
)

func newGauges(fps int) gauges {
	return gauges{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0)}
}

// step moves gauge i towards target. NaN targets are dropped so they never
// reach the spring state.
func (g *gauges) step(i int, target float64) {
	if math.IsNaN(target) {
		return
	}
	target = max(0, min(target, 1))
	g.pos[i], g.vel[i] = g.spring.Update(g.pos[i], g.vel[i], target)
}

func (g *gauges) value(i int) float64 {
	return max(0, min(g.pos[i], 1))
}
