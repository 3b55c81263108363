// Package field implements a drifting particle field: a fixed set of 2D
// points that move with constant velocity, reflect at the edges of a
// drawable surface, and are linked by fading lines when close together.
//
// The package is host-agnostic. Anything that can clear a rectangle, fill
// a circle and stroke a line satisfies [Surface]:
//
//   - [Field]: owns the particles and the surface bounds
//   - [Field.Frame]: one animation frame (clear, move, draw, link)
//   - [Field.Resize]: adopt new bounds without moving particles
//   - [LinkAlpha]: distance to line opacity
//
// # Example
//
//	f, _ := field.New(1280, 720, field.DefaultParams(), rand.NewPCG(1, 2))
//	stats := f.Frame(surface)
//
// # Thread Safety
//
// A Field is NOT safe for concurrent use. Hosts drive it from a single
// frame loop; see package anim.
package field
