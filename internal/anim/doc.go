// Package anim drives a particle field from a frame clock.
//
// An [Animator] replaces the browser's self-rescheduling animation
// callback with an explicit loop that stops when its context is
// cancelled. Resize notifications may arrive from any goroutine; they are
// queued and applied by the loop itself before the next frame.
package anim
