package anim

import (
	"context"
	"sync"
	"time"

	"github.com/san-kum/driftfield/internal/field"
)

// Observer is notified after every frame.
type Observer interface {
	OnFrame(st field.FrameStats, elapsed time.Duration)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(st field.FrameStats, elapsed time.Duration)

func (f ObserverFunc) OnFrame(st field.FrameStats, elapsed time.Duration) { f(st, elapsed) }

// Resizer is implemented by surfaces that track their own dimensions.
type Resizer interface {
	Resize(w, h int)
}

type Option func(*Animator)

func WithFPS(fps int) Option {
	return func(a *Animator) {
		if fps > 0 {
			a.fps = fps
		}
	}
}

func WithClock(newClock func(fps int) Clock) Option {
	return func(a *Animator) { a.newClock = newClock }
}

func WithObserver(o Observer) Option {
	return func(a *Animator) { a.observers = append(a.observers, o) }
}

type size struct{ w, h int }

// Animator runs one field on one surface.
type Animator struct {
	field     *field.Field
	surface   field.Surface
	fps       int
	newClock  func(fps int) Clock
	observers []Observer

	mu      sync.Mutex
	pending *size
}

// New returns an animator for f drawing onto s. It declines to run
// without a surface.
func New(f *field.Field, s field.Surface, opts ...Option) (*Animator, error) {
	if s == nil {
		return nil, field.ErrNoSurface
	}
	a := &Animator{
		field:    f,
		surface:  s,
		fps:      DefaultFPS,
		newClock: NewTicker,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Animator) Field() *field.Field    { return a.field }
func (a *Animator) Surface() field.Surface { return a.surface }
func (a *Animator) FPS() int               { return a.fps }

// Resize queues new surface dimensions. Only the latest pending size is
// kept; it takes effect at the start of the next frame.
func (a *Animator) Resize(w, h int) {
	a.mu.Lock()
	a.pending = &size{w: w, h: h}
	a.mu.Unlock()
}

func (a *Animator) applyPending() {
	a.mu.Lock()
	p := a.pending
	a.pending = nil
	a.mu.Unlock()

	if p == nil {
		return
	}
	a.field.Resize(p.w, p.h)
	if r, ok := a.surface.(Resizer); ok {
		r.Resize(p.w, p.h)
	}
}

// Frame runs a single frame. Hosts with their own frame loop call this
// from it instead of using Run.
func (a *Animator) Frame() field.FrameStats {
	a.applyPending()

	start := time.Now()
	st := a.field.Frame(a.surface)
	elapsed := time.Since(start)

	for _, o := range a.observers {
		o.OnFrame(st, elapsed)
	}
	return st
}

// Run animates until ctx is done and returns ctx.Err().
func (a *Animator) Run(ctx context.Context) error {
	clk := a.newClock(a.fps)
	defer clk.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.C():
			a.Frame()
		}
	}
}

// RunFrames runs exactly n frames as fast as possible.
func (a *Animator) RunFrames(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		a.Frame()
	}
	return nil
}
