// Package gui hosts the field in a native window. The default build uses
// raylib; building with the "ebiten" tag switches to Ebitengine. Both link
// their own GLFW, so only one can be compiled in.
package gui

import (
	"fmt"
	"image/color"

	"github.com/san-kum/driftfield/internal/anim"
	"github.com/san-kum/driftfield/internal/field"
)

type Options struct {
	Title      string
	FPS        int
	Background color.NRGBA
	ShowStats  bool
	Observers  []anim.Observer
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "driftfield"
	}
	if o.FPS <= 0 {
		o.FPS = anim.DefaultFPS
	}
	return o
}

func (o Options) animOptions() []anim.Option {
	opts := []anim.Option{anim.WithFPS(o.FPS)}
	for _, obs := range o.Observers {
		opts = append(opts, anim.WithObserver(obs))
	}
	return opts
}

func statsLine(f *field.Field, st field.FrameStats, paused bool) string {
	w, h := f.Size()
	line := fmt.Sprintf("%d particles  %dx%d  frame %d  links %d", f.Len(), w, h, f.FrameCount(), st.Links)
	if paused {
		line += "  [paused]"
	}
	return line
}
