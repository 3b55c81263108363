//go:build ebiten

package gui

import (
	"context"
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/san-kum/driftfield/internal/anim"
	"github.com/san-kum/driftfield/internal/field"
)

// ebSurface draws onto an offscreen image. Update draws into it and Draw
// copies it to the screen, so the field advances at the tick rate rather
// than the display refresh rate.
type ebSurface struct {
	dst *ebiten.Image
	bg  color.NRGBA
}

func newEbSurface(w, h int, bg color.NRGBA) *ebSurface {
	return &ebSurface{dst: ebiten.NewImage(max(w, 1), max(h, 1)), bg: bg}
}

func (s *ebSurface) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if b := s.dst.Bounds(); b.Dx() == w && b.Dy() == h {
		return
	}
	s.dst.Deallocate()
	s.dst = ebiten.NewImage(w, h)
}

func (s *ebSurface) ClearRect(x, y, w, h float64) {
	if s.bg.A == 0 {
		s.dst.Clear()
		return
	}
	vector.DrawFilledRect(s.dst, float32(x), float32(y), float32(w), float32(h), s.bg, false)
}

func (s *ebSurface) FillCircle(x, y, r float64, fill color.NRGBA) {
	vector.DrawFilledCircle(s.dst, float32(x), float32(y), float32(r), fill, true)
}

func (s *ebSurface) StrokeLine(x0, y0, x1, y1, width float64, stroke color.NRGBA) {
	vector.StrokeLine(s.dst, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), stroke, true)
}

type game struct {
	ctx     context.Context
	anim    *anim.Animator
	surface *ebSurface
	opts    Options
	paused  bool
	last    field.FrameStats
	w, h    int
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	g.tick()
	return nil
}

// tick advances one frame unless paused.
func (g *game) tick() {
	if !g.paused {
		g.last = g.anim.Frame()
	}
}

// Draw only presents the last frame drawn by Update.
func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.surface.dst, nil)
	if g.opts.ShowStats {
		ebitenutil.DebugPrint(screen, statsLine(g.anim.Field(), g.last, g.paused))
	}
}

// Layout reports window size changes to the animator; they apply on the
// next frame.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.anim.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Run opens a resizable window sized to the field and animates until the
// window is closed, q/Esc is pressed or ctx is done.
func Run(ctx context.Context, f *field.Field, opts Options) error {
	opts = opts.withDefaults()
	w, h := f.Size()
	s := newEbSurface(w, h, opts.Background)
	a, err := anim.New(f, s, opts.animOptions()...)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(max(w, 1), max(h, 1))
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(opts.FPS)

	g := &game{ctx: ctx, anim: a, surface: s, opts: opts, w: w, h: h}
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return ctx.Err()
}
