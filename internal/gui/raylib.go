//go:build !ebiten

package gui

import (
	"context"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/driftfield/internal/anim"
	"github.com/san-kum/driftfield/internal/field"
)

// rlSurface draws straight onto the current raylib frame.
type rlSurface struct {
	bg rl.Color
}

func toRL(c color.NRGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

func (s *rlSurface) ClearRect(x, y, w, h float64) {
	rl.DrawRectangleRec(rl.NewRectangle(float32(x), float32(y), float32(w), float32(h)), s.bg)
}

func (s *rlSurface) FillCircle(x, y, r float64, fill color.NRGBA) {
	rl.DrawCircleV(rl.NewVector2(float32(x), float32(y)), float32(r), toRL(fill))
}

func (s *rlSurface) StrokeLine(x0, y0, x1, y1, width float64, stroke color.NRGBA) {
	rl.DrawLineEx(rl.NewVector2(float32(x0), float32(y0)), rl.NewVector2(float32(x1), float32(y1)), float32(width), toRL(stroke))
}

// Run opens a resizable window sized to the field and animates until the
// window is closed, q/Esc is pressed or ctx is done.
func Run(ctx context.Context, f *field.Field, opts Options) error {
	opts = opts.withDefaults()
	s := &rlSurface{bg: toRL(opts.Background)}
	a, err := anim.New(f, s, opts.animOptions()...)
	if err != nil {
		return err
	}

	w, h := f.Size()
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(max(w, 1)), int32(max(h, 1)), opts.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(opts.FPS))
	rl.SetExitKey(0)

	paused := false
	var st field.FrameStats
	for !rl.WindowShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
			return nil
		}
		if rl.IsKeyPressed(rl.KeySpace) {
			paused = !paused
		}
		if rl.IsWindowResized() {
			a.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
		}

		rl.BeginDrawing()
		rl.ClearBackground(s.bg)
		if paused {
			f.Render(s)
		} else {
			st = a.Frame()
		}
		if opts.ShowStats {
			rl.DrawText(statsLine(f, st, paused), 10, 10, 16, rl.Gray)
			rl.DrawFPS(10, 30)
		}
		rl.EndDrawing()
	}
	return nil
}
