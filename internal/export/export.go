// Package export writes field snapshots and animations to disk.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/surface"
)

// Format picks an output format from a file extension.
func Format(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		return "svg", nil
	case ".png":
		return "png", nil
	case ".gif":
		return "gif", nil
	default:
		return "", fmt.Errorf("unsupported output format %q", ext)
	}
}

// Snapshot renders the field's current state to path (.svg or .png).
func Snapshot(path string, f *field.Field, bg color.NRGBA) error {
	format, err := Format(path)
	if err != nil {
		return err
	}
	switch format {
	case "svg":
		return WriteSVG(path, f, bg)
	case "png":
		return WritePNG(path, f, bg)
	default:
		return fmt.Errorf("snapshot cannot write %s, use record", format)
	}
}

func WriteSVG(path string, f *field.Field, bg color.NRGBA) error {
	w, h := f.Size()
	s := surface.NewSVG(w, h, bg)
	f.Render(s)

	return create(path, func(out io.Writer) error {
		_, err := s.WriteTo(out)
		return err
	})
}

func WritePNG(path string, f *field.Field, bg color.NRGBA) error {
	w, h := f.Size()
	r := surface.NewRaster(w, h, bg)
	f.Render(r)

	return create(path, func(out io.Writer) error {
		return png.Encode(out, r.Image())
	})
}

// create runs write against a new file at path and reports the close
// error, which is where a short write on some filesystems first shows up.
func create(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// GIFRecorder captures raster frames into an animated GIF.
type GIFRecorder struct {
	raster *surface.Raster
	every  uint64
	delay  int // hundredths of a second
	limit  int
	frames []*image.Paletted
}

// NewGIFRecorder captures every n-th frame drawn onto r. fps is the source
// frame rate; it sets the per-frame delay so playback speed matches.
func NewGIFRecorder(r *surface.Raster, every, fps, limit int) *GIFRecorder {
	every = max(every, 1)
	if fps <= 0 {
		fps = 60
	}
	delay := max(int(time.Duration(every)*time.Second/time.Duration(fps)/(10*time.Millisecond)), 1)
	return &GIFRecorder{raster: r, every: uint64(every), delay: delay, limit: limit}
}

func (g *GIFRecorder) OnFrame(st field.FrameStats, _ time.Duration) {
	if st.Frame%g.every != 0 {
		return
	}
	if g.limit > 0 && len(g.frames) >= g.limit {
		return
	}
	g.Capture(g.raster.Image())
}

// Capture appends img quantised to the Plan 9 palette.
func (g *GIFRecorder) Capture(img image.Image) {
	b := img.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(p, b, img, b.Min)
	g.frames = append(g.frames, p)
}

func (g *GIFRecorder) Len() int { return len(g.frames) }

func (g *GIFRecorder) Reset() { g.frames = g.frames[:0] }

func (g *GIFRecorder) Save(path string) error {
	if len(g.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, fr := range g.frames {
		anim.Image = append(anim.Image, fr)
		anim.Delay = append(anim.Delay, g.delay)
	}

	return create(path, func(out io.Writer) error {
		return gif.EncodeAll(out, &anim)
	})
}
