package surface

import (
	"image"
	"image/color"
	"math"

	"github.com/tfriedel6/canvas"
	"github.com/tfriedel6/canvas/backend/softwarebackend"
)

// Raster is an in-memory pixel surface with an HTML5-canvas style API.
type Raster struct {
	backend *softwarebackend.SoftwareBackend
	cv      *canvas.Canvas
	bg      color.NRGBA
}

// NewRaster returns a w×h raster. A transparent bg leaves cleared areas
// transparent, like a browser canvas over the page.
func NewRaster(w, h int, bg color.NRGBA) *Raster {
	b := softwarebackend.New(max(w, 1), max(h, 1))
	return &Raster{backend: b, cv: canvas.New(b), bg: bg}
}

func (r *Raster) ClearRect(x, y, w, h float64) {
	r.cv.ClearRect(x, y, w, h)
	if r.bg.A > 0 {
		r.cv.SetFillStyle(r.bg)
		r.cv.FillRect(x, y, w, h)
	}
}

func (r *Raster) FillCircle(x, y, radius float64, fill color.NRGBA) {
	r.cv.BeginPath()
	r.cv.Arc(x, y, radius, 0, math.Pi*2, false)
	r.cv.SetFillStyle(fill)
	r.cv.Fill()
}

func (r *Raster) StrokeLine(x0, y0, x1, y1, width float64, stroke color.NRGBA) {
	r.cv.BeginPath()
	r.cv.SetStrokeStyle(stroke)
	r.cv.SetLineWidth(width)
	r.cv.MoveTo(x0, y0)
	r.cv.LineTo(x1, y1)
	r.cv.Stroke()
}

func (r *Raster) Resize(w, h int) {
	r.backend.SetSize(max(w, 1), max(h, 1))
}

func (r *Raster) Size() (int, int) {
	return r.cv.Width(), r.cv.Height()
}

// Image exposes the backing pixels. The image is reused between frames.
func (r *Raster) Image() *image.RGBA {
	return r.backend.Image
}
