package surface

import (
	"fmt"
	"image/color"
	"io"
	"strings"
)

// SVG records draw calls as SVG elements. Clearing discards everything
// drawn so far, so the document always holds the last frame.
type SVG struct {
	width, height int
	bg            color.NRGBA
	body          strings.Builder
}

func NewSVG(w, h int, bg color.NRGBA) *SVG {
	return &SVG{width: max(w, 0), height: max(h, 0), bg: bg}
}

func (s *SVG) Resize(w, h int) {
	s.width, s.height = max(w, 0), max(h, 0)
}

func (s *SVG) ClearRect(x, y, w, h float64) {
	if x <= 0 && y <= 0 && w >= float64(s.width) && h >= float64(s.height) {
		s.body.Reset()
		return
	}
	fmt.Fprintf(&s.body, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="%.3f"/>
`, x, y, w, h, Hex(s.bg), Opacity(s.bg))
}

func (s *SVG) FillCircle(x, y, r float64, fill color.NRGBA) {
	fmt.Fprintf(&s.body, `<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s" fill-opacity="%.3f"/>
`, x, y, r, Hex(fill), Opacity(fill))
}

func (s *SVG) StrokeLine(x0, y0, x1, y1, width float64, stroke color.NRGBA) {
	fmt.Fprintf(&s.body, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-opacity="%.3f" stroke-width="%.1f"/>
`, x0, y0, x1, y1, Hex(stroke), Opacity(stroke), width)
}

func (s *SVG) String() string {
	var sb strings.Builder

	// SVG header
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s.width, s.height, s.width, s.height))
	if s.bg.A > 0 {
		sb.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s" fill-opacity="%.3f"/>
`, Hex(s.bg), Opacity(s.bg)))
	}
	sb.WriteString("<g>\n")
	sb.WriteString(s.body.String())
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}
