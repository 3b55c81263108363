package surface

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a terminal surface made of braille cells. Each cell holds 2x4
// dots; one dot covers Scale×Scale surface units. Alpha records the most
// opaque thing drawn into each cell so the renderer can shade faint links.
type Canvas struct {
	Width, Height int // cells
	Scale         float64
	Grid          [][]rune
	Alpha         [][]float64
}

// NewCanvas returns a canvas of w×h cells. Scale is surface units per dot.
func NewCanvas(w, h int, scale float64) *Canvas {
	if scale <= 0 {
		scale = 1
	}
	c := &Canvas{Scale: scale}
	c.alloc(w, h)
	return c
}

func (c *Canvas) alloc(w, h int) {
	c.Width, c.Height = max(w, 0), max(h, 0)
	c.Grid = make([][]rune, c.Height)
	c.Alpha = make([][]float64, c.Height)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, c.Width)
		c.Alpha[i] = make([]float64, c.Width)
	}
	c.reset()
}

// UnitsFor returns the surface size of a canvas with w×h cells.
func UnitsFor(w, h int, scale float64) (int, int) {
	return int(float64(w*2) * scale), int(float64(h*4) * scale)
}

// Resize reallocates the grid to cover w×h surface units.
func (c *Canvas) Resize(w, h int) {
	cols := int(math.Ceil(float64(w) / c.Scale / 2))
	rows := int(math.Ceil(float64(h) / c.Scale / 4))
	if cols == c.Width && rows == c.Height {
		return
	}
	c.alloc(cols, rows)
}

// set lights the dot at (x, y) in dot coordinates, keeping the strongest
// alpha drawn into its cell. The canvas is (Width*2)×(Height*4) dots.
func (c *Canvas) set(x, y int, alpha float64) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= pixelMap[y%4][x%2]
	if alpha > c.Alpha[row][col] {
		c.Alpha[row][col] = alpha
	}
}

func (c *Canvas) lit(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) reset() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
			c.Alpha[i][j] = 0
		}
	}
}

// line draws with Bresenham's algorithm.
func (c *Canvas) line(x0, y0, x1, y1 int, alpha float64) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.set(x0, y0, alpha)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) dot(v float64) int {
	return int(math.Floor(v / c.Scale))
}

// ClearRect blanks every cell touched by the rectangle.
func (c *Canvas) ClearRect(x, y, w, h float64) {
	r0, r1 := max(c.dot(y)/4, 0), min(c.dot(y+h)/4, c.Height-1)
	c0, c1 := max(c.dot(x)/2, 0), min(c.dot(x+w)/2, c.Width-1)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			c.Grid[row][col] = brailleBlank
			c.Alpha[row][col] = 0
		}
	}
}

// FillCircle lights every dot whose centre lies inside the circle. Circles
// smaller than a dot still light the dot under their centre.
func (c *Canvas) FillCircle(x, y, r float64, fill color.NRGBA) {
	alpha := Opacity(fill)
	cx, cy, rd := x/c.Scale, y/c.Scale, r/c.Scale
	if rd < 1 {
		c.set(int(math.Floor(cx)), int(math.Floor(cy)), alpha)
		return
	}
	for py := int(math.Floor(cy - rd)); py <= int(math.Ceil(cy+rd)); py++ {
		for px := int(math.Floor(cx - rd)); px <= int(math.Ceil(cx+rd)); px++ {
			dx, dy := float64(px)+0.5-cx, float64(py)+0.5-cy
			if dx*dx+dy*dy <= rd*rd {
				c.set(px, py, alpha)
			}
		}
	}
}

// StrokeLine draws a one-dot-wide line; width is ignored at braille resolution.
func (c *Canvas) StrokeLine(x0, y0, x1, y1, _ float64, stroke color.NRGBA) {
	c.line(c.dot(x0), c.dot(y0), c.dot(x1), c.dot(y1), Opacity(stroke))
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Palette maps cell alpha to a lipgloss style.
type Palette struct {
	styles []lipgloss.Style
	full   float64
}

// NewPalette blends levels shades from lo to hi. Cells at or above full
// alpha get the hi shade.
func NewPalette(lo, hi color.NRGBA, levels int, full float64) Palette {
	if levels < 2 {
		levels = 2
	}
	if full <= 0 {
		full = 1
	}
	p := Palette{styles: make([]lipgloss.Style, levels), full: full}
	for i := range p.styles {
		c := Blend(lo, hi, float64(i)/float64(levels-1))
		p.styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(Hex(c)))
	}
	return p
}

func (p Palette) level(alpha float64) int {
	n := len(p.styles) - 1
	l := int(math.Round(alpha / p.full * float64(n)))
	return max(0, min(l, n))
}

// Render returns the canvas with each run of equally shaded cells wrapped
// in its palette style.
func (c *Canvas) Render(p Palette) string {
	if len(p.styles) == 0 {
		return c.String()
	}
	var b strings.Builder
	for row := range c.Grid {
		start := 0
		for col := 1; col <= c.Width; col++ {
			if col < c.Width && p.level(c.Alpha[row][col]) == p.level(c.Alpha[row][start]) {
				continue
			}
			run := string(c.Grid[row][start:col])
			b.WriteString(p.styles[p.level(c.Alpha[row][start])].Render(run))
			start = col
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
