package surface

import "image/color"

// Discard is a surface that draws nothing, for headless runs that only
// need frame statistics.
var Discard discard

type discard struct{}

func (discard) ClearRect(x, y, w, h float64)                                 {}
func (discard) FillCircle(x, y, r float64, fill color.NRGBA)                 {}
func (discard) StrokeLine(x0, y0, x1, y1, width float64, stroke color.NRGBA) {}
