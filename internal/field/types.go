package field

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultCount        = 100
	DefaultSpeed        = 0.25
	DefaultMinRadius    = 1.0
	DefaultMaxRadius    = 3.0
	DefaultLinkDistance = 120.0
	DefaultMaxLinkAlpha = 0.2
	DefaultLineWidth    = 1.0
)

// Particle is a point with a constant-speed velocity in surface units per frame.
type Particle struct {
	Pos    r2.Vec
	Vel    r2.Vec
	Radius float64
}

// Surface is the drawable area a field renders onto.
type Surface interface {
	ClearRect(x, y, w, h float64)
	FillCircle(x, y, r float64, fill color.NRGBA)
	StrokeLine(x0, y0, x1, y1, width float64, stroke color.NRGBA)
}

// Params controls how particles are sampled and drawn.
type Params struct {
	Count        int
	Speed        float64 // velocity components are sampled from [-Speed, Speed)
	MinRadius    float64
	MaxRadius    float64
	LinkDistance float64
	MaxLinkAlpha float64
	LineWidth    float64
	Fill         color.NRGBA
	Link         color.NRGBA // alpha is replaced per pair
}

func DefaultParams() Params {
	return Params{
		Count:        DefaultCount,
		Speed:        DefaultSpeed,
		MinRadius:    DefaultMinRadius,
		MaxRadius:    DefaultMaxRadius,
		LinkDistance: DefaultLinkDistance,
		MaxLinkAlpha: DefaultMaxLinkAlpha,
		LineWidth:    DefaultLineWidth,
		Fill:         color.NRGBA{R: 255, G: 255, B: 255, A: 128},
		Link:         color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

func (p Params) Validate() error {
	switch {
	case p.Count < 0:
		return fmt.Errorf("%w: count must be non-negative, got %d", ErrInvalidParams, p.Count)
	case p.Speed < 0:
		return fmt.Errorf("%w: speed must be non-negative, got %f", ErrInvalidParams, p.Speed)
	case p.MinRadius <= 0:
		return fmt.Errorf("%w: min radius must be positive, got %f", ErrInvalidParams, p.MinRadius)
	case p.MaxRadius < p.MinRadius:
		return fmt.Errorf("%w: max radius %f below min radius %f", ErrInvalidParams, p.MaxRadius, p.MinRadius)
	case p.LinkDistance <= 0:
		return fmt.Errorf("%w: link distance must be positive, got %f", ErrInvalidParams, p.LinkDistance)
	case p.MaxLinkAlpha < 0 || p.MaxLinkAlpha > 1:
		return fmt.Errorf("%w: max link alpha must be in [0, 1], got %f", ErrInvalidParams, p.MaxLinkAlpha)
	case p.LineWidth <= 0:
		return fmt.Errorf("%w: line width must be positive, got %f", ErrInvalidParams, p.LineWidth)
	}
	return nil
}

// FrameStats summarises a single call to Field.Frame.
type FrameStats struct {
	Frame       uint64
	Reflections int
	Links       int
	AlphaSum    float64
}

func (s FrameStats) MeanAlpha() float64 {
	if s.Links == 0 {
		return 0
	}
	return s.AlphaSum / float64(s.Links)
}
