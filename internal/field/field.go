package field

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"
)

// Field is a fixed-size particle set bounded by a resizable surface.
type Field struct {
	params        Params
	width, height int
	particles     []Particle
	frames        uint64
}

// New samples params.Count particles inside a w×h surface. Positions are
// uniform over [0,w)×[0,h), velocity components over [-Speed, Speed) and
// radii over [MinRadius, MaxRadius). A nil src uses the global generator.
func New(w, h int, params Params, src rand.Source) (*Field, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	w, h = max(w, 0), max(h, 0)

	xs := distuv.Uniform{Min: 0, Max: float64(w), Src: src}
	ys := distuv.Uniform{Min: 0, Max: float64(h), Src: src}
	vs := distuv.Uniform{Min: -params.Speed, Max: params.Speed, Src: src}
	rs := distuv.Uniform{Min: params.MinRadius, Max: params.MaxRadius, Src: src}

	particles := make([]Particle, params.Count)
	for i := range particles {
		particles[i] = Particle{
			Pos:    r2.Vec{X: xs.Rand(), Y: ys.Rand()},
			Vel:    r2.Vec{X: vs.Rand(), Y: vs.Rand()},
			Radius: rs.Rand(),
		}
	}

	return &Field{params: params, width: w, height: h, particles: particles}, nil
}

// FromParticles builds a field around an explicit particle set. Count is
// taken from len(ps).
func FromParticles(w, h int, params Params, ps []Particle) (*Field, error) {
	params.Count = len(ps)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	for _, p := range ps {
		if p.Radius <= 0 {
			return nil, ErrInvalidParams
		}
	}
	particles := make([]Particle, len(ps))
	copy(particles, ps)
	return &Field{params: params, width: max(w, 0), height: max(h, 0), particles: particles}, nil
}

func (f *Field) Params() Params     { return f.params }
func (f *Field) Len() int           { return len(f.particles) }
func (f *Field) Size() (int, int)   { return f.width, f.height }
func (f *Field) FrameCount() uint64 { return f.frames }

// Particles returns a copy of the current particle set.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Resize adopts new surface bounds. Particles keep their positions; any
// left outside the new bounds are turned back by the next Step.
func (f *Field) Resize(w, h int) {
	f.width, f.height = max(w, 0), max(h, 0)
}

// Step advances every particle by its velocity and reflects at the bounds.
// It returns the number of velocity components flipped.
func (f *Field) Step() int {
	flips := 0
	for i := range f.particles {
		flips += f.advance(i)
	}
	return flips
}

// advance moves particle i and flips any velocity component that carries it
// further outside [0, W]×[0, H]. Position is not clamped, so a particle can
// sit just past an edge for one frame.
func (f *Field) advance(i int) int {
	p := &f.particles[i]
	p.Pos = r2.Add(p.Pos, p.Vel)

	flips := 0
	if reflect(p.Pos.X, &p.Vel.X, float64(f.width)) {
		flips++
	}
	if reflect(p.Pos.Y, &p.Vel.Y, float64(f.height)) {
		flips++
	}
	return flips
}

// reflect flips vel when pos is past an edge and still heading out. The
// heading check keeps a particle stranded by a shrink from flipping every
// frame: it flips once and is carried back inside.
func reflect(pos float64, vel *float64, limit float64) bool {
	if (pos < 0 && *vel < 0) || (pos > limit && *vel > 0) {
		*vel = -*vel
		return true
	}
	return false
}

// Draw fills one circle per particle.
func (f *Field) Draw(s Surface) {
	if s == nil {
		return
	}
	for i := range f.particles {
		f.drawParticle(s, i)
	}
}

func (f *Field) drawParticle(s Surface, i int) {
	p := f.particles[i]
	s.FillCircle(p.Pos.X, p.Pos.Y, p.Radius, f.params.Fill)
}

// Frame runs one animation frame: clear the surface, move and draw every
// particle, then link close pairs. A nil surface leaves the field untouched.
func (f *Field) Frame(s Surface) FrameStats {
	if s == nil {
		return FrameStats{Frame: f.frames}
	}
	f.frames++
	st := FrameStats{Frame: f.frames}

	s.ClearRect(0, 0, float64(f.width), float64(f.height))
	for i := range f.particles {
		st.Reflections += f.advance(i)
		f.drawParticle(s, i)
	}
	f.drawLinks(s, &st)

	return st
}

// Render draws the current state without advancing it.
func (f *Field) Render(s Surface) FrameStats {
	st := FrameStats{Frame: f.frames}
	if s == nil {
		return st
	}
	s.ClearRect(0, 0, float64(f.width), float64(f.height))
	f.Draw(s)
	f.drawLinks(s, &st)
	return st
}

func (f *Field) drawLinks(s Surface, st *FrameStats) {
	stroke := f.params.Link
	f.Links(func(i, j int, _, alpha float64) {
		a, b := f.particles[i].Pos, f.particles[j].Pos
		stroke.A = uint8(math.Round(alpha * 255))
		s.StrokeLine(a.X, a.Y, b.X, b.Y, f.params.LineWidth, stroke)
		st.Links++
		st.AlphaSum += alpha
	})
}
