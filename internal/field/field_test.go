package field_test

import (
	"image/color"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/driftfield/internal/field"
	"gonum.org/v1/gonum/spatial/r2"
)

type stroke struct {
	x0, y0, x1, y1, width float64
	color                 color.NRGBA
}

type recorder struct {
	clears  [][4]float64
	circles []r2.Vec
	strokes []stroke
}

func (r *recorder) ClearRect(x, y, w, h float64) {
	r.clears = append(r.clears, [4]float64{x, y, w, h})
}

func (r *recorder) FillCircle(x, y, _ float64, _ color.NRGBA) {
	r.circles = append(r.circles, r2.Vec{X: x, Y: y})
}

func (r *recorder) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	r.strokes = append(r.strokes, stroke{x0, y0, x1, y1, width, c})
}

func still(x, y float64) field.Particle {
	return field.Particle{Pos: r2.Vec{X: x, Y: y}, Radius: 2}
}

var _ = Describe("Field", func() {
	params := field.DefaultParams()

	Describe("New", func() {
		It("samples particles inside the configured ranges", func() {
			f, err := field.New(800, 600, params, rand.NewPCG(7, 11))
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Len()).To(Equal(field.DefaultCount))

			for _, p := range f.Particles() {
				Expect(p.Pos.X).To(BeNumerically(">=", 0))
				Expect(p.Pos.X).To(BeNumerically("<", 800))
				Expect(p.Pos.Y).To(BeNumerically(">=", 0))
				Expect(p.Pos.Y).To(BeNumerically("<", 600))
				Expect(p.Vel.X).To(BeNumerically(">=", -0.25))
				Expect(p.Vel.X).To(BeNumerically("<", 0.25))
				Expect(p.Vel.Y).To(BeNumerically(">=", -0.25))
				Expect(p.Vel.Y).To(BeNumerically("<", 0.25))
				Expect(p.Radius).To(BeNumerically(">=", 1))
				Expect(p.Radius).To(BeNumerically("<", 3))
			}
		})

		It("reproduces the same field from the same seed", func() {
			a, _ := field.New(640, 480, params, rand.NewPCG(1, 2))
			b, _ := field.New(640, 480, params, rand.NewPCG(1, 2))
			Expect(a.Particles()).To(Equal(b.Particles()))
		})

		It("rejects invalid parameters", func() {
			bad := params
			bad.MinRadius = 0
			_, err := field.New(100, 100, bad, nil)
			Expect(err).To(MatchError(field.ErrInvalidParams))

			bad = params
			bad.Count = -1
			_, err = field.New(100, 100, bad, nil)
			Expect(err).To(MatchError(field.ErrInvalidParams))
		})

		It("keeps radii fixed across frames", func() {
			f, _ := field.New(300, 300, params, rand.NewPCG(3, 4))
			before := f.Particles()
			for range 50 {
				f.Frame(&recorder{})
			}
			for i, p := range f.Particles() {
				Expect(p.Radius).To(Equal(before[i].Radius))
			}
		})
	})

	Describe("Step", func() {
		It("overshoots the edge by one step and flips the velocity", func() {
			f, err := field.FromParticles(100, 100, params, []field.Particle{
				{Pos: r2.Vec{X: 0, Y: 0}, Vel: r2.Vec{X: -1, Y: 0}, Radius: 1},
				{Pos: r2.Vec{X: 50, Y: 50}, Radius: 1},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(f.Step()).To(Equal(1))
			a := f.Particles()[0]
			Expect(a.Pos.X).To(Equal(-1.0))
			Expect(a.Vel.X).To(Equal(1.0))
			Expect(a.Vel.Y).To(Equal(0.0))

			f.Step()
			Expect(f.Particles()[0].Pos.X).To(Equal(0.0))
		})

		It("flips each axis exactly once per crossing", func() {
			f, _ := field.FromParticles(100, 100, params, []field.Particle{
				{Pos: r2.Vec{X: 1, Y: 50}, Vel: r2.Vec{X: -0.25, Y: 0.1}, Radius: 1},
			})
			flipsX := 0
			prev := f.Particles()[0].Vel
			for range 40 {
				f.Step()
				cur := f.Particles()[0].Vel
				if cur.X != prev.X {
					flipsX++
				}
				Expect(cur.Y).To(Equal(0.1))
				prev = cur
			}
			Expect(flipsX).To(Equal(1))
		})

		It("reflects both axes independently at a corner", func() {
			f, _ := field.FromParticles(10, 10, params, []field.Particle{
				{Pos: r2.Vec{X: 9.9, Y: 9.9}, Vel: r2.Vec{X: 0.2, Y: 0.2}, Radius: 1},
			})
			Expect(f.Step()).To(Equal(2))
			p := f.Particles()[0]
			Expect(p.Vel).To(Equal(r2.Vec{X: -0.2, Y: -0.2}))
		})

		It("keeps particles within one step of the bounds", func() {
			f, _ := field.New(200, 150, params, rand.NewPCG(5, 6))
			for range 5000 {
				f.Step()
				for _, p := range f.Particles() {
					Expect(p.Pos.X).To(BeNumerically(">=", -params.Speed))
					Expect(p.Pos.X).To(BeNumerically("<=", 200+params.Speed))
					Expect(p.Pos.Y).To(BeNumerically(">=", -params.Speed))
					Expect(p.Pos.Y).To(BeNumerically("<=", 150+params.Speed))
				}
			}
		})
	})

	Describe("Resize", func() {
		It("updates bounds without moving particles", func() {
			f, _ := field.New(800, 600, params, rand.NewPCG(9, 9))
			before := f.Particles()
			f.Resize(320, 200)

			w, h := f.Size()
			Expect(w).To(Equal(320))
			Expect(h).To(Equal(200))
			Expect(f.Particles()).To(Equal(before))
		})

		It("clamps negative sizes to zero", func() {
			f, _ := field.New(10, 10, params, nil)
			f.Resize(-5, -1)
			w, h := f.Size()
			Expect(w).To(Equal(0))
			Expect(h).To(Equal(0))
		})

		It("turns stranded particles back inside", func() {
			f, _ := field.FromParticles(600, 100, params, []field.Particle{
				{Pos: r2.Vec{X: 500, Y: 50}, Vel: r2.Vec{X: 0.2, Y: 0}, Radius: 1},
			})
			f.Resize(300, 100)

			f.Step()
			Expect(f.Particles()[0].Vel.X).To(Equal(-0.2))
			for range 1100 {
				f.Step()
			}
			Expect(f.Particles()[0].Pos.X).To(BeNumerically("<=", 300))
		})

		It("flips once per crossing while still outside", func() {
			f, _ := field.FromParticles(600, 100, params, []field.Particle{
				{Pos: r2.Vec{X: 500, Y: 50}, Vel: r2.Vec{X: 0.5, Y: 0}, Radius: 1},
			})
			f.Resize(300, 100)

			Expect(f.Step()).To(Equal(1))
			for range 10 {
				Expect(f.Step()).To(Equal(0))
				Expect(f.Particles()[0].Vel.X).To(Equal(-0.5))
			}
			Expect(f.Particles()[0].Pos.X).To(BeNumerically(">", 300))
		})
	})

	Describe("Frame", func() {
		It("clears, draws every particle and links close pairs", func() {
			f, _ := field.FromParticles(800, 600, params, []field.Particle{
				still(100, 100),
				still(160, 100),
				still(400, 400),
			})
			rec := &recorder{}
			st := f.Frame(rec)

			Expect(rec.clears).To(Equal([][4]float64{{0, 0, 800, 600}}))
			Expect(rec.circles).To(HaveLen(3))
			Expect(rec.strokes).To(HaveLen(1))

			s := rec.strokes[0]
			Expect([]float64{s.x0, s.y0, s.x1, s.y1}).To(Equal([]float64{100, 100, 160, 100}))
			Expect(s.width).To(Equal(1.0))
			Expect(s.color.A).To(Equal(uint8(26)))

			Expect(st.Frame).To(Equal(uint64(1)))
			Expect(st.Links).To(Equal(1))
			Expect(st.MeanAlpha()).To(BeNumerically("~", 0.1, 1e-12))
		})

		It("draws no line at exactly the link distance", func() {
			f, _ := field.FromParticles(800, 600, params, []field.Particle{
				still(0, 10),
				still(120, 10),
			})
			rec := &recorder{}
			Expect(f.Frame(rec).Links).To(Equal(0))
			Expect(rec.strokes).To(BeEmpty())
		})

		It("does nothing without a surface", func() {
			f, _ := field.FromParticles(100, 100, params, []field.Particle{
				{Pos: r2.Vec{X: 10, Y: 10}, Vel: r2.Vec{X: 1, Y: 1}, Radius: 1},
			})
			st := f.Frame(nil)
			Expect(st.Frame).To(BeZero())
			Expect(f.FrameCount()).To(BeZero())
			Expect(f.Particles()[0].Pos).To(Equal(r2.Vec{X: 10, Y: 10}))
		})

		It("returns an independent particle copy", func() {
			f, _ := field.FromParticles(100, 100, params, []field.Particle{still(1, 1)})
			ps := f.Particles()
			ps[0].Pos.X = 99
			Expect(f.Particles()[0].Pos.X).To(Equal(1.0))
		})
	})
})

var _ = Describe("Render", func() {
	It("draws the current state without advancing it", func() {
		f, _ := field.FromParticles(300, 300, field.DefaultParams(), []field.Particle{
			{Pos: r2.Vec{X: 10, Y: 10}, Vel: r2.Vec{X: 1, Y: 1}, Radius: 1},
			{Pos: r2.Vec{X: 20, Y: 10}, Radius: 1},
		})
		rec := &recorder{}
		st := f.Render(rec)

		Expect(st.Links).To(Equal(1))
		Expect(rec.circles).To(ConsistOf(r2.Vec{X: 10, Y: 10}, r2.Vec{X: 20, Y: 10}))
		Expect(f.FrameCount()).To(BeZero())
		Expect(f.Particles()[0].Pos).To(Equal(r2.Vec{X: 10, Y: 10}))
	})
})
