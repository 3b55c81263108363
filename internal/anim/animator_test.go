package anim_test

import (
	"context"
	"image/color"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/driftfield/internal/anim"
	"github.com/san-kum/driftfield/internal/field"
	"gonum.org/v1/gonum/spatial/r2"
)

type manualClock struct {
	ticks   chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newManualClock() *manualClock {
	return &manualClock{ticks: make(chan time.Time), stopped: make(chan struct{})}
}

func (c *manualClock) C() <-chan time.Time { return c.ticks }
func (c *manualClock) Stop()               { c.once.Do(func() { close(c.stopped) }) }

type sizedSurface struct {
	mu     sync.Mutex
	clears [][2]float64
	w, h   int
}

func (s *sizedSurface) ClearRect(_, _, w, h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears = append(s.clears, [2]float64{w, h})
}

func (s *sizedSurface) FillCircle(_, _, _ float64, _ color.NRGBA)       {}
func (s *sizedSurface) StrokeLine(_, _, _, _, _ float64, _ color.NRGBA) {}

func (s *sizedSurface) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w, s.h = w, h
}

func (s *sizedSurface) lastClear() [2]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears[len(s.clears)-1]
}

func newField() *field.Field {
	f, err := field.FromParticles(400, 300, field.DefaultParams(), []field.Particle{
		{Pos: r2.Vec{X: 10, Y: 10}, Vel: r2.Vec{X: 1, Y: 0}, Radius: 1},
		{Pos: r2.Vec{X: 40, Y: 10}, Radius: 1},
	})
	Expect(err).NotTo(HaveOccurred())
	return f
}

var _ = Describe("Animator", func() {
	var (
		f       *field.Field
		surface *sizedSurface
		clock   *manualClock
	)

	BeforeEach(func() {
		f = newField()
		surface = &sizedSurface{}
		clock = newManualClock()
	})

	It("declines to run without a surface", func() {
		_, err := anim.New(f, nil)
		Expect(err).To(MatchError(field.ErrNoSurface))
	})

	It("runs one frame per tick until cancelled", func() {
		var frames []uint64
		var mu sync.Mutex
		a, err := anim.New(f, surface,
			anim.WithClock(func(int) anim.Clock { return clock }),
			anim.WithObserver(anim.ObserverFunc(func(st field.FrameStats, _ time.Duration) {
				mu.Lock()
				frames = append(frames, st.Frame)
				mu.Unlock()
			})),
		)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- a.Run(ctx) }()

		for range 3 {
			clock.ticks <- time.Now()
		}
		cancel()

		Eventually(done).Should(Receive(MatchError(context.Canceled)))
		Eventually(clock.stopped).Should(BeClosed())

		mu.Lock()
		defer mu.Unlock()
		Expect(frames).To(Equal([]uint64{1, 2, 3}))
	})

	It("applies the latest resize before the next frame", func() {
		a, _ := anim.New(f, surface, anim.WithClock(func(int) anim.Clock { return clock }))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go a.Run(ctx)

		clock.ticks <- time.Now()
		a.Resize(1024, 768)
		a.Resize(640, 480)
		clock.ticks <- time.Now()
		clock.ticks <- time.Now()

		Eventually(surface.lastClear).Should(Equal([2]float64{640, 480}))
		w, h := f.Size()
		Expect([]int{w, h}).To(Equal([]int{640, 480}))
		surface.mu.Lock()
		Expect([]int{surface.w, surface.h}).To(Equal([]int{640, 480}))
		surface.mu.Unlock()
	})

	It("does not move particles on resize", func() {
		a, _ := anim.New(f, surface)
		before := f.Particles()
		a.Resize(50, 50)
		Expect(f.Particles()).To(Equal(before))
	})

	Describe("RunFrames", func() {
		It("runs exactly n frames", func() {
			a, _ := anim.New(f, surface)
			Expect(a.RunFrames(context.Background(), 25)).To(Succeed())
			Expect(f.FrameCount()).To(Equal(uint64(25)))
			Expect(f.Particles()[0].Pos.X).To(Equal(35.0))
		})

		It("stops early when cancelled", func() {
			a, _ := anim.New(f, surface)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(a.RunFrames(ctx, 10)).To(MatchError(context.Canceled))
			Expect(f.FrameCount()).To(BeZero())
		})
	})
})
