package metrics

import (
	"log/slog"
	"time"

	"github.com/san-kum/driftfield/internal/field"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const DefaultWindow = 600

// Sample is one frame's statistics.
type Sample struct {
	Frame       uint64  `csv:"frame" json:"frame"`
	Links       int     `csv:"links" json:"links"`
	MeanAlpha   float64 `csv:"mean_alpha" json:"mean_alpha"`
	Reflections int     `csv:"reflections" json:"reflections"`
	FrameMicros float64 `csv:"frame_us" json:"frame_us"`
}

// Collector keeps the most recent frames in a ring buffer.
type Collector struct {
	window  int
	samples []Sample
	next    int
	count   int
	total   uint64
}

func NewCollector(window int) *Collector {
	if window < 1 {
		window = DefaultWindow
	}
	return &Collector{window: window, samples: make([]Sample, window)}
}

func (c *Collector) OnFrame(st field.FrameStats, elapsed time.Duration) {
	c.samples[c.next] = Sample{
		Frame:       st.Frame,
		Links:       st.Links,
		MeanAlpha:   st.MeanAlpha(),
		Reflections: st.Reflections,
		FrameMicros: float64(elapsed) / float64(time.Microsecond),
	}
	c.next = (c.next + 1) % c.window
	if c.count < c.window {
		c.count++
	}
	c.total++
}

func (c *Collector) Len() int      { return c.count }
func (c *Collector) Total() uint64 { return c.total }

func (c *Collector) Reset() {
	c.next, c.count, c.total = 0, 0, 0
}

// Samples returns the retained frames, oldest first.
func (c *Collector) Samples() []Sample {
	out := make([]Sample, 0, c.count)
	start := (c.next - c.count + c.window) % c.window
	for i := 0; i < c.count; i++ {
		out = append(out, c.samples[(start+i)%c.window])
	}
	return out
}

// Last returns the newest sample.
func (c *Collector) Last() (Sample, bool) {
	if c.count == 0 {
		return Sample{}, false
	}
	return c.samples[(c.next-1+c.window)%c.window], true
}

// Series extracts one column for plotting: "links", "alpha",
// "reflections" or "frame_us".
func (c *Collector) Series(name string) []float64 {
	return Series(c.Samples(), name)
}

func Series(samples []Sample, name string) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		switch name {
		case "links":
			out[i] = float64(s.Links)
		case "alpha":
			out[i] = s.MeanAlpha
		case "reflections":
			out[i] = float64(s.Reflections)
		case "frame_us":
			out[i] = s.FrameMicros
		default:
			return nil
		}
	}
	return out
}

// Summary aggregates the retained window.
type Summary struct {
	Frames          int     `json:"frames"`
	LinksMean       float64 `json:"links_mean"`
	LinksStdDev     float64 `json:"links_stddev"`
	LinksMax        float64 `json:"links_max"`
	AlphaMean       float64 `json:"alpha_mean"`
	ReflectionsMean float64 `json:"reflections_mean"`
	FrameMicrosMean float64 `json:"frame_us_mean"`
	FrameMicrosMax  float64 `json:"frame_us_max"`
}

func (c *Collector) Summary() Summary {
	return Summarize(c.Samples())
}

func Summarize(samples []Sample) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	links := Series(samples, "links")
	frameUS := Series(samples, "frame_us")
	linksMean, linksStd := stat.MeanStdDev(links, nil)
	return Summary{
		Frames:          len(samples),
		LinksMean:       linksMean,
		LinksStdDev:     linksStd,
		LinksMax:        floats.Max(links),
		AlphaMean:       stat.Mean(Series(samples, "alpha"), nil),
		ReflectionsMean: stat.Mean(Series(samples, "reflections"), nil),
		FrameMicrosMean: stat.Mean(frameUS, nil),
		FrameMicrosMax:  floats.Max(frameUS),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frames", s.Frames),
		slog.Float64("links_mean", s.LinksMean),
		slog.Float64("links_stddev", s.LinksStdDev),
		slog.Float64("links_max", s.LinksMax),
		slog.Float64("alpha_mean", s.AlphaMean),
		slog.Float64("reflections_mean", s.ReflectionsMean),
		slog.Float64("frame_us_mean", s.FrameMicrosMean),
		slog.Float64("frame_us_max", s.FrameMicrosMax),
	)
}
