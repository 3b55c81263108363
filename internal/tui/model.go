package tui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/driftfield/internal/anim"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/export"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/surface"
	"gonum.org/v1/gonum/floats"
)

const (
	panelWidth  = 34
	graphPoints = 120
	recordEvery = 3
	recordLimit = 600
)

type frameMsg time.Time

func tick(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return frameMsg(t) })
}

type recording struct {
	raster *surface.Raster
	gif    *export.GIFRecorder
	path   string
}

// Model is the Bubble Tea model for the live terminal view. Each frame
// message advances the field once and redraws the braille canvas.
type Model struct {
	cfg    *config.Config
	params field.Params
	anim   *anim.Animator
	canvas *surface.Canvas
	stats  *metrics.Collector

	theme   int
	palette surface.Palette
	keys    keyMap
	help    help.Model
	bar     progress.Model
	gauges  *gauges

	paused bool
	sized  bool
	rec    *recording
	outDir string
	status string

	width, height int
}

// New builds the terminal view. GIF recordings are written to outDir.
func New(cfg *config.Config, outDir string) (Model, error) {
	params, err := cfg.Params()
	if err != nil {
		return Model{}, err
	}
	canvas := surface.NewCanvas(0, 0, cfg.CellScale)
	canvas.Resize(cfg.Width, cfg.Height)

	m := Model{
		cfg:    cfg,
		params: params,
		canvas: canvas,
		stats:  metrics.NewCollector(graphPoints),
		theme:  ThemeIndex(cfg.Theme),
		keys:   defaultKeys(),
		help:   help.New(),
		outDir: outDir,
	}
	g := newGauges(cfg.FPS)
	m.gauges = &g
	m.applyTheme()
	if err := m.respawn(cfg.Width, cfg.Height); err != nil {
		return Model{}, err
	}
	return m, nil
}

// respawn samples a new field of w×h units from the configured seed.
func (m *Model) respawn(w, h int) error {
	f, err := field.New(w, h, m.params, m.cfg.Source())
	if err != nil {
		return err
	}
	a, err := anim.New(f, m.canvas, anim.WithFPS(m.cfg.FPS), anim.WithObserver(m.stats))
	if err != nil {
		return err
	}
	m.canvas.Resize(w, h)
	m.stats.Reset()
	m.anim = a
	return nil
}

func (m *Model) applyTheme() {
	t := Themes[m.theme]
	m.palette = t.Palette(surface.Opacity(m.params.Fill))
	m.bar = progress.New(
		progress.WithScaledGradient(t.Secondary, t.Primary),
		progress.WithoutPercentage(),
		progress.WithWidth(panelWidth-10),
	)
}

func (m Model) Field() *field.Field { return m.anim.Field() }
func (m Model) Paused() bool        { return m.paused }
func (m Model) Recording() bool     { return m.rec != nil }
func (m Model) Theme() Theme        { return Themes[m.theme] }

func (m Model) Init() tea.Cmd { return tick(m.cfg.FPS) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := m.surfaceSize()
		if !m.sized {
			// Sample the first field at the terminal's size rather than
			// waiting for particles to drift in from the configured bounds.
			m.sized = true
			if err := m.respawn(w, h); err != nil {
				m.status = err.Error()
			}
			return m, nil
		}
		m.anim.Resize(w, h)
		return m, nil
	case frameMsg:
		if !m.paused {
			m.frame()
		}
		return m, tick(m.cfg.FPS)
	}
	return m, nil
}

// surfaceSize converts the space left beside the panel into surface units.
func (m Model) surfaceSize() (int, int) {
	cols := max(m.width-panelWidth-3, 1)
	rows := max(m.height-3, 1)
	return surface.UnitsFor(cols, rows, m.canvas.Scale)
}

func (m *Model) frame() {
	st := m.anim.Frame()

	if m.params.MaxLinkAlpha > 0 {
		m.gauges.step(gaugeAlpha, st.MeanAlpha()/m.params.MaxLinkAlpha)
	}
	if links := m.stats.Series("links"); len(links) > 0 {
		if peak := floats.Max(links); peak > 0 {
			m.gauges.step(gaugeLinks, float64(st.Links)/peak)
		}
	}
	if last, ok := m.stats.Last(); ok {
		budget := float64(time.Second/time.Duration(m.cfg.FPS)) / float64(time.Microsecond)
		m.gauges.step(gaugeLoad, last.FrameMicros/budget)
	}

	if m.rec != nil && st.Frame%recordEvery == 0 {
		m.capture()
	}
}

func (m *Model) capture() {
	f := m.anim.Field()
	w, h := f.Size()
	if rw, rh := m.rec.raster.Size(); rw != w || rh != h {
		m.rec.raster.Resize(w, h)
	}
	f.Render(m.rec.raster)
	m.rec.gif.Capture(m.rec.raster.Image())
	if m.rec.gif.Len() >= recordLimit {
		m.stopRecording()
	}
}

func (m *Model) startRecording() {
	bg, err := m.cfg.BackgroundColor()
	if err != nil {
		m.status = err.Error()
		return
	}
	w, h := m.anim.Field().Size()
	r := surface.NewRaster(w, h, bg)
	m.rec = &recording{
		raster: r,
		gif:    export.NewGIFRecorder(r, recordEvery, m.cfg.FPS, recordLimit),
		path:   filepath.Join(m.outDir, fmt.Sprintf("driftfield_%d.gif", time.Now().Unix())),
	}
	m.status = "recording"
}

func (m *Model) stopRecording() {
	rec := m.rec
	m.rec = nil
	if err := rec.gif.Save(rec.path); err != nil {
		m.status = err.Error()
		slog.Error("saving recording", "path", rec.path, "err", err)
		return
	}
	m.status = "saved " + filepath.Base(rec.path)
	slog.Info("recording saved", "path", rec.path, "frames", rec.gif.Len())
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.rec != nil {
			m.stopRecording()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keys.Reseed):
		w, h := m.anim.Field().Size()
		m.cfg.Seed = 0
		if err := m.respawn(w, h); err != nil {
			m.status = err.Error()
		}
	case key.Matches(msg, m.keys.Theme):
		m.theme = (m.theme + 1) % len(Themes)
		m.applyTheme()
	case key.Matches(msg, m.keys.Record):
		if m.rec != nil {
			m.stopRecording()
		} else {
			m.startRecording()
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	st := Themes[m.theme].styles()

	view := strings.TrimSuffix(m.canvas.Render(m.palette), "\n")
	left := st.border.Render(view)

	header := st.title.Render("driftfield") + "  " +
		st.muted.Render(fmt.Sprintf("seed %d · %s", m.cfg.Seed, Themes[m.theme].Name))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, m.panel(st))
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) panel(st styles) string {
	var b strings.Builder
	f := m.anim.Field()
	w, h := f.Size()

	switch {
	case m.rec != nil:
		b.WriteString(st.rec.Render(fmt.Sprintf("● REC %d", m.rec.gif.Len())))
	case m.paused:
		b.WriteString(st.paused.Render("PAUSED"))
	default:
		b.WriteString(st.running.Render("RUNNING"))
	}
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(st.label.Render(fmt.Sprintf("%-11s", label)))
		b.WriteString(st.value.Render(value))
		b.WriteByte('\n')
	}
	last, _ := m.stats.Last()
	row("particles", fmt.Sprintf("%d", f.Len()))
	row("surface", fmt.Sprintf("%d×%d", w, h))
	row("frame", fmt.Sprintf("%d", f.FrameCount()))
	row("links", fmt.Sprintf("%d", last.Links))
	row("mean alpha", fmt.Sprintf("%.3f", last.MeanAlpha))
	row("frame time", fmt.Sprintf("%.0fµs", last.FrameMicros))
	b.WriteByte('\n')

	gauge := func(label string, i int) {
		b.WriteString(st.label.Render(fmt.Sprintf("%-7s", label)))
		b.WriteString(m.bar.ViewAs(m.gauges.value(i)))
		b.WriteByte('\n')
	}
	gauge("links", gaugeLinks)
	gauge("alpha", gaugeAlpha)
	gauge("load", gaugeLoad)
	b.WriteByte('\n')

	if links := m.stats.Series("links"); len(links) > 1 {
		chart := asciigraph.Plot(links,
			asciigraph.Height(5),
			asciigraph.Width(panelWidth-10),
			asciigraph.Caption("links"))
		b.WriteString(st.muted.Render(chart))
		b.WriteString("\n\n")
	}

	if m.status != "" {
		b.WriteString(st.muted.Render(m.status))
		b.WriteString("\n\n")
	}
	b.WriteString(m.help.View(m.keys))

	return st.panel.Width(panelWidth).Render(b.String())
}
