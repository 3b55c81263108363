// Package telemetry streams per-frame metrics to CSV.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/metrics"
)

// Writer appends one CSV row every Every frames.
type Writer struct {
	out           io.Writer
	closer        io.Closer
	every         uint64
	headerWritten bool
	err           error
}

// NewWriter writes rows to w, sampling every n-th frame (n < 1 means every frame).
func NewWriter(w io.Writer, every int) *Writer {
	return &Writer{out: w, every: uint64(max(every, 1))}
}

// Create opens path for writing, creating parent directories.
func Create(path string, every int) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	w := NewWriter(f, every)
	w.closer = f
	return w, nil
}

func (w *Writer) OnFrame(st field.FrameStats, elapsed time.Duration) {
	if w.err != nil || st.Frame%w.every != 0 {
		return
	}
	w.err = w.Write(metrics.Sample{
		Frame:       st.Frame,
		Links:       st.Links,
		MeanAlpha:   st.MeanAlpha(),
		Reflections: st.Reflections,
		FrameMicros: float64(elapsed) / float64(time.Microsecond),
	})
}

// Write appends samples, emitting the header before the first row.
func (w *Writer) Write(samples ...metrics.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	if !w.headerWritten {
		if err := gocsv.Marshal(samples, w.out); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(samples, w.out); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Err reports the first error hit while observing frames.
func (w *Writer) Err() error { return w.err }

func (w *Writer) Close() error {
	if w.closer == nil {
		return w.err
	}
	if err := w.closer.Close(); err != nil {
		return err
	}
	return w.err
}
