package telemetry

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/driftfield/internal/field"
)

func TestWriterSamplesEveryN(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 2)

	for i := 1; i <= 5; i++ {
		w.OnFrame(field.FrameStats{Frame: uint64(i), Links: i * 10, AlphaSum: float64(i)}, time.Millisecond)
	}
	if err := w.Err(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "frame,links,mean_alpha,reflections,frame_us" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2,20,") || !strings.HasPrefix(lines[2], "4,40,") {
		t.Errorf("unexpected rows %q %q", lines[1], lines[2])
	}
	if !strings.HasSuffix(lines[1], ",1000") {
		t.Errorf("frame time not in microseconds: %q", lines[1])
	}
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "telemetry.csv")
	w, err := Create(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	w.OnFrame(field.FrameStats{Frame: 1}, 0)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(data), "\n") != 2 {
		t.Errorf("expected 2 lines, got %q", data)
	}
}
