package gui

import (
	"strings"
	"testing"

	"github.com/san-kum/driftfield/internal/anim"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/metrics"
)

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.Title != "driftfield" || o.FPS != anim.DefaultFPS {
		t.Errorf("unexpected defaults %+v", o)
	}

	o = Options{Title: "x", FPS: 30, Observers: []anim.Observer{metrics.NewCollector(10)}}.withDefaults()
	if o.Title != "x" || o.FPS != 30 {
		t.Errorf("defaults overrode explicit values: %+v", o)
	}
	if got := len(o.animOptions()); got != 2 {
		t.Errorf("expected fps + 1 observer option, got %d", got)
	}
}

func TestStatsLine(t *testing.T) {
	f, err := field.New(320, 200, field.DefaultParams(), nil)
	if err != nil {
		t.Fatal(err)
	}
	line := statsLine(f, field.FrameStats{Links: 7}, true)
	for _, want := range []string{"100 particles", "320x200", "links 7", "[paused]"} {
		if !strings.Contains(line, want) {
			t.Errorf("%q missing %q", line, want)
		}
	}
}
