package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/storage"
)

func execute(t *testing.T, args ...string) {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("driftfield %v: %v", args, err)
	}
}

func TestConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "field.yaml")
	if err := os.WriteFile(file, []byte("count: 33\nspeed: 0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "effective.yaml")

	execute(t, "config", "--preset", "dense", "--config", file, "--speed", "0.75", "--save", out)

	cfg, err := config.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	dense := config.GetPreset("dense")
	if cfg.Count != 33 {
		t.Errorf("config file should override preset count, got %d", cfg.Count)
	}
	if cfg.Speed != 0.75 {
		t.Errorf("flag should override config file speed, got %f", cfg.Speed)
	}
	if cfg.LinkDistance != dense.LinkDistance {
		t.Errorf("preset link distance lost, got %f", cfg.LinkDistance)
	}
}

func TestUnknownPreset(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"config", "--preset", "nope"})
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"presets", "--log-level", "loud"})
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestRunStoresAndSnapshotRestores(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	csv := filepath.Join(dir, "frames.csv")

	execute(t, "run", "--data", data, "--frames", "20", "--count", "15", "--seed", "9",
		"--width", "200", "--height", "120", "--telemetry", csv, "--name", "smoke", "--log-level", "error")

	runs, err := storage.New(data).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 stored run, got %d", len(runs))
	}
	if runs[0].Frames != 20 || runs[0].Seed != 9 {
		t.Errorf("unexpected metadata %+v", runs[0])
	}
	if fi, err := os.Stat(csv); err != nil || fi.Size() == 0 {
		t.Errorf("telemetry not written: %v", err)
	}

	svg := filepath.Join(dir, "final.svg")
	execute(t, "snapshot", svg, "--data", data, "--run", runs[0].ID, "--log-level", "error")
	if _, err := os.Stat(svg); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
}

func TestRecordRejectsNonGIF(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"record", filepath.Join(t.TempDir(), "out.png")})
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Error("expected error recording to png")
	}
}

func TestRunFailsOnTelemetryWriteError(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	data := filepath.Join(t.TempDir(), "data")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"run", "--data", data, "--frames", "10", "--count", "5",
		"--telemetry", "/dev/full", "--log-level", "error"})
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected telemetry write error")
	}

	if runs, _ := storage.New(data).List(); len(runs) != 0 {
		t.Errorf("run stored despite telemetry failure: %+v", runs)
	}
}

func TestRejectsNonPositiveCounts(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"run frames", []string{"run", "--frames", "0", "--no-save"}},
		{"ensemble runs", []string{"ensemble", "--runs", "-1"}},
		{"ensemble frames", []string{"ensemble", "--frames", "0"}},
		{"sweep steps", []string{"sweep", "count", "--steps", "-2"}},
		{"sweep frames", []string{"sweep", "count", "--frames", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetArgs(append(tt.args, "--log-level", "error"))
			cmd.SetErr(io.Discard)
			if err := cmd.Execute(); err == nil {
				t.Errorf("driftfield %v should fail", tt.args)
			}
		})
	}
}
