package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/metrics"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	metadataFile  = "metadata.json"
	particlesFile = "particles.csv"
	samplesFile   = "samples.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Timestamp time.Time       `json:"timestamp"`
	Seed      uint64          `json:"seed"`
	Frames    uint64          `json:"frames"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Config    *config.Config  `json:"config"`
	Summary   metrics.Summary `json:"summary"`
}

// ParticleRecord is one row of particles.csv.
type ParticleRecord struct {
	Index  int     `csv:"index"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
	VX     float64 `csv:"vx"`
	VY     float64 `csv:"vy"`
	Radius float64 `csv:"radius"`
}

// Run is everything persisted for one headless run.
type Run struct {
	Name      string
	Seed      uint64
	Config    *config.Config
	Field     *field.Field
	Samples   []metrics.Sample
	Summary   metrics.Summary
	Timestamp time.Time
}

// Save writes metadata.json, particles.csv and samples.csv into a new run
// directory and returns its ID.
func (s *Store) Save(run Run) (string, error) {
	if run.Field == nil {
		return "", errors.New("storage: run has no field")
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	name := run.Name
	if name == "" {
		name = "run"
	}

	runID, err := s.mkRunDir(name, run.Timestamp)
	if err != nil {
		return "", err
	}
	runDir := s.Dir(runID)

	w, h := run.Field.Size()
	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: run.Timestamp,
		Seed:      run.Seed,
		Frames:    run.Field.FrameCount(),
		Width:     w,
		Height:    h,
		Config:    run.Config,
		Summary:   run.Summary,
	}
	if err := writeRun(runDir, meta, run); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, run Run) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}

	ps := run.Field.Particles()
	records := make([]ParticleRecord, len(ps))
	for i, p := range ps {
		records[i] = ParticleRecord{Index: i, X: p.Pos.X, Y: p.Pos.Y, VX: p.Vel.X, VY: p.Vel.Y, Radius: p.Radius}
	}
	if err := writeCSV(filepath.Join(runDir, particlesFile), &records); err != nil {
		return err
	}

	samples := run.Samples
	if samples == nil {
		samples = []metrics.Sample{}
	}
	return writeCSV(filepath.Join(runDir, samplesFile), &samples)
}

func (s *Store) mkRunDir(name string, ts time.Time) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s_%d", name, ts.Unix())
	runID := base
	for i := 1; ; i++ {
		err := os.Mkdir(s.Dir(runID), 0755)
		if err == nil {
			return runID, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
		runID = fmt.Sprintf("%s-%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(rows, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// List returns stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadParticles(runID string) ([]field.Particle, error) {
	var records []ParticleRecord
	if err := readCSV(filepath.Join(s.Dir(runID), particlesFile), &records); err != nil {
		return nil, err
	}
	ps := make([]field.Particle, len(records))
	for i, r := range records {
		ps[i] = field.Particle{Pos: r2.Vec{X: r.X, Y: r.Y}, Vel: r2.Vec{X: r.VX, Y: r.VY}, Radius: r.Radius}
	}
	return ps, nil
}

func (s *Store) LoadSamples(runID string) ([]metrics.Sample, error) {
	var samples []metrics.Sample
	if err := readCSV(filepath.Join(s.Dir(runID), samplesFile), &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil && !errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Restore rebuilds a field from a stored run so it can be resumed or
// rendered again.
func (s *Store) Restore(runID string) (*field.Field, *RunMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	ps, err := s.LoadParticles(runID)
	if err != nil {
		return nil, nil, err
	}
	cfg := meta.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, nil, err
	}
	f, err := field.FromParticles(meta.Width, meta.Height, params, ps)
	if err != nil {
		return nil, nil, err
	}
	return f, meta, nil
}
