package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

var traceHeader = []string{"frame", "time", "id", "kind", "name", "color", "x", "y", "vx", "vy", "radius", "mass", "locked", "held"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type Removal struct {
	ID     int    `json:"id"`
	Reason string `json:"reason"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Frames    int                `json:"frames"`
	TimeScale float64            `json:"time_scale"`
	Planets   int                `json:"planets"`
	Metrics   map[string]float64 `json:"metrics"`
	Removals  []Removal          `json:"removals"`
	Config    *config.Config     `json:"config"`
}

// Save writes a run directory holding metadata.json and trace.csv, and
// returns the run id.
func (s *Store) Save(name string, cfg *config.Config, frames int, result *experiment.Result) (string, error) {
	if name == "" {
		name = "run"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Seed:      cfg.Seed,
		Frames:    frames,
		TimeScale: cfg.TimeScale,
		Planets:   cfg.Planets,
		Metrics:   result.Metrics,
		Config:    cfg,
	}
	for _, r := range result.Removed {
		meta.Removals = append(meta.Removals, Removal{ID: r.ID, Reason: r.Reason.String()})
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteTrace(f, result.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteTrace writes one CSV row per body per sample.
func WriteTrace(out io.Writer, samples []experiment.Sample) error {
	w := csv.NewWriter(out)
	if err := w.Write(traceHeader); err != nil {
		return err
	}
	for _, s := range samples {
		for _, b := range s.Bodies {
			row := []string{
				strconv.Itoa(s.Frame),
				formatFloat(s.Time),
				strconv.Itoa(b.ID),
				b.Kind.String(),
				b.Name,
				b.Color,
				formatFloat(b.Position.X),
				formatFloat(b.Position.Y),
				formatFloat(b.Velocity.X),
				formatFloat(b.Velocity.Y),
				formatFloat(b.Radius),
				formatFloat(b.Mass),
				strconv.FormatBool(b.Locked),
				strconv.FormatBool(b.Held),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrace reads trace.csv back into samples, one per frame.
func (s *Store) LoadTrace(runID string) ([]experiment.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTrace(f)
}

func ReadTrace(in io.Reader) ([]experiment.Sample, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(traceHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []experiment.Sample{}, nil
	}

	var samples []experiment.Sample
	for i, rec := range records[1:] {
		frame, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: frame: %w", i+2, err)
		}
		b, t, err := parseBody(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if n := len(samples); n == 0 || samples[n-1].Frame != frame {
			samples = append(samples, experiment.Sample{Frame: frame, Time: t})
		}
		last := &samples[len(samples)-1]
		last.Bodies = append(last.Bodies, b)
	}
	return samples, nil
}

func parseBody(rec []string) (dynamo.BodyView, float64, error) {
	var b dynamo.BodyView
	nums := make([]float64, 0, 7)
	for _, idx := range []int{1, 6, 7, 8, 9, 10, 11} {
		v, err := strconv.ParseFloat(rec[idx], 64)
		if err != nil {
			return b, 0, fmt.Errorf("%s: %w", traceHeader[idx], err)
		}
		nums = append(nums, v)
	}
	id, err := strconv.Atoi(rec[2])
	if err != nil {
		return b, 0, fmt.Errorf("id: %w", err)
	}
	if err := b.Kind.UnmarshalText([]byte(rec[3])); err != nil {
		return b, 0, err
	}
	locked, err := strconv.ParseBool(rec[12])
	if err != nil {
		return b, 0, fmt.Errorf("locked: %w", err)
	}
	held, err := strconv.ParseBool(rec[13])
	if err != nil {
		return b, 0, fmt.Errorf("held: %w", err)
	}

	b.ID = id
	b.Name = rec[4]
	b.Color = rec[5]
	b.Position = cp.Vector{X: nums[1], Y: nums[2]}
	b.Velocity = cp.Vector{X: nums[3], Y: nums[4]}
	b.Radius = nums[5]
	b.Mass = nums[6]
	b.Locked = locked
	b.Held = held
	return b, nums[0], nil
}

// RemovalReasons counts removals by reason.
func (m *RunMetadata) RemovalReasons() map[string]int {
	out := make(map[string]int)
	for _, r := range m.Removals {
		out[r.Reason]++
	}
	return out
}
