package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/darien0/fish/internal/metrics"
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

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Problem     string             `json:"problem"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Shape       []int              `json:"shape"`
	Order       int                `json:"order"`
	CFL         float64            `json:"cfl"`
	FinalTime   float64            `json:"final_time"`
	Solver      string             `json:"solver"`
	Boundary    string             `json:"boundary"`
	Safety      string             `json:"safety"`
	Iterations  int                `json:"iterations"`
	Time        float64            `json:"time"`
	Checkpoints int                `json:"checkpoints"`
	Error       string             `json:"error,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// Create allocates a new run directory named by a time-ordered UUID and
// writes its metadata.
func (s *Store) Create(meta RunMetadata) (*RunMetadata, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	meta.ID = id.String()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if err := os.MkdirAll(s.RunDir(meta.ID), 0755); err != nil {
		return nil, err
	}
	if err := s.SaveMetadata(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// SaveMetadata rewrites metadata.json for an existing run.
func (s *Store) SaveMetadata(meta *RunMetadata) error {
	metaPath := filepath.Join(s.RunDir(meta.ID), "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// SaveMeasurements writes the measurement log as measurements.csv.
func (s *Store) SaveMeasurements(runID string, ms []metrics.Measurement) error {
	csvFile, err := os.Create(filepath.Join(s.RunDir(runID), "measurements.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	header := []string{"iteration", "time", "kinetic", "density_min", "density_max"}
	for q := range ms0(ms).ConservedAvg {
		header = append(header, fmt.Sprintf("u%d", q))
	}
	for q := range ms0(ms).PrimitiveAvg {
		header = append(header, fmt.Sprintf("p%d", q))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, m := range ms {
		row := []string{
			strconv.Itoa(m.Iteration),
			formatFloat(m.Time),
			formatFloat(m.Kinetic),
			formatFloat(m.DensityMin),
			formatFloat(m.DensityMax),
		}
		for _, v := range m.ConservedAvg {
			row = append(row, formatFloat(v))
		}
		for _, v := range m.PrimitiveAvg {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ms0(ms []metrics.Measurement) metrics.Measurement {
	if len(ms) == 0 {
		return metrics.Measurement{}
	}
	return ms[0]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// LoadSeries reads one named column of measurements.csv along with the
// matching times.
func (s *Store) LoadSeries(runID, column string) ([]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.RunDir(runID), "measurements.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	col := -1
	for i, name := range records[0] {
		if name == column {
			col = i
		}
	}
	if col < 0 {
		return nil, nil, fmt.Errorf("unknown measurement column %q", column)
	}

	values := make([]float64, 0, len(records)-1)
	times := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) <= col {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(record[col], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		values = append(values, v)
	}
	return values, times, nil
}

// List returns every run with readable metadata, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
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
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
