package store

import (
	"context"
	"encoding/json"
	"os"

	"github.com/darien0/fish/internal/metrics"
)

type ExportData struct {
	RunID        string                `json:"run_id"`
	Problem      string                `json:"problem"`
	Steps        int                   `json:"steps"`
	Measurements []metrics.Measurement `json:"measurements"`
}

// ExportJSON writes the stored measurement log of runID to path.
func (s *Store) ExportJSON(ctx context.Context, path, runID string) error {
	ms, err := s.Measurements(ctx, runID)
	if err != nil {
		return err
	}

	var problem string
	if err := s.db.QueryRowContext(ctx, `SELECT problem FROM runs WHERE id = ?`, runID).Scan(&problem); err != nil {
		return err
	}

	data := ExportData{
		RunID:        runID,
		Problem:      problem,
		Steps:        len(ms),
		Measurements: ms,
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
