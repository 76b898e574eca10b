package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/metrics"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fish.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func measurement(it int) metrics.Measurement {
	return metrics.Measurement{
		Iteration:    it,
		Time:         0.01 * float64(it),
		Kinetic:      float64(it) * 0.5,
		DensityMin:   0.125,
		DensityMax:   1,
		ConservedAvg: [dynamo.NumQ]float64{0.56, 1.4, 0.01},
		PrimitiveAvg: [dynamo.NumQ]float64{0.56, 0.55, 0.02},
		Message:      "step",
	}
}

func TestAppendAndRead(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterRun(ctx, "run-1", "sod"))

	for it := 1; it <= 3; it++ {
		require.NoError(t, s.Append(ctx, "run-1", measurement(it)))
	}

	ms, err := s.Measurements(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.Equal(t, measurement(2), ms[1])
}

func TestAppendRejectsStaleIteration(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterRun(ctx, "run-1", "sod"))
	require.NoError(t, s.Append(ctx, "run-1", measurement(5)))

	err := s.Append(ctx, "run-1", measurement(5))
	assert.True(t, errors.Is(err, dynamo.ErrConfiguration), "got %v", err)
	err = s.Append(ctx, "run-1", measurement(2))
	assert.True(t, errors.Is(err, dynamo.ErrConfiguration), "got %v", err)

	ms, err := s.Measurements(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, ms, 1)
}

func TestAppendRequiresRegisteredRun(t *testing.T) {
	s := createTestStore(t)
	err := s.Append(context.Background(), "ghost", measurement(1))
	assert.Error(t, err)
}

func TestRunsAreIndependent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterRun(ctx, "a", "sod"))
	require.NoError(t, s.RegisterRun(ctx, "b", "explosion2d"))
	require.NoError(t, s.RegisterRun(ctx, "a", "sod"))

	require.NoError(t, s.Append(ctx, "a", measurement(1)))
	require.NoError(t, s.Append(ctx, "b", measurement(1)))
	require.NoError(t, s.Append(ctx, "b", measurement(2)))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	counts := map[string]int{}
	for _, r := range runs {
		counts[r.ID] = r.Count
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, counts)
}

func TestRecorderKeepsFirstError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterRun(ctx, "run", "sod"))

	rec := s.Recorder(ctx, "run")
	rec.OnStep(dynamo.Status{}, measurement(1))
	rec.OnStep(dynamo.Status{}, measurement(1))
	rec.OnStep(dynamo.Status{}, measurement(2))
	require.Error(t, rec.Err())

	ms, err := s.Measurements(ctx, "run")
	require.NoError(t, err)
	assert.Len(t, ms, 1)
}

func TestExportJSON(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterRun(ctx, "run", "sod"))
	require.NoError(t, s.Append(ctx, "run", measurement(1)))

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, s.ExportJSON(ctx, path, "run"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var data ExportData
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "sod", data.Problem)
	assert.Equal(t, 1, data.Steps)
}
