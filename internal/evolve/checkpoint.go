package evolve

import (
	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/storage"
)

// WriteCheckpoint bumps the checkpoint number of status, marks the current
// time as the last checkpoint, and writes the primitive state with status
// and extras to dir. On failure status is left as it was.
func (op *Operator) WriteCheckpoint(dir string, status *dynamo.Status, extras map[string]any) (string, error) {
	prev := *status
	status.LastCheckpoint = status.Time
	status.CheckpointNumber++

	cp := &storage.Checkpoint{
		Primitive: storage.NewFieldRecord(op.fluid.Primitive()),
		Status:    *status,
	}
	for name, v := range extras {
		if err := cp.SetExtra(name, v); err != nil {
			*status = prev
			return "", err
		}
	}

	path, err := storage.WriteCheckpoint(dir, cp)
	if err != nil {
		*status = prev
		return "", err
	}
	op.log.Info().Str("path", path).Int("number", status.CheckpointNumber).Float64("time", status.Time).Msg("wrote checkpoint")
	return path, nil
}
