// Package storage persists run metadata, measurement tables and checkpoints
// under a base directory, one subdirectory per run.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/darien0/fish/internal/dynamo"
)

// FieldRecord is the serialized form of a primitive field, guard zones
// included.
type FieldRecord struct {
	Shape []int     `json:"shape"`
	Lo    []float64 `json:"lo"`
	Hi    []float64 `json:"hi"`
	Nq    int       `json:"nq"`
	Data  []float64 `json:"data"`
}

func NewFieldRecord(f *dynamo.Field) FieldRecord {
	g := f.Grid()
	rec := FieldRecord{Shape: g.InteriorShape(), Nq: f.Nq(), Data: append([]float64(nil), f.Data()...)}
	for a := 0; a < g.Dim(); a++ {
		rec.Lo = append(rec.Lo, g.Axis(a).Lo)
		rec.Hi = append(rec.Hi, g.Axis(a).Hi)
	}
	return rec
}

// Field rebuilds the grid and field the record was taken from.
func (r FieldRecord) Field() (*dynamo.Field, error) {
	g, err := dynamo.NewGrid(r.Shape, r.Lo, r.Hi)
	if err != nil {
		return nil, err
	}
	return dynamo.FieldFrom(g, r.Nq, r.Data)
}

// Checkpoint is an immutable snapshot of the fluid and the run status.
type Checkpoint struct {
	Primitive FieldRecord                `json:"primitive"`
	Status    dynamo.Status              `json:"status"`
	Extras    map[string]json.RawMessage `json:"extras,omitempty"`
}

// SetExtra stores v under name.
func (c *Checkpoint) SetExtra(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode extra %q: %w", name, err)
	}
	if c.Extras == nil {
		c.Extras = make(map[string]json.RawMessage)
	}
	c.Extras[name] = raw
	return nil
}

// Extra decodes the extra stored under name into v.
func (c *Checkpoint) Extra(name string, v any) error {
	raw, ok := c.Extras[name]
	if !ok {
		return fmt.Errorf("checkpoint has no extra %q", name)
	}
	return json.Unmarshal(raw, v)
}

func CheckpointName(number int) string {
	return fmt.Sprintf("chkpt.%04d.json", number)
}

// WriteCheckpoint writes cp to dir as chkpt.NNNN.json, numbered by
// cp.Status.CheckpointNumber. The file is created exclusively; an existing
// checkpoint is never overwritten. A missing directory is created and the
// write retried once.
func WriteCheckpoint(dir string, cp *Checkpoint) (string, error) {
	path := filepath.Join(dir, CheckpointName(cp.Status.CheckpointNumber))
	data, err := json.Marshal(cp)
	if err != nil {
		return "", &dynamo.IOError{Op: "encode checkpoint", Path: path, Err: err}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrNotExist) {
		if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
			return "", &dynamo.IOError{Op: "create checkpoint directory", Path: dir, Err: mkErr}
		}
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	}
	if err != nil {
		return "", &dynamo.IOError{Op: "create checkpoint", Path: path, Err: err}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", &dynamo.IOError{Op: "write checkpoint", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &dynamo.IOError{Op: "close checkpoint", Path: path, Err: err}
	}
	return path, nil
}

func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &dynamo.IOError{Op: "read checkpoint", Path: path, Err: err}
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, &dynamo.IOError{Op: "decode checkpoint", Path: path, Err: err}
	}
	return &cp, nil
}

// ListCheckpoints returns the checkpoint paths in dir in number order.
func ListCheckpoints(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "chkpt.*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
