package trajectory

import (
	"encoding/json"
	"io"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/flightning/quadviz/spatialmath"
)

// record mirrors the arrays a batched simulator produces, indexed [trajectory][step].
// Positions may carry extra state after x, y, z; only the first three values are read.
type record struct {
	Time       [][]float64     `json:"time"`
	Position   [][][]float64   `json:"position"`
	Rotation   [][][][]float64 `json:"rotation"`
	Terminated [][]bool        `json:"terminated"`
	Truncated  [][]bool        `json:"truncated"`
}

// Decode reads a batch from JSON.
func Decode(r io.Reader) (*Batch, error) {
	var rec record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, errors.Wrap(err, "error parsing trajectory JSON")
	}
	if len(rec.Position) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(rec.Rotation) != len(rec.Position) {
		return nil, errors.Errorf("found %d position series but %d rotation series", len(rec.Position), len(rec.Rotation))
	}

	trajs := make([]*Trajectory, len(rec.Position))
	for i := range rec.Position {
		t, err := rec.trajectory(i)
		if err != nil {
			return nil, errors.Wrapf(err, "trajectory %d", i)
		}
		trajs[i] = t
	}
	return NewBatch(trajs...)
}

func (rec *record) trajectory(i int) (*Trajectory, error) {
	positions := rec.Position[i]
	rotations := rec.Rotation[i]
	t := &Trajectory{
		Positions: make([]r3.Vector, len(positions)),
		Rotations: make([]*spatialmath.RotationMatrix, len(rotations)),
	}
	for step, p := range positions {
		if len(p) < 3 {
			return nil, errors.Errorf("position at step %d has %d values, need at least 3", step, len(p))
		}
		t.Positions[step] = r3.Vector{X: p[0], Y: p[1], Z: p[2]}
	}
	for step, rows := range rotations {
		if len(rows) != 3 {
			return nil, errors.Errorf("rotation at step %d has %d rows, need 3", step, len(rows))
		}
		flat := make([]float64, 0, 9)
		for _, row := range rows {
			if len(row) != 3 {
				return nil, errors.Errorf("rotation at step %d has a row of %d values, need 3", step, len(row))
			}
			flat = append(flat, row...)
		}
		rm, err := spatialmath.NewRotationMatrix(flat)
		if err != nil {
			return nil, err
		}
		t.Rotations[step] = rm
	}
	if i < len(rec.Time) {
		t.Times = rec.Time[i]
	}
	if i < len(rec.Terminated) {
		t.Terminated = rec.Terminated[i]
	}
	if i < len(rec.Truncated) {
		t.Truncated = rec.Truncated[i]
	}
	return t, nil
}

// Encode writes a batch as JSON in the layout Decode reads.
func Encode(w io.Writer, b *Batch) error {
	rec := record{}
	for _, t := range b.trajectories {
		positions := make([][]float64, len(t.Positions))
		for i, p := range t.Positions {
			positions[i] = []float64{p.X, p.Y, p.Z}
		}
		rotations := make([][][]float64, len(t.Rotations))
		for i, rm := range t.Rotations {
			rows := make([][]float64, 3)
			for r := range rows {
				row := rm.Row(r)
				rows[r] = []float64{row.X, row.Y, row.Z}
			}
			rotations[i] = rows
		}
		rec.Time = append(rec.Time, nonNilFloats(t.Times))
		rec.Position = append(rec.Position, positions)
		rec.Rotation = append(rec.Rotation, rotations)
		rec.Terminated = append(rec.Terminated, nonNilBools(t.Terminated))
		rec.Truncated = append(rec.Truncated, nonNilBools(t.Truncated))
	}
	return json.NewEncoder(w).Encode(&rec)
}

func nonNilFloats(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}

func nonNilBools(s []bool) []bool {
	if s == nil {
		return []bool{}
	}
	return s
}

// ReadJSON reads a batch from a JSON file.
func ReadJSON(path string) (*Batch, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening trajectory file")
	}
	defer utils.UncheckedErrorFunc(f.Close)
	return Decode(f)
}

// WriteJSON writes a batch to a JSON file, replacing it if it exists.
func WriteJSON(path string, b *Batch) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "error creating trajectory file")
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return Encode(f, b)
}
