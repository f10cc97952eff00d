package spatialmath

import (
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ParseVector parses "x,y,z" or "x y z" into a vector. It is how vectors are given on the command line.
func ParseVector(s string) (r3.Vector, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 3 {
		return r3.Vector{}, errors.Errorf("expected 3 components in %q, got %d", s, len(fields))
	}
	var v [3]float64
	for i, f := range fields {
		value, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return r3.Vector{}, errors.Wrapf(err, "component %d of %q", i, s)
		}
		v[i] = value
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}
