package state

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Vector builds a tuple value from the given elements, lifting any marks on
// the elements onto the result. cty constructors reject marked elements, so
// symbolic values must pass through here rather than cty.TupleVal directly.
func Vector(elems ...cty.Value) cty.Value {
	if len(elems) == 0 {
		return cty.EmptyTupleVal
	}
	raw := make([]cty.Value, len(elems))
	var marks []cty.ValueMarks
	for i, e := range elems {
		u, m := e.UnmarkDeep()
		raw[i] = u
		if len(m) > 0 {
			marks = append(marks, m)
		}
	}
	return cty.TupleVal(raw).WithMarks(marks...)
}

// At returns element i of a tuple value. Marks on the collection carry over
// to the element, and indexing an unknown tuple yields an unknown of the
// element's type, so symbolic values index the same way concrete ones do.
func At(v cty.Value, i int) cty.Value {
	raw, marks := v.UnmarkDeep()
	return raw.Index(cty.NumberIntVal(int64(i))).WithMarks(marks)
}

// Scalar extracts a concrete float64 from a number value. Symbolic values
// have no concrete magnitude and are rejected.
func Scalar(v cty.Value) (float64, error) {
	if v == cty.NilVal {
		return 0, errors.New("value is not set")
	}
	raw, _ := v.UnmarkDeep()
	if raw.IsNull() {
		return 0, errors.New("value is null")
	}
	if !raw.IsKnown() {
		return 0, errors.New("value is symbolic, not concrete")
	}
	if !raw.Type().Equals(cty.Number) {
		return 0, fmt.Errorf("value is %s, not a number", raw.Type().FriendlyName())
	}
	f, _ := raw.AsBigFloat().Float64()
	return f, nil
}

// Truth extracts a concrete bool from a boolean value, with the same
// guards as Scalar.
func Truth(v cty.Value) (bool, error) {
	if v == cty.NilVal {
		return false, errors.New("value is not set")
	}
	raw, _ := v.UnmarkDeep()
	if raw.IsNull() {
		return false, errors.New("value is null")
	}
	if !raw.IsKnown() {
		return false, errors.New("value is symbolic, not concrete")
	}
	if !raw.Type().Equals(cty.Bool) {
		return false, fmt.Errorf("value is %s, not a bool", raw.Type().FriendlyName())
	}
	return raw.True(), nil
}
