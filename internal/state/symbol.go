package state

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// symbolMark tags a cty value as the symbolic stand-in for a named leaf.
// cty propagates marks through its operations, so any value derived from
// placeholders carries the names of every placeholder it depends on.
type symbolMark struct {
	name string
}

// TypeForDims maps leaf dimensions to the cty type of its values: a bare
// number for scalars, nested tuples of numbers otherwise.
func TypeForDims(dims []int) cty.Type {
	if len(dims) == 0 {
		return cty.Number
	}
	elem := TypeForDims(dims[1:])
	etys := make([]cty.Type, dims[0])
	for i := range etys {
		etys[i] = elem
	}
	return cty.Tuple(etys)
}

// placeholder builds the symbolic value for a leaf: an unknown of the
// leaf's shape, marked with the leaf's name.
func placeholder(name string, dims []int) cty.Value {
	return cty.UnknownVal(TypeForDims(dims)).Mark(symbolMark{name: name})
}

// SymbolNames lists, sorted, the placeholder names the value depends on.
// A value with no symbolic ancestry yields nil.
func SymbolNames(v cty.Value) []string {
	if v == cty.NilVal {
		return nil
	}
	_, marks := v.UnmarkDeep()
	var names []string
	for m := range marks {
		if sm, ok := m.(symbolMark); ok {
			names = append(names, sm.name)
		}
	}
	sort.Strings(names)
	return names
}

// IsSymbolic reports whether the value carries any placeholder mark.
func IsSymbolic(v cty.Value) bool {
	return len(SymbolNames(v)) > 0
}
