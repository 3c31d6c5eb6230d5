package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Tree is a named, hierarchical state container. A Tree is either a leaf
// carrying a single value slot, or a branch owning an ordered list of child
// subtrees. Leafness is fixed at construction and never changes.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	name     string
	dims     []int
	value    cty.Value
	children []*Tree
	leaf     bool

	symbol      cty.Value
	symbolBuilt bool
}

// NewLeaf creates a leaf state. The value may be cty.NilVal to leave the
// leaf undefined until a stepper writes it. Dims describe the shape used
// for the leaf's symbolic placeholder; no validation of concrete values
// against dims is ever performed.
func NewLeaf(name string, dims []int, value cty.Value) (*Tree, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := checkDims(name, dims); err != nil {
		return nil, err
	}
	return &Tree{
		name:  name,
		dims:  append([]int(nil), dims...),
		value: value,
		leaf:  true,
	}, nil
}

// NewBranch creates a hierarchical state owning the given subtrees. Order
// of children is preserved and determines traversal order everywhere.
func NewBranch(name string, children ...*Tree) (*Tree, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("state %q: a branch requires at least one child state", name)
	}
	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("state %q: child %d is not a state", name, i)
		}
	}
	return &Tree{
		name:     name,
		children: append([]*Tree(nil), children...),
	}, nil
}

// Name returns the state's name.
func (t *Tree) Name() string { return t.name }

// IsLeaf reports whether the state is a leaf.
func (t *Tree) IsLeaf() bool { return t.leaf }

// Dims returns a copy of the declared dimensions.
func (t *Tree) Dims() []int {
	return append([]int(nil), t.dims...)
}

// Children returns a copy of the ordered child list. It is empty for leaves.
func (t *Tree) Children() []*Tree {
	return append([]*Tree(nil), t.children...)
}

// SetValue replaces a leaf's stored value. The new value is trusted as-is;
// only leafness is enforced, shape is not.
func (t *Tree) SetValue(v cty.Value) error {
	if !t.leaf {
		return fmt.Errorf("state %q: cannot assign a value to a hierarchical state", t.name)
	}
	t.value = v
	return nil
}

// Value returns the leaf's value under the given mode. In Symbolic mode the
// placeholder is created on first use and cached for the lifetime of this
// Tree, so repeated symbolic reads yield the same value. For branches the
// result is cty.NilVal; use Snapshot for structured reads.
func (t *Tree) Value(mode Mode) cty.Value {
	if !t.leaf {
		return cty.NilVal
	}
	if mode == Symbolic {
		if !t.symbolBuilt {
			t.symbol = placeholder(t.name, t.dims)
			t.symbolBuilt = true
		}
		return t.symbol
	}
	return t.value
}

// IsDefined reports whether every leaf under this state holds a value.
func (t *Tree) IsDefined() bool {
	if t.leaf {
		return t.value != cty.NilVal
	}
	for _, child := range t.children {
		if !child.IsDefined() {
			return false
		}
	}
	return true
}

// Snap is the read descriptor produced by Snapshot: name and dims always,
// plus either a leaf value or the child descriptors. A leaf that was never
// written snapshots with a cty.NilVal value in Concrete mode.
type Snap struct {
	Name   string
	Dims   []int
	Value  cty.Value
	States []Snap
}

// Snapshot renders the state as a descriptor under the given mode. Branch
// descriptors recurse in child order.
func (t *Tree) Snapshot(mode Mode) Snap {
	s := Snap{Name: t.name, Dims: t.Dims()}
	if t.leaf {
		s.Value = t.Value(mode)
		return s
	}
	s.States = make([]Snap, 0, len(t.children))
	for _, child := range t.children {
		s.States = append(s.States, child.Snapshot(mode))
	}
	return s
}

// SearchByPath finds a subtree by a "/"-delimited path. The first segment
// must equal this state's name; the remainder is matched against children,
// first match wins. Empty segments are ignored, so "a//b" equals "a/b".
// Returns nil when nothing matches.
func (t *Tree) SearchByPath(path string) *Tree {
	parts := segments(path)
	if len(parts) == 0 || parts[0] != t.name {
		return nil
	}
	if len(parts) == 1 {
		return t
	}
	if t.leaf {
		return nil
	}
	rest := strings.Join(parts[1:], "/")
	for _, child := range t.children {
		if found := child.SearchByPath(rest); found != nil {
			return found
		}
	}
	return nil
}

// Paths enumerates every root-to-leaf path in traversal order.
func (t *Tree) Paths() []string {
	if t.leaf {
		return []string{t.name}
	}
	var out []string
	for _, child := range t.children {
		for _, p := range child.Paths() {
			out = append(out, t.name+"/"+p)
		}
	}
	return out
}

// Leaves returns every leaf under this state in depth-first child order.
func (t *Tree) Leaves() []*Tree {
	if t.leaf {
		return []*Tree{t}
	}
	var out []*Tree
	for _, child := range t.children {
		out = append(out, child.Leaves()...)
	}
	return out
}

// Leaf returns the first leaf with the given name in traversal order, or
// nil when there is none.
func (t *Tree) Leaf(name string) *Tree {
	for _, leaf := range t.Leaves() {
		if leaf.name == name {
			return leaf
		}
	}
	return nil
}

// Clone deep-copies the state. Values are shared (cty values are immutable);
// structure and the symbolic placeholder cache are not.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		name:  t.name,
		dims:  append([]int(nil), t.dims...),
		value: t.value,
		leaf:  t.leaf,
	}
	for _, child := range t.children {
		c.children = append(c.children, child.Clone())
	}
	return c
}

// segments splits a path on "/" and drops empty parts.
func segments(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func checkName(name string) error {
	if name == "" {
		return errors.New("state name must not be empty")
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("state name %q must not contain '/'", name)
	}
	return nil
}

func checkDims(name string, dims []int) error {
	for _, d := range dims {
		if d < 1 {
			return fmt.Errorf("state %q: dims %v must be positive", name, dims)
		}
	}
	return nil
}
