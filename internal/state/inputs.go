package state

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrUnresolved is returned when inputs are read before Resolve has run.
	ErrUnresolved = errors.New("inputs are not resolved")
	// ErrNotDeclared is returned when a lookup names a path that was never declared.
	ErrNotDeclared = errors.New("input path not declared")
)

// Inputs declares and resolves the external state a node reads each tick.
// Paths are fixed at construction, bound exactly once against a graph-wide
// catalog of state leaves, and collected by mode every tick after that.
//
// Inputs are not safe for concurrent use.
type Inputs struct {
	paths    []string
	resolved []*Tree
	done     bool
}

// NewInputs declares the given read paths, order preserved.
func NewInputs(paths []string) *Inputs {
	return &Inputs{paths: append([]string(nil), paths...)}
}

// Paths returns a copy of the declared paths.
func (in *Inputs) Paths() []string {
	return append([]string(nil), in.paths...)
}

// Resolved reports whether Resolve has completed.
func (in *Inputs) Resolved() bool { return in.done }

// Resolve binds every declared path to a leaf from the catalog. The catalog
// contains only leaves and a leaf matches just its own single-segment name,
// so binding is by name with the first catalog occurrence winning. Binding
// is all-or-nothing: any path left unbound fails the whole resolution, and
// two paths may not bind to the same leaf.
func (in *Inputs) Resolve(catalog []*Tree) error {
	if in.done {
		return fmt.Errorf("inputs %v: already resolved", in.paths)
	}

	byName := make(map[string]*Tree, len(catalog))
	for _, entry := range catalog {
		if _, ok := byName[entry.Name()]; !ok {
			byName[entry.Name()] = entry
		}
	}

	resolved := make([]*Tree, 0, len(in.paths))
	taken := make(map[*Tree]string, len(in.paths))
	var missing []string
	for _, path := range in.paths {
		segs := segments(path)
		var target *Tree
		if len(segs) == 1 {
			target = byName[segs[0]]
		}
		if target == nil {
			missing = append(missing, path)
			continue
		}
		if !target.IsLeaf() {
			return fmt.Errorf("input path %q resolved to hierarchical state %q, want a leaf", path, target.Name())
		}
		if prev, dup := taken[target]; dup {
			return fmt.Errorf("input paths %q and %q resolve to the same state %q", prev, path, target.Name())
		}
		taken[target] = path
		resolved = append(resolved, target)
	}
	if len(missing) > 0 {
		return fmt.Errorf("could not resolve input paths %v: no matching state in the graph", missing)
	}

	in.resolved = resolved
	in.done = true
	return nil
}

// Collect reads every resolved input under the given mode, keyed by the
// bound leaf's name. Declaring no paths yields an empty map whether or not
// Resolve has run.
func (in *Inputs) Collect(mode Mode) (map[string]cty.Value, error) {
	if len(in.paths) == 0 {
		return map[string]cty.Value{}, nil
	}
	if !in.done {
		return nil, fmt.Errorf("collect inputs %v: %w", in.paths, ErrUnresolved)
	}
	out := make(map[string]cty.Value, len(in.resolved))
	for _, leaf := range in.resolved {
		out[leaf.Name()] = leaf.Value(mode)
	}
	return out, nil
}

// State returns the resolved tree bound to one declared path.
func (in *Inputs) State(path string) (*Tree, error) {
	if !in.done {
		return nil, fmt.Errorf("look up input %q: %w", path, ErrUnresolved)
	}
	for i, p := range in.paths {
		if p == path {
			return in.resolved[i], nil
		}
	}
	return nil, fmt.Errorf("look up input %q: %w", path, ErrNotDeclared)
}

// States returns a copy of the resolved trees in declaration order.
func (in *Inputs) States() ([]*Tree, error) {
	if !in.done {
		return nil, ErrUnresolved
	}
	return append([]*Tree(nil), in.resolved...), nil
}
