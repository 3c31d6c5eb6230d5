package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/vk/tickgrid/internal/node"
)

// Spec carries everything a factory needs to build one node instance from
// a scenario block.
type Spec struct {
	// Name is the instance name and becomes the node's state name.
	Name string

	// Reads lists the input paths declared on the block.
	Reads []string

	// Params holds the kind-specific attributes left over after the
	// generic ones were decoded.
	Params hcl.Body

	// EvalCtx evaluates expressions in Params. A nil context restricts
	// the block to literal values.
	EvalCtx *hcl.EvalContext
}

// DecodeParams decodes the kind-specific attributes into out, which must
// be a pointer to a struct with hcl tags.
func (s *Spec) DecodeParams(out any) error {
	if s.Params == nil {
		return nil
	}
	if diags := gohcl.DecodeBody(s.Params, s.EvalCtx, out); diags.HasErrors() {
		return fmt.Errorf("decoding parameters for node %q: %s", s.Name, diags.Error())
	}
	return nil
}

// Factory builds a node instance from a spec.
type Factory func(spec *Spec) (node.Node, error)

// Module is implemented by packages that contribute node kinds.
type Module interface {
	Register(r *Registry)
}

// Registry holds the node kinds available to one application instance.
type Registry struct {
	kinds map[string]Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{kinds: make(map[string]Factory)}
}

// RegisterKind makes a factory available under the given kind name.
// Registering the same kind twice is a programmer error and panics.
func (r *Registry) RegisterKind(kind string, f Factory) {
	if _, exists := r.kinds[kind]; exists {
		panic(fmt.Sprintf("node kind with name '%s' already registered", kind))
	}
	slog.Debug("Registering node kind.", "kind", kind)
	r.kinds[kind] = f
}

// Build looks up the kind and applies its factory to the spec.
func (r *Registry) Build(kind string, spec *Spec) (node.Node, error) {
	f, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown node kind %q, known kinds: %v", kind, r.Kinds())
	}
	n, err := f(spec)
	if err != nil {
		return nil, fmt.Errorf("building node %q of kind %q: %w", spec.Name, kind, err)
	}
	return n, nil
}

// Kinds returns the registered kind names in sorted order.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
