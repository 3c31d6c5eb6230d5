// Package gain provides a proportional follower node kind. A gain node
// reads one leaf from another node and publishes the scaled signal plus
// its absolute magnitude under a hierarchical state.
package gain

import (
	"fmt"
	"slices"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/vk/tickgrid/internal/node"
	"github.com/vk/tickgrid/internal/registry"
	"github.com/vk/tickgrid/internal/state"
)

// Kind is the name scenario blocks use to instantiate this node.
const Kind = "gain"

// Params are the scenario attributes of a gain block.
type Params struct {
	// K is the multiplier applied to the source value.
	K float64 `hcl:"k"`
	// Source names the input leaf to scale. It defaults to the sole
	// declared read path.
	Source string `hcl:"source,optional"`
}

// Gain scales a source leaf into a two-leaf state: the signal itself and
// its magnitude.
type Gain struct {
	*node.Core

	k      float64
	source string
}

// New builds a gain node named name. The reads list supplies the input
// paths; when p.Source is empty it must name exactly one path, and an
// explicit p.Source must appear in a non-empty reads list.
func New(name string, reads []string, p Params) (*Gain, error) {
	source := p.Source
	if source == "" {
		if len(reads) != 1 {
			return nil, fmt.Errorf("gain %q: source is required unless exactly one read path is declared, got %d", name, len(reads))
		}
		source = reads[0]
	}
	if len(reads) == 0 {
		reads = []string{source}
	} else if !slices.Contains(reads, source) {
		return nil, fmt.Errorf("gain %q: source %q is not among the declared read paths %v", name, source, reads)
	}

	signal, err := state.NewLeaf("signal", []int{1}, cty.NilVal)
	if err != nil {
		return nil, fmt.Errorf("gain %q: %w", name, err)
	}
	magnitude, err := state.NewLeaf("magnitude", []int{1}, cty.NilVal)
	if err != nil {
		return nil, fmt.Errorf("gain %q: %w", name, err)
	}
	st, err := state.NewBranch(name, signal, magnitude)
	if err != nil {
		return nil, fmt.Errorf("gain %q: %w", name, err)
	}
	core, err := node.New(node.Config{State: st, Inputs: reads})
	if err != nil {
		return nil, err
	}
	return &Gain{Core: core, k: p.K, source: source}, nil
}

// Source returns the leaf name this node scales.
func (g *Gain) Source() string {
	return g.source
}

// ComputeStateDynamics multiplies the source input by k. Vector sources
// contribute their first component.
func (g *Gain) ComputeStateDynamics(_ state.Snap, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	src, ok := inputs[g.source]
	if !ok {
		return nil, fmt.Errorf("gain %q: input %q is missing", g.Name(), g.source)
	}
	if src == cty.NilVal {
		return nil, fmt.Errorf("gain %q: input %q has no value yet", g.Name(), g.source)
	}
	if raw, _ := src.UnmarkDeep(); raw.Type().IsTupleType() {
		src = state.At(src, 0)
	}

	sig, err := stdlib.Multiply(cty.NumberFloatVal(g.k), src)
	if err != nil {
		return nil, fmt.Errorf("gain %q: %w", g.Name(), err)
	}
	mag, err := stdlib.Absolute(sig)
	if err != nil {
		return nil, fmt.Errorf("gain %q: %w", g.Name(), err)
	}
	return map[string]cty.Value{
		"signal":    state.Vector(sig),
		"magnitude": state.Vector(mag),
	}, nil
}

// Module registers the gain kind.
type Module struct{}

// Register wires the kind into the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(Kind, func(spec *registry.Spec) (node.Node, error) {
		var p Params
		if err := spec.DecodeParams(&p); err != nil {
			return nil, err
		}
		return New(spec.Name, spec.Reads, p)
	})
}
