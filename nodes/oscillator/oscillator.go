// Package oscillator provides a damped spring node kind. It serves as the
// stock root plant for scenarios: its state is the vector
// [position, velocity] and each tick applies one semi-implicit Euler
// update sized by the attached stepper.
package oscillator

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/vk/tickgrid/internal/node"
	"github.com/vk/tickgrid/internal/registry"
	"github.com/vk/tickgrid/internal/state"
)

// Kind is the name scenario blocks use to instantiate this node.
const Kind = "oscillator"

// Params are the scenario attributes of an oscillator block.
type Params struct {
	// Omega is the natural frequency in rad/s.
	Omega float64 `hcl:"omega"`
	// Damping is the velocity damping coefficient.
	Damping float64 `hcl:"damping,optional"`
	// Initial is the starting [position, velocity] pair.
	Initial []float64 `hcl:"initial"`
}

// Oscillator is a root plant describing a damped spring.
type Oscillator struct {
	*node.Core

	omega   float64
	damping float64
}

// New builds an oscillator named name from the given parameters.
func New(name string, p Params) (*Oscillator, error) {
	if p.Omega <= 0 {
		return nil, fmt.Errorf("oscillator %q: omega must be positive, got %v", name, p.Omega)
	}
	if p.Damping < 0 {
		return nil, fmt.Errorf("oscillator %q: damping must not be negative, got %v", name, p.Damping)
	}
	if len(p.Initial) != 2 {
		return nil, fmt.Errorf("oscillator %q: initial must hold [position, velocity], got %d values", name, len(p.Initial))
	}

	st, err := state.NewLeaf(name, []int{2}, state.Vector(
		cty.NumberFloatVal(p.Initial[0]),
		cty.NumberFloatVal(p.Initial[1]),
	))
	if err != nil {
		return nil, fmt.Errorf("oscillator %q: %w", name, err)
	}
	core, err := node.New(node.Config{State: st, Root: true})
	if err != nil {
		return nil, err
	}
	return &Oscillator{Core: core, omega: p.Omega, damping: p.Damping}, nil
}

// ComputeStateDynamics advances the spring by one semi-implicit Euler
// step: the velocity is updated from the current acceleration first and
// the position then moves with the new velocity. All arithmetic goes
// through cty operations, so a symbolic snapshot yields a symbolic next
// state.
func (o *Oscillator) ComputeStateDynamics(snap state.Snap, _ map[string]cty.Value) (map[string]cty.Value, error) {
	s := o.Stepper()
	if s == nil {
		return nil, fmt.Errorf("oscillator %q: no stepper attached", o.Name())
	}
	h := cty.NumberFloatVal(s.StepSize())
	pos := state.At(snap.Value, 0)
	vel := state.At(snap.Value, 1)

	accel, err := o.acceleration(pos, vel)
	if err != nil {
		return nil, fmt.Errorf("oscillator %q: %w", o.Name(), err)
	}
	dv, err := stdlib.Multiply(h, accel)
	if err != nil {
		return nil, fmt.Errorf("oscillator %q: %w", o.Name(), err)
	}
	velNext, err := stdlib.Add(vel, dv)
	if err != nil {
		return nil, fmt.Errorf("oscillator %q: %w", o.Name(), err)
	}
	dx, err := stdlib.Multiply(h, velNext)
	if err != nil {
		return nil, fmt.Errorf("oscillator %q: %w", o.Name(), err)
	}
	posNext, err := stdlib.Add(pos, dx)
	if err != nil {
		return nil, fmt.Errorf("oscillator %q: %w", o.Name(), err)
	}

	return map[string]cty.Value{o.Name(): state.Vector(posNext, velNext)}, nil
}

// acceleration computes -(omega^2 * pos + damping * vel).
func (o *Oscillator) acceleration(pos, vel cty.Value) (cty.Value, error) {
	spring, err := stdlib.Multiply(cty.NumberFloatVal(o.omega*o.omega), pos)
	if err != nil {
		return cty.NilVal, err
	}
	drag, err := stdlib.Multiply(cty.NumberFloatVal(o.damping), vel)
	if err != nil {
		return cty.NilVal, err
	}
	sum, err := stdlib.Add(spring, drag)
	if err != nil {
		return cty.NilVal, err
	}
	return stdlib.Negate(sum)
}

// Module registers the oscillator kind.
type Module struct{}

// Register wires the kind into the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(Kind, func(spec *registry.Spec) (node.Node, error) {
		var p Params
		if err := spec.DecodeParams(&p); err != nil {
			return nil, err
		}
		return New(spec.Name, p)
	})
}
