// Package clock provides the root node that advances global simulation time.
package clock

import (
	"errors"
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/vk/tickgrid/internal/node"
	"github.com/vk/tickgrid/internal/state"
	"github.com/vk/tickgrid/internal/stepper"
)

// Name is the state name every clock publishes. Follower nodes read global
// time by declaring it as an input path.
const Name = "Clock"

// precision is the rounding grid for the step-size GCD.
const precision = 1e-9

// Clock is the root node producing elapsed simulation time. Its own step
// size is the fundamental step: the GCD of the supplied nodes' step sizes
// on the precision grid.
type Clock struct {
	*node.Core
	fundamental float64
}

// New builds a clock over the given nodes, all of which must already have
// steppers attached. Time starts at startTime.
func New(nodes []node.Node, startTime float64) (*Clock, error) {
	if len(nodes) == 0 {
		return nil, errors.New("clock: at least one node is required")
	}
	sizes := make([]float64, 0, len(nodes))
	for _, n := range nodes {
		s := n.Stepper()
		if s == nil {
			return nil, fmt.Errorf("clock: node %q does not have a stepper", n.State().Name())
		}
		sizes = append(sizes, s.StepSize())
	}
	fundamental := fundamentalStep(sizes)

	st, err := state.NewLeaf(Name, []int{1}, state.Vector(cty.NumberFloatVal(startTime)))
	if err != nil {
		return nil, err
	}
	core, err := node.New(node.Config{State: st, Root: true})
	if err != nil {
		return nil, err
	}
	c := &Clock{Core: core, fundamental: fundamental}
	if err := node.WithStepper(c, stepper.Discrete(stepper.Config{StepSize: fundamental})); err != nil {
		return nil, err
	}
	return c, nil
}

// Fundamental returns the computed fundamental step size.
func (c *Clock) Fundamental() float64 { return c.fundamental }

// ComputeStateDynamics advances time by the fundamental step.
func (c *Clock) ComputeStateDynamics(snap state.Snap, _ map[string]cty.Value) (map[string]cty.Value, error) {
	next, err := stdlib.Add(state.At(snap.Value, 0), cty.NumberFloatVal(c.fundamental))
	if err != nil {
		return nil, err
	}
	return map[string]cty.Value{Name: state.Vector(next)}, nil
}

// fundamentalStep folds the sizes through the float GCD. Equal sizes
// short-circuit to the common value without touching the grid.
func fundamentalStep(sizes []float64) float64 {
	allEqual := true
	for _, s := range sizes[1:] {
		if s != sizes[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return sizes[0]
	}
	out := sizes[0]
	for _, s := range sizes[1:] {
		out = floatGCD(out, s)
	}
	return out
}

// floatGCD maps both values onto the precision grid, takes the integer
// GCD, and maps the result back.
func floatGCD(a, b float64) float64 {
	ia := int64(math.Round(a / precision))
	ib := int64(math.Round(b / precision))
	for ib != 0 {
		ia, ib = ib, ia%ib
	}
	return float64(ia) * precision
}
