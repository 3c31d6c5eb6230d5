// Package terminate provides the watchdog node that raises a stop signal
// once simulation time reaches a target node's horizon.
package terminate

import (
	"errors"
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/vk/tickgrid/internal/node"
	"github.com/vk/tickgrid/internal/state"
	"github.com/vk/tickgrid/internal/stepper"
	"github.com/vk/tickgrid/nodes/clock"
)

// Suffix is appended to the watched node's name to form the watchdog's
// state name.
const Suffix = "_terminate"

// stepSize is the watchdog's fixed evaluation cadence.
const stepSize = 0.01

// Terminate watches a target node and emits a boolean: false while the
// clock's time is below the target's horizon, true from then on. A target
// with no horizon keeps the signal false forever.
type Terminate struct {
	*node.Core
	target node.Node
}

// New builds a watchdog for the target node. The input paths are fixed:
// the clock's state and the conventional "plant" state, which pins the
// watchdog's evaluation after both in the tick order.
func New(target node.Node) (*Terminate, error) {
	if target == nil {
		return nil, errors.New("terminate: target node is required")
	}
	st, err := state.NewLeaf(target.State().Name()+Suffix, []int{1}, cty.NilVal)
	if err != nil {
		return nil, err
	}
	core, err := node.New(node.Config{State: st, Inputs: []string{clock.Name, "plant"}})
	if err != nil {
		return nil, err
	}
	w := &Terminate{Core: core, target: target}
	if err := node.WithStepper(w, stepper.Discrete(stepper.Config{StepSize: stepSize})); err != nil {
		return nil, err
	}
	return w, nil
}

// Target returns the watched node.
func (w *Terminate) Target() node.Node { return w.target }

// ComputeStateDynamics compares the clock's time against the target's
// horizon. The horizon is read from the target's stepper at call time, so
// a stepper attached after the watchdog was built still takes effect.
func (w *Terminate) ComputeStateDynamics(_ state.Snap, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	s := w.target.Stepper()
	if s == nil {
		return nil, fmt.Errorf("terminate: target node %q does not have a stepper", w.target.State().Name())
	}
	name := w.State().Name()
	if math.IsInf(s.TimeFinal(), 1) {
		return map[string]cty.Value{name: cty.False}, nil
	}
	clockVal, ok := inputs[clock.Name]
	if !ok {
		return nil, errors.New("terminate: clock input is missing")
	}
	done, err := stdlib.GreaterThanOrEqualTo(state.At(clockVal, 0), cty.NumberFloatVal(s.TimeFinal()))
	if err != nil {
		return nil, err
	}
	return map[string]cty.Value{name: done}, nil
}
