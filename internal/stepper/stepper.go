// Package stepper implements the drives that advance nodes through time,
// plus a kind registry so scenario files can select them by name.
package stepper

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/vk/tickgrid/internal/node"
	"github.com/vk/tickgrid/internal/state"
)

// Config selects a stepper's timing. A zero TimeFinal means no horizon.
type Config struct {
	StepSize  float64
	TimeFinal float64
}

// Discrete returns a factory for the basic stepper: each Step snapshots the
// node concretely, collects its inputs, evaluates the dynamics once, and
// writes the returned values back into the state by leaf name.
func Discrete(cfg Config) node.StepperFactory {
	return func(n node.Node) (node.Stepper, error) {
		if n == nil {
			return nil, errors.New("discrete stepper: node must be provided")
		}
		if cfg.StepSize <= 0 {
			return nil, fmt.Errorf("discrete stepper: step size %v must be positive", cfg.StepSize)
		}
		final := cfg.TimeFinal
		switch {
		case final == 0:
			final = math.Inf(1)
		case final < 0:
			return nil, fmt.Errorf("discrete stepper: time final %v must not be negative", cfg.TimeFinal)
		}
		return &discrete{n: n, stepSize: cfg.StepSize, timeFinal: final}, nil
	}
}

type discrete struct {
	n         node.Node
	stepSize  float64
	timeFinal float64
}

// StepSize returns the configured time increment.
func (d *discrete) StepSize() float64 { return d.stepSize }

// TimeFinal returns the configured horizon, +Inf when none was set.
func (d *discrete) TimeFinal() float64 { return d.timeFinal }

// Step applies one tick of the node's dynamics.
func (d *discrete) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := d.n.State().Name()
	inputs, err := d.n.Inputs().Collect(state.Concrete)
	if err != nil {
		return fmt.Errorf("node %q: %w", name, err)
	}
	out, err := d.n.ComputeStateDynamics(d.n.State().Snapshot(state.Concrete), inputs)
	if err != nil {
		return fmt.Errorf("node %q: computing dynamics: %w", name, err)
	}

	// Write in sorted key order so failures are stable across runs.
	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		target := d.n.State().Leaf(k)
		if target == nil {
			return fmt.Errorf("node %q: dynamics produced a value for unknown state %q", name, k)
		}
		if err := target.SetValue(out[k]); err != nil {
			return fmt.Errorf("node %q: %w", name, err)
		}
	}
	return nil
}
