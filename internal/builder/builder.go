package builder

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/tickgrid/internal/ctxlog"
	"github.com/vk/tickgrid/internal/node"
	"github.com/vk/tickgrid/internal/registry"
	"github.com/vk/tickgrid/internal/schema"
	"github.com/vk/tickgrid/internal/stepper"
	"github.com/vk/tickgrid/nodes/clock"
	"github.com/vk/tickgrid/nodes/terminate"
)

// Assembly is the outcome of building a scenario: every node of the run
// in construction order with the clock last, plus the terminate watchdogs
// the tick loop polls for the stop signal.
type Assembly struct {
	Nodes      []node.Node
	Terminates []*terminate.Terminate
	Clock      *clock.Clock
}

// Build assembles the scenario into runnable nodes using the registered
// node kinds.
func Build(ctx context.Context, scenario *schema.Scenario, reg *registry.Registry) (*Assembly, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting scenario assembly.")

	evalCtx, err := evalContext(scenario)
	if err != nil {
		return nil, err
	}

	// First pass: build the declared nodes in order.
	nodes := make([]node.Node, 0, len(scenario.Nodes)+len(scenario.Terminates)+1)
	byName := make(map[string]node.Node, len(scenario.Nodes))
	for _, blk := range scenario.Nodes {
		if _, exists := byName[blk.Name]; exists {
			return nil, fmt.Errorf("duplicate node block %q", blk.Name)
		}
		n, err := reg.Build(blk.Kind, &registry.Spec{
			Name:    blk.Name,
			Reads:   blk.Reads,
			Params:  blk.Params,
			EvalCtx: evalCtx,
		})
		if err != nil {
			return nil, err
		}
		if blk.Stepper == nil {
			return nil, fmt.Errorf("node block %q is missing a stepper block", blk.Name)
		}
		factory, err := stepperFactory(blk.Stepper)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", blk.Name, err)
		}
		if err := node.WithStepper(n, factory); err != nil {
			return nil, err
		}
		byName[blk.Name] = n
		nodes = append(nodes, n)
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(nodes))

	// Second pass: wrap terminate targets with watchdogs.
	terminates := make([]*terminate.Terminate, 0, len(scenario.Terminates))
	for _, blk := range scenario.Terminates {
		target, ok := byName[blk.Target]
		if !ok {
			return nil, fmt.Errorf("terminate block targets unknown node %q", blk.Target)
		}
		watchdog, err := terminate.New(target)
		if err != nil {
			return nil, err
		}
		terminates = append(terminates, watchdog)
		nodes = append(nodes, watchdog)
	}
	logger.Debug("Build: Terminate wrapping complete.", "terminate_count", len(terminates))

	// Final pass: the clock closes over every node assembled so far.
	startTime := 0.0
	if scenario.Clock != nil {
		startTime = scenario.Clock.StartTime
	}
	ck, err := clock.New(nodes, startTime)
	if err != nil {
		return nil, err
	}
	nodes = append(nodes, ck)

	logger.Info("Build: Scenario assembly complete.", "node_count", len(nodes))
	return &Assembly{Nodes: nodes, Terminates: terminates, Clock: ck}, nil
}

// stepperFactory translates a stepper block into a binding factory.
func stepperFactory(blk *schema.StepperBlock) (node.StepperFactory, error) {
	cfg := stepper.Config{StepSize: blk.StepSize}
	if blk.TimeFinal != nil {
		cfg.TimeFinal = *blk.TimeFinal
	}
	return stepper.Build(blk.Kind, cfg)
}

// evalContext exposes the scenario's vars block to kind parameter
// expressions as the `var` object.
func evalContext(scenario *schema.Scenario) (*hcl.EvalContext, error) {
	if scenario.Vars == nil {
		return nil, nil
	}
	vals, err := scenario.Vars.Values()
	if err != nil {
		return nil, err
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": cty.ObjectVal(vals)},
	}, nil
}
