// Package node defines the contract every simulation node satisfies and an
// embeddable base carrying state, inputs, and the attached stepper.
package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/tickgrid/internal/state"
)

// Stepper advances one node through one tick.
type Stepper interface {
	// StepSize returns the node's time increment per step.
	StepSize() float64
	// TimeFinal returns the node's time horizon. +Inf means unbounded.
	TimeFinal() float64
	// Step reads the node's state and inputs, evaluates the node's
	// dynamics, and writes the produced values back into the state.
	Step(ctx context.Context) error
}

// StepperFactory builds a stepper bound to the node it will drive.
type StepperFactory func(n Node) (Stepper, error)

// Node is the contract the graph executes. Implementations embed *Core and
// provide ComputeStateDynamics.
type Node interface {
	// Name returns the node's identifying state name.
	Name() string
	// State returns the node's own state tree.
	State() *state.Tree
	// Inputs returns the node's input declaration and bindings.
	Inputs() *state.Inputs
	// IsRoot reports whether the node is exempt from ordering dependencies.
	IsRoot() bool
	// Stepper returns the attached stepper, or nil before attachment.
	Stepper() Stepper
	// ComputeStateDynamics maps the node's current state and collected
	// inputs to new values for its leaves, keyed by leaf name. It must be
	// a pure function of its arguments.
	ComputeStateDynamics(snap state.Snap, inputs map[string]cty.Value) (map[string]cty.Value, error)

	setStepper(s Stepper)
}

// Config assembles a Core.
type Config struct {
	// State is the node's state tree. Required.
	State *state.Tree
	// Inputs lists the paths the node reads each tick. Ignored when
	// Resolver is set.
	Inputs []string
	// Resolver supplies a pre-built input declaration instead of Inputs.
	Resolver *state.Inputs
	// Root marks the node as ordering-exempt. A root's initial state must
	// be fully defined.
	Root bool
}

// Core is the embeddable base of every node. Each instance owns its own
// state and inputs; nothing is shared between nodes built from the same
// config template.
type Core struct {
	st      *state.Tree
	in      *state.Inputs
	root    bool
	stepper Stepper
}

// New validates the config and builds a Core.
func New(cfg Config) (*Core, error) {
	if cfg.State == nil {
		return nil, errors.New("node: state must be provided")
	}
	if cfg.Root && !cfg.State.IsDefined() {
		return nil, fmt.Errorf("root node %q: initial state must be fully defined", cfg.State.Name())
	}
	in := cfg.Resolver
	if in == nil {
		in = state.NewInputs(cfg.Inputs)
	}
	return &Core{st: cfg.State, in: in, root: cfg.Root}, nil
}

// Name returns the node's state name, which identifies the node everywhere.
func (c *Core) Name() string { return c.st.Name() }

// State returns the node's state tree.
func (c *Core) State() *state.Tree { return c.st }

// Inputs returns the node's input declaration.
func (c *Core) Inputs() *state.Inputs { return c.in }

// IsRoot reports whether the node is ordering-exempt.
func (c *Core) IsRoot() bool { return c.root }

// Stepper returns the attached stepper, or nil before attachment.
func (c *Core) Stepper() Stepper { return c.stepper }

func (c *Core) setStepper(s Stepper) { c.stepper = s }

// WithStepper builds a stepper for the node via the factory and attaches it.
// Attachment is a separate wiring step so a node can exist before its drive
// is chosen; the graph refuses to step nodes that skipped it.
func WithStepper(n Node, build StepperFactory) error {
	if build == nil {
		return fmt.Errorf("node %q: stepper factory must be provided", n.State().Name())
	}
	s, err := build(n)
	if err != nil {
		return fmt.Errorf("node %q: building stepper: %w", n.State().Name(), err)
	}
	n.setStepper(s)
	return nil
}

// Dynamics is a standalone dynamics function for nodes built with NewFunc.
type Dynamics func(snap state.Snap, inputs map[string]cty.Value) (map[string]cty.Value, error)

// Func is a node whose dynamics are supplied as a plain function.
type Func struct {
	*Core
	fn Dynamics
}

// NewFunc builds a function-backed node.
func NewFunc(cfg Config, fn Dynamics) (*Func, error) {
	core, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("node %q: dynamics function must be provided", core.Name())
	}
	return &Func{Core: core, fn: fn}, nil
}

// ComputeStateDynamics implements Node by delegating to the wrapped function.
func (f *Func) ComputeStateDynamics(snap state.Snap, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	return f.fn(snap, inputs)
}
