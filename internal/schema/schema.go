package schema

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// --- Scenario Structures ---

// StepperBlock configures the stepper attached to a node. An empty kind
// selects the default discrete stepper, and a nil TimeFinal leaves the
// node's horizon unbounded.
type StepperBlock struct {
	Kind      string   `hcl:"kind,optional"`
	StepSize  float64  `hcl:"step_size"`
	TimeFinal *float64 `hcl:"time_final,optional"`
}

// NodeBlock represents a `node` block from a scenario file. It is one
// simulated instance of a registered node kind; attributes beyond the
// generic ones stay in Params for the kind's factory to decode.
type NodeBlock struct {
	Kind    string        `hcl:"kind,label"`
	Name    string        `hcl:"name,label"`
	Reads   []string      `hcl:"reads,optional"`
	Stepper *StepperBlock `hcl:"stepper,block"`
	Params  hcl.Body      `hcl:",remain"`
}

// ClockBlock configures the shared clock node built over the assembled
// graph.
type ClockBlock struct {
	StartTime float64 `hcl:"start_time,optional"`
}

// TerminateBlock requests a termination watchdog wrapping the named node.
type TerminateBlock struct {
	Target string `hcl:"target,label"`
}

// VarsBlock holds scenario-wide constants. Its attributes become the
// `var` object available to kind parameter expressions.
type VarsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Values evaluates every attribute of the block to a literal value.
func (v *VarsBlock) Values() (map[string]cty.Value, error) {
	attrs, diags := v.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read vars block: %s", diags.Error())
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	vals := make(map[string]cty.Value, len(attrs))
	for _, name := range names {
		val, diags := attrs[name].Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate var %q: %s", name, diags.Error())
		}
		vals[name] = val
	}
	return vals, nil
}

// SimulationBlock bounds the run as a whole.
type SimulationBlock struct {
	MaxTicks int `hcl:"max_ticks,optional"`
}

// Scenario represents the top-level structure of a scenario file set,
// containing all declared nodes and run settings.
type Scenario struct {
	Simulation *SimulationBlock  `hcl:"simulation,block"`
	Clock      *ClockBlock       `hcl:"clock,block"`
	Vars       *VarsBlock        `hcl:"vars,block"`
	Nodes      []*NodeBlock      `hcl:"node,block"`
	Terminates []*TerminateBlock `hcl:"terminate,block"`
	Body       hcl.Body          `hcl:",remain"`
}
