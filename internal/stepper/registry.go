package stepper

import (
	"fmt"
	"sort"

	"github.com/vk/tickgrid/internal/node"
)

// DefaultKind is used when a scenario omits the stepper kind.
const DefaultKind = "discrete"

// Builder turns a stepper config into a node-binding factory.
type Builder func(cfg Config) node.StepperFactory

var kinds = map[string]Builder{}

// Register makes a stepper kind selectable by name. Registering a kind
// twice is a programmer error.
func Register(kind string, b Builder) {
	if _, exists := kinds[kind]; exists {
		panic(fmt.Sprintf("stepper kind %q already registered", kind))
	}
	kinds[kind] = b
}

// Build looks up a kind and applies the config to it. An empty kind selects
// DefaultKind.
func Build(kind string, cfg Config) (node.StepperFactory, error) {
	if kind == "" {
		kind = DefaultKind
	}
	b, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown stepper kind %q, known kinds: %v", kind, Kinds())
	}
	return b(cfg), nil
}

// Kinds lists the registered kinds, sorted.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func init() {
	Register(DefaultKind, Discrete)
}
