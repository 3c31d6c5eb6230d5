package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/tickgrid/internal/ctxlog"
	"github.com/vk/tickgrid/internal/node"
	"github.com/vk/tickgrid/internal/state"
)

// Graph is an ordered, resolved set of nodes stepped as one unit.
//
// A Graph is single-threaded by contract: construction and every Step run
// on one goroutine, and nodes execute strictly one at a time.
type Graph struct {
	nodes    []node.Node
	ordered  []node.Node
	byName   map[string]node.Node
	orderStr string
}

// New flattens the nodes' states into a graph-wide leaf catalog, resolves
// every node's inputs against it, and fixes the execution order. The given
// list order is the declaration order used for tie-breaking; it is fixed
// for the graph's lifetime.
func New(ctx context.Context, nodes []node.Node) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting graph construction.", "node_count", len(nodes))

	byName := make(map[string]node.Node, len(nodes))
	var catalog []*state.Tree
	for _, n := range nodes {
		name := n.State().Name()
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("duplicate state name %q in graph", name)
		}
		byName[name] = n
		catalog = append(catalog, n.State().Leaves()...)
	}
	logger.Debug("State catalog flattened.", "leaf_count", len(catalog))

	for _, n := range nodes {
		if err := n.Inputs().Resolve(catalog); err != nil {
			return nil, fmt.Errorf("node %q: resolving inputs: %w", n.State().Name(), err)
		}
	}
	logger.Debug("All node inputs resolved.")

	ordered, err := order(nodes)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		nodes:    append([]node.Node(nil), nodes...),
		ordered:  ordered,
		byName:   byName,
		orderStr: orderString(ordered),
	}
	logger.Info("Resolved node order.", "order", g.orderStr)
	return g, nil
}

// Step advances every node once, in the fixed order. The first failure
// aborts the tick; later nodes are not stepped.
func (g *Graph) Step(ctx context.Context) error {
	for _, n := range g.ordered {
		s := n.Stepper()
		if s == nil {
			return fmt.Errorf("node %q does not have a stepper", n.State().Name())
		}
		if err := s.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Nodes returns the nodes in declaration order.
func (g *Graph) Nodes() []node.Node {
	return append([]node.Node(nil), g.nodes...)
}

// Order returns the nodes in execution order.
func (g *Graph) Order() []node.Node {
	return append([]node.Node(nil), g.ordered...)
}

// OrderString renders the execution order as "a -> b -> c".
func (g *Graph) OrderString() string { return g.orderStr }

// Node finds a node by its state name.
func (g *Graph) Node(name string) (node.Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

func orderString(ordered []node.Node) string {
	names := make([]string, 0, len(ordered))
	for _, n := range ordered {
		names = append(names, n.State().Name())
	}
	return strings.Join(names, " -> ")
}
