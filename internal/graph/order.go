package graph

import (
	"fmt"

	"github.com/vk/tickgrid/internal/node"
	"github.com/vk/tickgrid/internal/state"
)

// order fixes the execution sequence. It sweeps the nodes in declaration
// order, placing every node whose resolved inputs are all owned by already
// placed nodes; root nodes place unconditionally. Placements made earlier
// in a sweep are visible to nodes later in the same sweep. A sweep that
// places nothing means the remainder cannot be ordered.
//
// Readiness is tracked by counting each node's not-yet-placed distinct
// owners, decremented as owners place, which keeps sweeps linear without
// changing the placement sequence.
func order(nodes []node.Node) ([]node.Node, error) {
	owner := make(map[*state.Tree]string)
	for _, n := range nodes {
		for _, l := range n.State().Leaves() {
			if _, ok := owner[l]; !ok {
				owner[l] = n.State().Name()
			}
		}
	}

	type entry struct {
		n          node.Node
		name       string
		root       bool
		remaining  int
		placed     bool
		dependents []int
	}
	entries := make([]*entry, len(nodes))
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		entries[i] = &entry{n: n, name: n.State().Name(), root: n.IsRoot()}
		index[entries[i].name] = i
	}
	for i, n := range nodes {
		resolved, err := n.Inputs().States()
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", entries[i].name, err)
		}
		deps := make(map[string]bool, len(resolved))
		for _, st := range resolved {
			ownerName, ok := owner[st]
			if !ok {
				return nil, fmt.Errorf("node %q: input state %q is not owned by any node", entries[i].name, st.Name())
			}
			deps[ownerName] = true
		}
		for depName := range deps {
			entries[index[depName]].dependents = append(entries[index[depName]].dependents, i)
			entries[i].remaining++
		}
	}

	ordered := make([]node.Node, 0, len(nodes))
	for round := 0; round < len(nodes) && len(ordered) < len(nodes); round++ {
		progress := false
		for _, e := range entries {
			if e.placed || (!e.root && e.remaining > 0) {
				continue
			}
			e.placed = true
			progress = true
			ordered = append(ordered, e.n)
			for _, di := range e.dependents {
				entries[di].remaining--
			}
		}
		if !progress {
			break
		}
	}

	if len(ordered) < len(nodes) {
		var stuck []string
		for _, e := range entries {
			if !e.placed {
				stuck = append(stuck, e.name)
			}
		}
		return nil, fmt.Errorf("graph cannot be ordered: nodes %v have unsatisfiable dependencies", stuck)
	}
	return ordered, nil
}
