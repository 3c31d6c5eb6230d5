package clock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/tickgrid/internal/node"
	"github.com/vk/tickgrid/internal/state"
	"github.com/vk/tickgrid/internal/stepper"
)

// drivenNode builds a minimal root node with a discrete stepper of the
// given step size.
func drivenNode(t *testing.T, name string, stepSize float64) node.Node {
	t.Helper()
	l, err := state.NewLeaf(name, nil, cty.NumberFloatVal(0))
	require.NoError(t, err)
	n, err := node.NewFunc(node.Config{State: l, Root: true},
		func(_ state.Snap, _ map[string]cty.Value) (map[string]cty.Value, error) {
			return nil, nil
		})
	require.NoError(t, err)
	require.NoError(t, node.WithStepper(n, stepper.Discrete(stepper.Config{StepSize: stepSize})))
	return n
}

func TestFundamentalStep(t *testing.T) {
	testCases := []struct {
		name  string
		sizes []float64
		want  float64
	}{
		{
			name:  "halving pair",
			sizes: []float64{0.1, 0.05},
			want:  0.05,
		},
		{
			name:  "coprime on the grid",
			sizes: []float64{0.3, 0.2},
			want:  0.1,
		},
		{
			name:  "equal sizes short circuit",
			sizes: []float64{0.5, 0.5, 0.5},
			want:  0.5,
		},
		{
			name:  "single node keeps its size",
			sizes: []float64{0.25},
			want:  0.25,
		},
		{
			name:  "three mixed sizes",
			sizes: []float64{1, 0.1, 0.04},
			want:  0.02,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nodes := make([]node.Node, len(tc.sizes))
			for i, s := range tc.sizes {
				nodes[i] = drivenNode(t, nodeName(i), s)
			}
			c, err := New(nodes, 0)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, c.Fundamental(), 1e-12)
			assert.InDelta(t, tc.want, c.Stepper().StepSize(), 1e-12)
		})
	}
}

func nodeName(i int) string {
	return string(rune('a' + i))
}

func TestNew(t *testing.T) {
	t.Run("requires at least one node", func(t *testing.T) {
		_, err := New(nil, 0)
		assert.ErrorContains(t, err, "at least one node")
	})

	t.Run("every node must have a stepper", func(t *testing.T) {
		l, err := state.NewLeaf("plant", nil, cty.NumberFloatVal(0))
		require.NoError(t, err)
		bare, err := node.NewFunc(node.Config{State: l, Root: true},
			func(_ state.Snap, _ map[string]cty.Value) (map[string]cty.Value, error) {
				return nil, nil
			})
		require.NoError(t, err)

		_, err = New([]node.Node{bare}, 0)
		assert.ErrorContains(t, err, `node "plant" does not have a stepper`)
	})

	t.Run("is a defined root named Clock", func(t *testing.T) {
		c, err := New([]node.Node{drivenNode(t, "plant", 0.1)}, 0)
		require.NoError(t, err)
		assert.True(t, c.IsRoot())
		assert.True(t, c.State().IsDefined())
		assert.Equal(t, Name, c.State().Name())
		assert.Equal(t, []int{1}, c.State().Dims())
	})
}

func TestTimeAdvance(t *testing.T) {
	c, err := New([]node.Node{drivenNode(t, "plant", 0.25)}, 1.5)
	require.NoError(t, err)

	readTime := func() float64 {
		v, err := state.Scalar(state.At(c.State().Value(state.Concrete), 0))
		require.NoError(t, err)
		return v
	}

	assert.InDelta(t, 1.5, readTime(), 1e-12)
	require.NoError(t, c.Stepper().Step(context.Background()))
	assert.InDelta(t, 1.75, readTime(), 1e-12)
	require.NoError(t, c.Stepper().Step(context.Background()))
	assert.InDelta(t, 2.0, readTime(), 1e-12)
}

func TestSymbolicDynamics(t *testing.T) {
	c, err := New([]node.Node{drivenNode(t, "plant", 0.1)}, 0)
	require.NoError(t, err)

	out, err := c.ComputeStateDynamics(c.State().Snapshot(state.Symbolic), nil)
	require.NoError(t, err)
	next := out[Name]
	assert.True(t, state.IsSymbolic(next))
	assert.Equal(t, []string{Name}, state.SymbolNames(next))
}
