package terminate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/tickgrid/internal/node"
	"github.com/vk/tickgrid/internal/state"
	"github.com/vk/tickgrid/internal/stepper"
	"github.com/vk/tickgrid/nodes/clock"
)

// plant builds a root target node, optionally with a horizon.
func plant(t *testing.T, timeFinal float64) node.Node {
	t.Helper()
	l, err := state.NewLeaf("plant", []int{2}, state.Vector(cty.NumberFloatVal(0), cty.NumberFloatVal(0)))
	require.NoError(t, err)
	n, err := node.NewFunc(node.Config{State: l, Root: true},
		func(_ state.Snap, _ map[string]cty.Value) (map[string]cty.Value, error) {
			return nil, nil
		})
	require.NoError(t, err)
	require.NoError(t, node.WithStepper(n, stepper.Discrete(stepper.Config{StepSize: 0.1, TimeFinal: timeFinal})))
	return n
}

func clockInput(tt float64) map[string]cty.Value {
	return map[string]cty.Value{clock.Name: state.Vector(cty.NumberFloatVal(tt))}
}

func TestNew(t *testing.T) {
	t.Run("derives its name from the target", func(t *testing.T) {
		w, err := New(plant(t, 1))
		require.NoError(t, err)
		assert.Equal(t, "plant_terminate", w.State().Name())
	})

	t.Run("declares the fixed input paths", func(t *testing.T) {
		w, err := New(plant(t, 1))
		require.NoError(t, err)
		assert.Equal(t, []string{"Clock", "plant"}, w.Inputs().Paths())
	})

	t.Run("is a follower with its own cadence", func(t *testing.T) {
		w, err := New(plant(t, 1))
		require.NoError(t, err)
		assert.False(t, w.IsRoot())
		assert.False(t, w.State().IsDefined())
		assert.InDelta(t, 0.01, w.Stepper().StepSize(), 1e-12)
	})

	t.Run("requires a target", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorContains(t, err, "target node is required")
	})
}

func TestSignal(t *testing.T) {
	t.Run("flips exactly at the horizon", func(t *testing.T) {
		w, err := New(plant(t, 1.0))
		require.NoError(t, err)

		times := []float64{0, 0.5, 1.0, 1.2}
		want := []bool{false, false, true, true}
		for i, tt := range times {
			out, err := w.ComputeStateDynamics(w.State().Snapshot(state.Concrete), clockInput(tt))
			require.NoError(t, err)
			got, err := state.Truth(out["plant_terminate"])
			require.NoError(t, err)
			assert.Equal(t, want[i], got, "time %v", tt)
		}
	})

	t.Run("unbounded target never signals", func(t *testing.T) {
		w, err := New(plant(t, 0))
		require.NoError(t, err)

		out, err := w.ComputeStateDynamics(w.State().Snapshot(state.Concrete), clockInput(1e9))
		require.NoError(t, err)
		got, err := state.Truth(out["plant_terminate"])
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("horizon is read at call time", func(t *testing.T) {
		l, err := state.NewLeaf("plant", nil, cty.NumberFloatVal(0))
		require.NoError(t, err)
		target, err := node.NewFunc(node.Config{State: l, Root: true},
			func(_ state.Snap, _ map[string]cty.Value) (map[string]cty.Value, error) {
				return nil, nil
			})
		require.NoError(t, err)

		w, err := New(target)
		require.NoError(t, err)

		// No stepper on the target yet: evaluation must fail, not assume.
		_, err = w.ComputeStateDynamics(w.State().Snapshot(state.Concrete), clockInput(0))
		assert.ErrorContains(t, err, `target node "plant" does not have a stepper`)

		require.NoError(t, node.WithStepper(target, stepper.Discrete(stepper.Config{StepSize: 0.1, TimeFinal: 0.5})))
		out, err := w.ComputeStateDynamics(w.State().Snapshot(state.Concrete), clockInput(0.6))
		require.NoError(t, err)
		got, err := state.Truth(out["plant_terminate"])
		require.NoError(t, err)
		assert.True(t, got)
	})
}
