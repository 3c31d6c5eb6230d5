package schema

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/tickgrid/internal/ctxlog"
)

func floatPtr(f float64) *float64 { return &f }

func quietCtx() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fullScenario = `
simulation {
  max_ticks = 50
}

clock {
  start_time = 1.5
}

node "oscillator" "plant" {
  omega   = 2.0
  initial = [1.0, 0.0]

  stepper {
    step_size  = 0.1
    time_final = 1.0
  }
}

node "gain" "amp" {
  reads = ["plant"]
  k     = 2.0

  stepper {
    kind      = "discrete"
    step_size = 0.1
  }
}

terminate "plant" {}
`

func TestDecodeScenario(t *testing.T) {
	t.Run("full scenario decodes every block", func(t *testing.T) {
		scenario, err := DecodeScenarioBytes(quietCtx(), []byte(fullScenario), "full.hcl")
		require.NoError(t, err)

		require.NotNil(t, scenario.Simulation)
		assert.Equal(t, 50, scenario.Simulation.MaxTicks)

		require.NotNil(t, scenario.Clock)
		assert.InDelta(t, 1.5, scenario.Clock.StartTime, 1e-12)

		require.Len(t, scenario.Nodes, 2)
		plant := scenario.Nodes[0]
		assert.Equal(t, "oscillator", plant.Kind)
		assert.Equal(t, "plant", plant.Name)
		assert.Empty(t, plant.Reads)
		if diff := cmp.Diff(&StepperBlock{StepSize: 0.1, TimeFinal: floatPtr(1.0)}, plant.Stepper); diff != "" {
			t.Errorf("plant stepper block mismatch (-want +got):\n%s", diff)
		}

		amp := scenario.Nodes[1]
		assert.Equal(t, "gain", amp.Kind)
		assert.Equal(t, []string{"plant"}, amp.Reads)
		if diff := cmp.Diff(&StepperBlock{Kind: "discrete", StepSize: 0.1}, amp.Stepper); diff != "" {
			t.Errorf("amp stepper block mismatch (-want +got):\n%s", diff)
		}

		require.Len(t, scenario.Terminates, 1)
		assert.Equal(t, "plant", scenario.Terminates[0].Target)
	})

	t.Run("kind specific attributes stay in the params body", func(t *testing.T) {
		scenario, err := DecodeScenarioBytes(quietCtx(), []byte(fullScenario), "full.hcl")
		require.NoError(t, err)

		var params struct {
			Omega   float64   `hcl:"omega"`
			Initial []float64 `hcl:"initial"`
		}
		diags := gohcl.DecodeBody(scenario.Nodes[0].Params, nil, &params)
		require.False(t, diags.HasErrors(), diags.Error())
		assert.InDelta(t, 2.0, params.Omega, 1e-12)
		assert.Equal(t, []float64{1.0, 0.0}, params.Initial)
	})

	t.Run("stepper without step_size fails to decode", func(t *testing.T) {
		src := `
node "oscillator" "plant" {
  stepper {}
}
`
		_, err := DecodeScenarioBytes(quietCtx(), []byte(src), "bad.hcl")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode HCL source bad.hcl")
	})

	t.Run("malformed source reports the filename", func(t *testing.T) {
		_, err := DecodeScenarioBytes(quietCtx(), []byte("node {{"), "broken.hcl")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse HCL source broken.hcl")
	})

	t.Run("vars block evaluates to literal values", func(t *testing.T) {
		src := `
vars {
  pi      = 3.14159
  initial = [1.0, 0.0]
}
`
		scenario, err := DecodeScenarioBytes(quietCtx(), []byte(src), "vars.hcl")
		require.NoError(t, err)
		require.NotNil(t, scenario.Vars)

		vals, err := scenario.Vars.Values()
		require.NoError(t, err)
		require.Len(t, vals, 2)
		pi, _ := vals["pi"].AsBigFloat().Float64()
		assert.InDelta(t, 3.14159, pi, 1e-12)
		assert.True(t, vals["initial"].Type().IsTupleType())
	})

	t.Run("vars cannot reference other values", func(t *testing.T) {
		src := `
vars {
  a = 1.0
  b = var.a
}
`
		scenario, err := DecodeScenarioBytes(quietCtx(), []byte(src), "vars.hcl")
		require.NoError(t, err)

		_, err = scenario.Vars.Values()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `failed to evaluate var "b"`)
	})

	t.Run("unknown top level blocks are tolerated", func(t *testing.T) {
		src := `
annotation "note" {
  text = "kept for humans"
}
`
		scenario, err := DecodeScenarioBytes(quietCtx(), []byte(src), "extra.hcl")
		require.NoError(t, err)
		assert.Empty(t, scenario.Nodes)
	})
}

func TestLoad(t *testing.T) {
	t.Run("single file loads directly", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "scenario.hcl", fullScenario)

		scenario, err := Load(quietCtx(), path)

		require.NoError(t, err)
		assert.Len(t, scenario.Nodes, 2)
		assert.Len(t, scenario.Terminates, 1)
	})

	t.Run("directory merges files in traversal order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.hcl", `
node "oscillator" "plant" {
  omega   = 1.0
  initial = [0.0, 0.0]
}
`)
		writeFile(t, dir, "b.hcl", `
simulation {
  max_ticks = 10
}

node "gain" "amp" {
  reads = ["plant"]
  k     = 1.0
}
`)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "extra"), 0o755))
		writeFile(t, filepath.Join(dir, "extra"), "c.hcl", `terminate "plant" {}`)

		scenario, err := Load(quietCtx(), dir)

		require.NoError(t, err)
		require.Len(t, scenario.Nodes, 2)
		assert.Equal(t, "plant", scenario.Nodes[0].Name)
		assert.Equal(t, "amp", scenario.Nodes[1].Name)
		require.NotNil(t, scenario.Simulation)
		assert.Equal(t, 10, scenario.Simulation.MaxTicks)
		assert.Len(t, scenario.Terminates, 1)
	})

	t.Run("duplicate simulation blocks across files fail", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.hcl", "simulation {\n  max_ticks = 1\n}\n")
		writeFile(t, dir, "b.hcl", "simulation {\n  max_ticks = 2\n}\n")

		_, err := Load(quietCtx(), dir)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate simulation block")
	})

	t.Run("duplicate clock blocks across files fail", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.hcl", "clock {}\n")
		writeFile(t, dir, "b.hcl", "clock {\n  start_time = 3.0\n}\n")

		_, err := Load(quietCtx(), dir)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate clock block")
	})

	t.Run("duplicate vars blocks across files fail", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.hcl", "vars {\n  pi = 3.14\n}\n")
		writeFile(t, dir, "b.hcl", "vars {\n  g = 9.81\n}\n")

		_, err := Load(quietCtx(), dir)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate vars block")
	})

	t.Run("directory without scenario files fails", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "notes.txt", "nothing here")

		_, err := Load(quietCtx(), dir)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no .hcl files found")
	})

	t.Run("missing path fails", func(t *testing.T) {
		_, err := Load(quietCtx(), filepath.Join(t.TempDir(), "absent.hcl"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read scenario path")
	})
}
