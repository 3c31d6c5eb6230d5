package app

import (
	"context"
	"fmt"

	"github.com/vk/tickgrid/internal/builder"
	"github.com/vk/tickgrid/internal/ctxlog"
	"github.com/vk/tickgrid/internal/graph"
	"github.com/vk/tickgrid/internal/state"
	"github.com/vk/tickgrid/nodes/terminate"
)

// defaultMaxTicks bounds runs that configure no limit of their own.
const defaultMaxTicks = 1000

// Run executes one simulation from the loaded scenario.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "run_id", a.runID)

	if len(a.scenario.Nodes) == 0 && len(a.scenario.Terminates) == 0 {
		a.logger.Warn("No nodes declared in scenario, execution not required.")
		return nil
	}

	a.logger.Debug("Assembling nodes from scenario...")
	asm, err := builder.Build(ctx, a.scenario, a.registry)
	if err != nil {
		return fmt.Errorf("failed to assemble scenario: %w", err)
	}

	g, err := graph.New(ctx, asm.Nodes)
	if err != nil {
		return fmt.Errorf("failed to build simulation graph: %w", err)
	}

	maxTicks := a.maxTicks(cfg)
	a.logger.Info("🚀 Starting simulation run...", "run_id", a.runID, "max_ticks", maxTicks, "fundamental_step", asm.Clock.Fundamental())
	ticks, terminated, err := a.loop(ctx, g, asm.Terminates, maxTicks)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	a.logger.Info("🏁 Simulation finished.", "run_id", a.runID, "ticks", ticks, "terminated_early", terminated)

	a.logger.Debug("App.Run method finished.")
	return nil
}

// maxTicks picks the run bound: CLI override first, then the scenario's
// simulation block, then the package default.
func (a *App) maxTicks(cfg *Config) int {
	if cfg.Ticks > 0 {
		return cfg.Ticks
	}
	if a.scenario.Simulation != nil && a.scenario.Simulation.MaxTicks > 0 {
		return a.scenario.Simulation.MaxTicks
	}
	return defaultMaxTicks
}

// loop advances the graph tick by tick until a watchdog fires or the tick
// budget runs out. It returns the number of completed ticks.
func (a *App) loop(ctx context.Context, g *graph.Graph, watchdogs []*terminate.Terminate, maxTicks int) (int, bool, error) {
	for tick := 1; tick <= maxTicks; tick++ {
		if err := g.Step(ctx); err != nil {
			return tick, false, fmt.Errorf("tick %d: %w", tick, err)
		}
		stop, err := stopRequested(watchdogs)
		if err != nil {
			return tick, false, fmt.Errorf("tick %d: %w", tick, err)
		}
		if stop {
			a.logger.Info("Termination condition met.", "tick", tick)
			return tick, true, nil
		}
	}
	return maxTicks, false, nil
}

// stopRequested reports whether any watchdog has raised its flag.
func stopRequested(watchdogs []*terminate.Terminate) (bool, error) {
	for _, w := range watchdogs {
		done, err := state.Truth(w.State().Value(state.Concrete))
		if err != nil {
			return false, fmt.Errorf("reading termination flag %q: %w", w.Name(), err)
		}
		if done {
			return true, nil
		}
	}
	return false, nil
}
