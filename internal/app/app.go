package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vk/tickgrid/internal/ctxlog"
	"github.com/vk/tickgrid/internal/registry"
	"github.com/vk/tickgrid/internal/schema"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	scenario *schema.Scenario
	runID    string
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	scenario, err := schema.Load(ctx, cfg.GridPath)
	if err != nil {
		// A failure to load the scenario is a fatal startup error.
		panic(fmt.Errorf("failed to load scenario: %w", err))
	}
	logger.Debug("Scenario loaded.", "path", cfg.GridPath, "nodes_declared", len(scenario.Nodes), "terminates_declared", len(scenario.Terminates))

	// Create and populate the registry with node kinds.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All node kinds registered.", "count", len(modules))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		scenario: scenario,
		runID:    uuid.NewString(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Scenario returns the loaded scenario. This is primarily for testing.
func (a *App) Scenario() *schema.Scenario {
	return a.scenario
}
