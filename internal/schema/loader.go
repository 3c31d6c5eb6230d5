package schema

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/tickgrid/internal/ctxlog"
)

// Load reads the scenario at path, which is either a single .hcl file or a
// directory searched recursively for .hcl files. Several files merge into
// one scenario: node and terminate blocks append in traversal order, while
// simulation and clock blocks may appear at most once across the set.
func Load(ctx context.Context, path string) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario path %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = findScenarioFiles(path)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario directory %s: %w", path, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no .hcl files found in %s", path)
		}
	}
	logger.Debug("Loading scenario files.", "path", path, "count", len(files))

	merged := &Scenario{}
	for _, file := range files {
		scenario, err := DecodeScenarioFile(ctx, file)
		if err != nil {
			return nil, err
		}
		if err := merge(merged, scenario, file); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// merge folds one decoded file into the accumulated scenario.
func merge(dst, src *Scenario, filePath string) error {
	if src.Simulation != nil {
		if dst.Simulation != nil {
			return fmt.Errorf("duplicate simulation block in %s", filePath)
		}
		dst.Simulation = src.Simulation
	}
	if src.Clock != nil {
		if dst.Clock != nil {
			return fmt.Errorf("duplicate clock block in %s", filePath)
		}
		dst.Clock = src.Clock
	}
	if src.Vars != nil {
		if dst.Vars != nil {
			return fmt.Errorf("duplicate vars block in %s", filePath)
		}
		dst.Vars = src.Vars
	}
	dst.Nodes = append(dst.Nodes, src.Nodes...)
	dst.Terminates = append(dst.Terminates, src.Terminates...)
	return nil
}

// findScenarioFiles recursively collects the .hcl files under rootPath in
// traversal order, which WalkDir keeps deterministic.
func findScenarioFiles(rootPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
