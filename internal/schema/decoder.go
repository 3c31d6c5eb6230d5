package schema

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/tickgrid/internal/ctxlog"
)

// DecodeScenarioFile parses and decodes a single HCL scenario file.
func DecodeScenarioFile(ctx context.Context, filePath string) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding scenario file.", "path", filePath)
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filePath, diags.Error())
	}

	var scenario Scenario
	diags = gohcl.DecodeBody(file.Body, nil, &scenario)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filePath, diags.Error())
	}

	logger.Debug("Successfully decoded scenario file.", "path", filePath, "nodes_found", len(scenario.Nodes), "terminates_found", len(scenario.Terminates))
	return &scenario, nil
}

// DecodeScenarioBytes decodes in-memory HCL source. The filename only
// labels diagnostics.
func DecodeScenarioBytes(ctx context.Context, src []byte, filename string) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding scenario source.", "filename", filename)
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %s", filename, diags.Error())
	}

	var scenario Scenario
	diags = gohcl.DecodeBody(file.Body, nil, &scenario)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL source %s: %s", filename, diags.Error())
	}

	return &scenario, nil
}
