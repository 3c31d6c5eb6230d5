package app

import (
	"github.com/vk/tickgrid/internal/registry"
	"github.com/vk/tickgrid/nodes/gain"
	"github.com/vk/tickgrid/nodes/oscillator"
)

// coreModules is the definitive list of node kinds that are compiled into
// the tickgrid binary.
var coreModules = []registry.Module{
	&oscillator.Module{},
	&gain.Module{},
}
