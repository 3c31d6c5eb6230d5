// Package registry maps node kind names to the factories that build node
// instances from scenario blocks. Kind packages contribute factories
// through the Module interface, and the builder consults the registry
// while assembling a simulation.
package registry
