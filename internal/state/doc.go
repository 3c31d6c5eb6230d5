// Package state models the hierarchical, named state of a simulation node
// and the resolution of declared input paths against a graph-wide catalog
// of state leaves. Values are cty values; every read takes an explicit
// Mode selecting concrete stored data or symbolic placeholders.
package state
