// Package graph assembles nodes into a deterministic, synchronous execution
// unit: it catalogs every state leaf, resolves all node inputs against the
// catalog, fixes the tick order, and steps nodes one at a time.
package graph
