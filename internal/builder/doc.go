// Package builder turns a decoded scenario into the runnable node set.
// User nodes are built in declaration order, terminate blocks wrap their
// targets, and the clock is built last so its fundamental step covers
// every stepper in the run.
package builder
