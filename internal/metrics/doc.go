// Package metrics accumulates per-frame measurements of a running mesh.
//
// Every metric satisfies sim.Metric: Observe is called once per frame after
// the tick, Value reads the accumulated result and Reset starts over.
package metrics
