// Package device implements the GPU-resident integration pipeline: a
// long-lived compute context, the buffer lifecycle for one solve, a
// generator that specializes the generic explicit integration kernel for
// a registered right-hand side, and the per-step dispatch loop.
//
// A single host goroutine drives the whole pipeline. Each step's kernel
// parameters depend on that step's time value, so steps cannot be
// pre-dispatched in batches without moving the loop into kernel code;
// the per-step barrier and readback is structural, not incidental.
//
// Device state is float32 throughout. The host reference path runs in
// float64, so the two are expected to diverge by rounding magnitude
// only, never by algorithm.
package device
