// Package solver defines the backend contract shared by the host and GPU
// integration paths, so the benchmarking surface can treat them
// interchangeably.
package solver

import "github.com/jmarren/fluxion/internal/ode"

// Backend integrates a system over [t0, tf] at fixed step dt, starting
// from y0. It records floor((tf-t0)/dt)+1 rows, row 0 being y0. On
// failure it returns whatever rows were accumulated together with a
// diagnostic; callers decide whether to retry elsewhere or give up.
type Backend interface {
	Name() string
	Solve(sys *ode.System, t0, tf, dt float64, y0 ode.State) (*ode.Solution, error)
}
