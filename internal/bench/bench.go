// Package bench times solver runs and measures their accuracy against
// analytical solutions, producing the data behind the compare and bench
// commands.
package bench

import (
	"math"
	"time"

	"github.com/jmarren/fluxion/internal/ode"
	"github.com/jmarren/fluxion/internal/solver"
)

// Result is one timed solve.
type Result struct {
	Backend    string
	Problem    string
	Dt         float64
	Steps      int
	Elapsed    time.Duration
	MaxError   float64 // versus the analytical solution; NaN when none exists
	FinalError float64
	Solution   *ode.Solution
	Err        error
}

// Run solves sys over its own time domain on b and measures the outcome.
func Run(b solver.Backend, sys *ode.System, dt float64) Result {
	start := time.Now()
	sol, err := b.Solve(sys, sys.TStart, sys.TEnd, dt, sys.Initial)
	elapsed := time.Since(start)

	res := Result{
		Backend:    b.Name(),
		Problem:    sys.Name,
		Dt:         dt,
		Steps:      sol.Len(),
		Elapsed:    elapsed,
		MaxError:   math.NaN(),
		FinalError: math.NaN(),
		Solution:   sol,
		Err:        err,
	}
	if sys.Analytical != nil && sol.Len() > 0 {
		res.MaxError = MaxError(sol, sys)
		res.FinalError = rowError(sol.Final(), sys.Analytical(sol.Times[sol.Len()-1]))
	}
	return res
}

// MaxError is the largest absolute componentwise deviation from the
// analytical solution across all recorded rows.
func MaxError(sol *ode.Solution, sys *ode.System) float64 {
	maxErr := 0.0
	for i, y := range sol.States {
		exact := sys.Analytical(sol.Times[i])
		if e := rowError(y, exact); e > maxErr {
			maxErr = e
		}
	}
	return maxErr
}

// MaxDivergence is the largest absolute componentwise difference between
// two solutions over their common rows, the host-vs-device agreement
// figure.
func MaxDivergence(a, b *ode.Solution) float64 {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	maxDiff := 0.0
	for i := 0; i < n; i++ {
		if d := rowError(a.States[i], b.States[i]); d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}

// Throughput is recorded rows per second.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Steps) / r.Elapsed.Seconds()
}

func rowError(y, exact ode.State) float64 {
	maxErr := 0.0
	for j := range y {
		if j >= len(exact) {
			break
		}
		if e := math.Abs(y[j] - exact[j]); e > maxErr {
			maxErr = e
		}
	}
	return maxErr
}
