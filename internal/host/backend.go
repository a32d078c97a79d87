// Package host runs fixed-step integration sequentially on the CPU. It is
// the full-precision reference the GPU path is checked against.
package host

import (
	"fmt"

	"github.com/jmarren/fluxion/internal/ode"
	"github.com/jmarren/fluxion/internal/steppers"
)

// Backend drives one stepping strategy over a single state vector,
// strictly sequentially.
type Backend struct {
	stepper steppers.Stepper
}

func New(st steppers.Stepper) *Backend {
	return &Backend{stepper: st}
}

func (b *Backend) Name() string {
	return "host-" + b.stepper.Name()
}

func (b *Backend) Solve(sys *ode.System, t0, tf, dt float64, y0 ode.State) (*ode.Solution, error) {
	if len(y0) != sys.Dimension {
		return ode.NewSolution(0), fmt.Errorf("%w: got %d, system %q wants %d",
			ode.ErrDimensionMismatch, len(y0), sys.Name, sys.Dimension)
	}

	nSteps := ode.Steps(t0, tf, dt)
	sol := ode.NewSolution(nSteps)

	y := y0.Clone()
	sol.Append(t0, y)

	for i := 1; i < nSteps; i++ {
		t := t0 + float64(i-1)*dt
		y = b.stepper.Step(sys, t, dt, y)
		sol.Append(t0+float64(i)*dt, y)
	}

	return sol, nil
}
