package steppers

import "github.com/jmarren/fluxion/internal/ode"

// Euler is the first-order explicit update y <- y + dt*f(t, y).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "explicit-euler" }
func (e *Euler) Order() int   { return 1 }

func (e *Euler) Step(sys *ode.System, t, dt float64, y ode.State) ode.State {
	dy := sys.RHS(t, y)
	result := make(ode.State, len(y))
	for i := range y {
		result[i] = y[i] + dt*dy[i]
	}
	return result
}
