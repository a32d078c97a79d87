package steppers

import (
	"fmt"

	"github.com/jmarren/fluxion/internal/ode"
)

// Stepper advances a state vector by one fixed time step.
type Stepper interface {
	Step(sys *ode.System, t, dt float64, y ode.State) ode.State
	Name() string
	// Order is the accuracy order of the method.
	Order() int
}

// New returns the stepper registered under name.
func New(name string) (Stepper, error) {
	switch name {
	case "euler", "explicit-euler":
		return NewEuler(), nil
	case "rk45", "dormand-prince":
		return NewRK45(), nil
	default:
		return nil, fmt.Errorf("unknown stepper: %s", name)
	}
}

// Names lists the stepper names accepted by New.
func Names() []string {
	return []string{"euler", "rk45"}
}
