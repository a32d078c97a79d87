// Package problems is the catalog of named test systems used by the
// benchmarking surface. Each constructor returns a complete descriptor:
// host derivative, initial state, time domain, parameter map, and the
// device RHS binding where one exists.
package problems

import (
	"fmt"
	"math"
	"sort"

	"github.com/jmarren/fluxion/internal/ode"
)

var catalog = map[string]func() *ode.System{
	"exponential": Exponential,
	"vanderpol":   VanDerPol,
	"lorenz":      Lorenz,
	"harmonic":    Harmonic,
	"chain":       func() *ode.System { return Chain(64) },
}

// Get returns the named problem.
func Get(name string) (*ode.System, error) {
	fn, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem: %s", name)
	}
	return fn(), nil
}

// Names lists the catalog, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exponential is dy/dt = -lambda*y with lambda=2, the one problem with a
// closed-form solution, used for accuracy checks.
func Exponential() *ode.System {
	const lambda = 2.0
	return &ode.System{
		Name:      "exponential",
		Dimension: 1,
		Initial:   ode.State{1.0},
		TStart:    0.0,
		TEnd:      5.0,
		Params:    map[string]float64{"lambda": lambda},
		RHS: func(t float64, y ode.State) ode.State {
			return ode.State{-lambda * y[0]}
		},
		Analytical: func(t float64) ode.State {
			return ode.State{math.Exp(-lambda * t)}
		},
		Device: &ode.DeviceInfo{
			RHSName:  "exponential",
			Uniforms: []float32{lambda},
		},
	}
}

// VanDerPol is the oscillator dx/dt = v, dv/dt = mu*(1-x^2)*v - x with
// mu=1, the classic limit-cycle value.
func VanDerPol() *ode.System {
	const mu = 1.0
	return &ode.System{
		Name:      "vanderpol",
		Dimension: 2,
		Initial:   ode.State{2.0, 0.0},
		TStart:    0.0,
		TEnd:      20.0,
		Params:    map[string]float64{"mu": mu},
		RHS: func(t float64, y ode.State) ode.State {
			x, v := y[0], y[1]
			return ode.State{v, mu*(1-x*x)*v - x}
		},
		Device: &ode.DeviceInfo{
			RHSName:  "vanderpol",
			Uniforms: []float32{mu},
		},
	}
}

// Lorenz uses the standard chaotic parameter set sigma=10, rho=28,
// beta=8/3.
func Lorenz() *ode.System {
	const (
		sigma = 10.0
		rho   = 28.0
	)
	beta := 8.0 / 3.0
	return &ode.System{
		Name:      "lorenz",
		Dimension: 3,
		Initial:   ode.State{1.0, 1.0, 1.0},
		TStart:    0.0,
		TEnd:      10.0,
		Params:    map[string]float64{"sigma": sigma, "rho": rho, "beta": beta},
		RHS: func(t float64, y ode.State) ode.State {
			return ode.State{
				sigma * (y[1] - y[0]),
				y[0]*(rho-y[2]) - y[1],
				y[0]*y[1] - beta*y[2],
			}
		},
		Device: &ode.DeviceInfo{
			RHSName:  "lorenz",
			Uniforms: []float32{sigma, rho, float32(beta)},
		},
	}
}

// Harmonic is dx/dt = v, dv/dt = -omega^2*x with omega=1.
func Harmonic() *ode.System {
	const omegaSq = 1.0
	return &ode.System{
		Name:      "harmonic",
		Dimension: 2,
		Initial:   ode.State{1.0, 0.0},
		TStart:    0.0,
		TEnd:      10.0,
		Params:    map[string]float64{"omega_sq": omegaSq},
		RHS: func(t float64, y ode.State) ode.State {
			return ode.State{y[1], -omegaSq * y[0]}
		},
		Analytical: func(t float64) ode.State {
			return ode.State{math.Cos(t), -math.Sin(t)}
		},
		Device: &ode.DeviceInfo{
			RHSName:  "harmonic",
			Uniforms: []float32{omegaSq},
		},
	}
}

// Chain builds the weakly coupled scaling problem
// dx_i/dt = -x_i + sin(x_{i-1}) + eps*x_{i+1} of size n. Host only; it
// has no registered device RHS.
func Chain(n int) *ode.System {
	const eps = 0.1
	initial := make(ode.State, n)
	for i := range initial {
		initial[i] = float64(i) * 0.1
	}
	return &ode.System{
		Name:      fmt.Sprintf("chain-%d", n),
		Dimension: n,
		Initial:   initial,
		TStart:    0.0,
		TEnd:      5.0,
		Params:    map[string]float64{"epsilon": eps},
		RHS: func(t float64, y ode.State) ode.State {
			dy := make(ode.State, n)
			for i := 0; i < n; i++ {
				dy[i] = -y[i]
				if i > 0 {
					dy[i] += math.Sin(y[i-1])
				}
				if i < n-1 {
					dy[i] += eps * y[i+1]
				}
			}
			return dy
		},
	}
}
