package ode

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// RHS evaluates the derivative f(t, y) of a system on the host.
type RHS func(t float64, y State) State

// DeviceInfo describes how a system maps to the GPU path. Either RHSName
// refers to a registered built-in, or RHSSource carries a custom GLSL
// fragment. Uniforms are the ordered scalar values matching the RHS
// definition's parameter list; when empty, values are resolved from the
// system's Params map by name.
type DeviceInfo struct {
	RHSName   string
	RHSSource string
	Uniforms  []float32
}

// System is one ODE problem instance: dimension, host derivative,
// optional analytical solution, initial state and time domain.
type System struct {
	Name       string
	Dimension  int
	RHS        RHS
	Analytical func(t float64) State
	Initial    State
	TStart     float64
	TEnd       float64
	Params     map[string]float64
	Device     *DeviceInfo
}

// HasDevice reports whether the system carries a GPU descriptor.
func (s *System) HasDevice() bool { return s.Device != nil }

// UseBuiltinRHS reports whether the GPU descriptor names a registry entry
// rather than carrying custom kernel code.
func (s *System) UseBuiltinRHS() bool {
	return s.Device != nil && s.Device.RHSName != ""
}

// Solution is an ordered sequence of state vectors, one per step.
// Row 0 is exactly the supplied initial state.
type Solution struct {
	States []State
	Times  []float64
}

func NewSolution(capacity int) *Solution {
	return &Solution{
		States: make([]State, 0, capacity),
		Times:  make([]float64, 0, capacity),
	}
}

func (s *Solution) Append(t float64, y State) {
	s.States = append(s.States, y.Clone())
	s.Times = append(s.Times, t)
}

func (s *Solution) Len() int { return len(s.States) }

// Final returns the last recorded state, or nil when empty.
func (s *Solution) Final() State {
	if len(s.States) == 0 {
		return nil
	}
	return s.States[len(s.States)-1]
}

// Steps computes the number of solution rows for a fixed-step run:
// floor((tf-t0)/dt) + 1, the initial state included.
func Steps(t0, tf, dt float64) int {
	return int(math.Floor((tf-t0)/dt)) + 1
}
