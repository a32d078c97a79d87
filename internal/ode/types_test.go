package ode

import (
	"math"
	"testing"
)

func TestState_Clone(t *testing.T) {
	s := State{1.0, 2.0, 3.0}
	c := s.Clone()
	c[0] = 99.0

	if s[0] != 1.0 {
		t.Error("Clone did not copy underlying array")
	}
}

func TestState_IsValid(t *testing.T) {
	if !(State{1.0, -2.0}).IsValid() {
		t.Error("finite state reported invalid")
	}
	if (State{1.0, math.NaN()}).IsValid() {
		t.Error("NaN state reported valid")
	}
	if (State{math.Inf(1)}).IsValid() {
		t.Error("Inf state reported valid")
	}
}

func TestSteps(t *testing.T) {
	cases := []struct {
		t0, tf, dt float64
		want       int
	}{
		{0.0, 1.0, 0.01, 101},
		{0.0, 5.0, 0.1, 51},
		{0.0, 1.0, 0.3, 4},
		{1.0, 2.0, 0.5, 3},
		{0.0, 0.05, 0.1, 1},
	}
	for _, c := range cases {
		got := Steps(c.t0, c.tf, c.dt)
		if got != c.want {
			t.Errorf("Steps(%v, %v, %v) = %d, want %d", c.t0, c.tf, c.dt, got, c.want)
		}
	}
}

func TestSolution_Append(t *testing.T) {
	sol := NewSolution(4)
	y := State{1.0, 0.0}
	sol.Append(0.0, y)
	y[0] = 5.0
	sol.Append(0.1, y)

	if sol.Len() != 2 {
		t.Fatalf("Len = %d, want 2", sol.Len())
	}
	if sol.States[0][0] != 1.0 {
		t.Error("Append did not clone the state row")
	}
	if sol.Final()[0] != 5.0 {
		t.Error("Final returned wrong row")
	}
}

func TestSolution_FinalEmpty(t *testing.T) {
	if (&Solution{}).Final() != nil {
		t.Error("Final on empty solution should be nil")
	}
}
