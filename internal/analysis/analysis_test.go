package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/jmarren/fluxion/internal/host"
	"github.com/jmarren/fluxion/internal/ode"
	"github.com/jmarren/fluxion/internal/problems"
	"github.com/jmarren/fluxion/internal/steppers"
)

func TestPowerSpectrum_SinePeak(t *testing.T) {
	// 8 hz sine sampled at 256 hz over one second lands in bin 8.
	n := 256
	dt := 1.0 / 256.0
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 8 * float64(i) * dt)
	}

	ps := PowerSpectrum(data)
	peak := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak != 8 {
		t.Errorf("peak at bin %d, want 8", peak)
	}

	if f := DominantFrequency(data, dt); math.Abs(f-8.0) > 0.5 {
		t.Errorf("dominant frequency = %v, want ~8", f)
	}
}

func TestPowerSpectrum_PadsOddLengths(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = math.Sin(float64(i) * 0.3)
	}
	ps := PowerSpectrum(data)
	if len(ps) != 64 {
		t.Errorf("padded spectrum length = %d, want 64", len(ps))
	}
}

func TestMaxLyapunov_ContractingFlow(t *testing.T) {
	sys := problems.Exponential()
	lambda := MaxLyapunov(sys, steppers.NewRK45(), 0.01, 5.0, 1e-8)
	// dy/dt = -2y contracts at rate -2 everywhere.
	if math.Abs(lambda-(-2.0)) > 0.1 {
		t.Errorf("lambda = %v, want ~-2", lambda)
	}
}

func TestMaxLyapunov_Lorenz(t *testing.T) {
	sys := problems.Lorenz()
	lambda := MaxLyapunov(sys, steppers.NewRK45(), 0.005, 20.0, 1e-8)
	if lambda <= 0 {
		t.Errorf("lambda = %v, want positive for the Lorenz attractor", lambda)
	}
}

func TestPhaseScatter(t *testing.T) {
	sys := problems.Harmonic()
	sol, err := host.New(steppers.NewRK45()).Solve(sys, sys.TStart, sys.TEnd, 0.01, sys.Initial)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	plot, err := PhaseScatter(sol, 0, 1, 40, 20)
	if err != nil {
		t.Fatalf("PhaseScatter: %v", err)
	}
	if !strings.Contains(plot, "•") {
		t.Error("plot has no points")
	}
	if lines := strings.Count(plot, "\n"); lines != 20 {
		t.Errorf("plot has %d lines, want 20", lines)
	}
}

func TestPhaseScatter_BadComponent(t *testing.T) {
	sol := ode.NewSolution(2)
	sol.Append(0, ode.State{1, 2})
	if _, err := PhaseScatter(sol, 0, 5, 10, 10); err == nil {
		t.Error("expected error for out-of-range component")
	}
}
