package bench

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmarren/fluxion/internal/host"
	"github.com/jmarren/fluxion/internal/ode"
	"github.com/jmarren/fluxion/internal/problems"
	"github.com/jmarren/fluxion/internal/steppers"
)

func TestRun_MeasuresError(t *testing.T) {
	sys := problems.Exponential()
	res := Run(host.New(steppers.NewRK45()), sys, 0.01)

	if res.Err != nil {
		t.Fatalf("solve: %v", res.Err)
	}
	if res.Steps != ode.Steps(sys.TStart, sys.TEnd, 0.01) {
		t.Errorf("steps = %d", res.Steps)
	}
	if math.IsNaN(res.MaxError) {
		t.Fatal("expected an error measurement for a problem with an analytical solution")
	}
	if res.MaxError > 1e-8 {
		t.Errorf("rk45 max error = %g, expected tiny", res.MaxError)
	}
}

func TestRun_NoAnalyticalSolution(t *testing.T) {
	res := Run(host.New(steppers.NewEuler()), problems.VanDerPol(), 0.01)
	if res.Err != nil {
		t.Fatalf("solve: %v", res.Err)
	}
	if !math.IsNaN(res.MaxError) {
		t.Error("error should be NaN without an analytical solution")
	}
}

func TestMaxDivergence(t *testing.T) {
	a := ode.NewSolution(2)
	a.Append(0, ode.State{1.0, 2.0})
	a.Append(0.1, ode.State{1.0, 2.0})

	b := ode.NewSolution(2)
	b.Append(0, ode.State{1.0, 2.0})
	b.Append(0.1, ode.State{1.0, 2.5})

	if d := MaxDivergence(a, b); d != 0.5 {
		t.Errorf("divergence = %v, want 0.5", d)
	}
}

func TestMaxDivergence_UnequalLengths(t *testing.T) {
	a := ode.NewSolution(1)
	a.Append(0, ode.State{1.0})

	b := ode.NewSolution(2)
	b.Append(0, ode.State{1.0})
	b.Append(0.1, ode.State{9.0})

	if d := MaxDivergence(a, b); d != 0 {
		t.Errorf("divergence over common rows = %v, want 0", d)
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	results := []Result{
		{Problem: "exponential", Backend: "host-euler", Dt: 0.01, Steps: 101,
			Elapsed: 5 * time.Millisecond, MaxError: 2.7e-3, FinalError: 2.7e-3},
		{Problem: "vanderpol", Backend: "gpu-euler", Dt: 0.01, Steps: 2001,
			Elapsed: time.Second, MaxError: math.NaN(), FinalError: math.NaN()},
	}
	if err := WriteReport(path, results); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[2][5] != "n/a" {
		t.Errorf("missing error should export as n/a, got %q", rows[2][5])
	}
}
