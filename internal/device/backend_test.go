package device

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/jmarren/fluxion/internal/host"
	"github.com/jmarren/fluxion/internal/ode"
	"github.com/jmarren/fluxion/internal/steppers"
)

type fakeCompiler struct {
	initErr    error
	compileErr error
	compiles   int
	next       uint32
}

func (c *fakeCompiler) Initialize() error { return c.initErr }

func (c *fakeCompiler) Compile(source string) (uint32, error) {
	if c.compileErr != nil {
		return 0, c.compileErr
	}
	c.compiles++
	c.next++
	return c.next, nil
}

// fakeExecutor runs the dispatch loop on the host in float32, standing in
// for the GPU so the orchestration can be exercised without a device.
type fakeExecutor struct {
	state      []float32
	params     SystemParams
	ctl        StepControl
	program    uint32
	allocErr   error
	failAtStep int
	dispatches int
	times      []float32
	cleaned    bool
	advance    func(state []float32, p SystemParams)
}

// eulerDecay advances dy/dt = -lambda*y one explicit step in float32,
// lambda taken from uniform slot 0.
func eulerDecay(state []float32, p SystemParams) {
	for i := range state {
		state[i] = state[i] + p.Dt*(-p.Uniforms[0]*state[i])
	}
}

func (e *fakeExecutor) Allocate(nEquations, nSteps int, initial []float32) error {
	if e.allocErr != nil {
		return e.allocErr
	}
	e.state = make([]float32, len(initial))
	copy(e.state, initial)
	return nil
}

func (e *fakeExecutor) UseProgram(program uint32)       { e.program = program }
func (e *fakeExecutor) UpdateParams(p SystemParams)     { e.params = p }
func (e *fakeExecutor) UpdateStepControl(c StepControl) { e.ctl = c }

func (e *fakeExecutor) Dispatch(nEquations int) error {
	e.dispatches++
	if e.failAtStep > 0 && e.dispatches >= e.failAtStep {
		return fmt.Errorf("%w: injected fault", ode.ErrDispatch)
	}
	e.times = append(e.times, e.params.TCurrent)
	if e.advance != nil {
		e.advance(e.state, e.params)
	} else {
		eulerDecay(e.state, e.params)
	}
	return nil
}

func (e *fakeExecutor) ReadState() ([]float32, error) {
	out := make([]float32, len(e.state))
	copy(out, e.state)
	return out, nil
}

func (e *fakeExecutor) Cleanup() { e.cleaned = true }

func newTestBackend(t *testing.T, fc *fakeCompiler, fe *fakeExecutor) *Backend {
	t.Helper()
	gen, err := NewGenerator()
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return &Backend{
		compiler: fc,
		exec:     fe,
		gen:      gen,
		cache:    make(map[string]uint32),
		state:    StateUninitialized,
	}
}

func decaySystem() *ode.System {
	return &ode.System{
		Name:      "exponential",
		Dimension: 1,
		Initial:   ode.State{1.0},
		Params:    map[string]float64{"lambda": 2.0},
		RHS: func(t float64, y ode.State) ode.State {
			return ode.State{-2.0 * y[0]}
		},
		Device: &ode.DeviceInfo{RHSName: "exponential"},
	}
}

func TestSolve_NoDeviceDescriptor(t *testing.T) {
	b := newTestBackend(t, &fakeCompiler{}, &fakeExecutor{})
	sys := decaySystem()
	sys.Device = nil

	sol, err := b.Solve(sys, 0, 1.0, 0.01, ode.State{1.0})
	if !errors.Is(err, ode.ErrUnsupportedSystem) {
		t.Errorf("err = %v, want ErrUnsupportedSystem", err)
	}
	if sol.Len() != 0 {
		t.Errorf("expected empty solution, got %d rows", sol.Len())
	}
	if b.State() != StateFailed {
		t.Errorf("state = %v, want failed", b.State())
	}
}

func TestSolve_UnknownRHSName(t *testing.T) {
	b := newTestBackend(t, &fakeCompiler{}, &fakeExecutor{})
	sys := decaySystem()
	sys.Device.RHSName = "three-body"

	sol, err := b.Solve(sys, 0, 1.0, 0.01, ode.State{1.0})
	if !errors.Is(err, ode.ErrUnknownSystem) {
		t.Errorf("err = %v, want ErrUnknownSystem", err)
	}
	if sol.Len() != 0 {
		t.Errorf("expected empty solution, got %d rows", sol.Len())
	}
}

func TestSolve_InitializationFailure(t *testing.T) {
	fc := &fakeCompiler{initErr: fmt.Errorf("%w: no render node", ode.ErrInitialization)}
	b := newTestBackend(t, fc, &fakeExecutor{})

	_, err := b.Solve(decaySystem(), 0, 1.0, 0.01, ode.State{1.0})
	if !errors.Is(err, ode.ErrInitialization) {
		t.Errorf("err = %v, want ErrInitialization", err)
	}
}

func TestSolve_AllocationFailure(t *testing.T) {
	fe := &fakeExecutor{allocErr: fmt.Errorf("%w: out of device memory", ode.ErrAllocation)}
	b := newTestBackend(t, &fakeCompiler{}, fe)

	sol, err := b.Solve(decaySystem(), 0, 1.0, 0.01, ode.State{1.0})
	if !errors.Is(err, ode.ErrAllocation) {
		t.Errorf("err = %v, want ErrAllocation", err)
	}
	if sol.Len() != 0 {
		t.Errorf("expected empty solution, got %d rows", sol.Len())
	}
}

func TestSolve_KernelCacheCompilesOnce(t *testing.T) {
	fc := &fakeCompiler{}
	fe := &fakeExecutor{}
	b := newTestBackend(t, fc, fe)
	sys := decaySystem()

	if _, err := b.Solve(sys, 0, 0.1, 0.01, ode.State{1.0}); err != nil {
		t.Fatalf("first solve: %v", err)
	}
	first := fe.program

	if _, err := b.Solve(sys, 0, 0.1, 0.01, ode.State{1.0}); err != nil {
		t.Fatalf("second solve: %v", err)
	}

	if fc.compiles != 1 {
		t.Errorf("compile ran %d times, want 1", fc.compiles)
	}
	if fe.program != first {
		t.Errorf("second solve used program %d, want cached %d", fe.program, first)
	}
}

func TestSolve_CustomFragmentCachedByContent(t *testing.T) {
	fc := &fakeCompiler{}
	b := newTestBackend(t, fc, &fakeExecutor{})

	sys := decaySystem()
	sys.Device = &ode.DeviceInfo{
		RHSSource: "float evaluate_rhs(uint eq_idx, float y_val, float t) { return -u0 * y_val; }",
		Uniforms:  []float32{2.0},
	}

	if _, err := b.Solve(sys, 0, 0.1, 0.01, ode.State{1.0}); err != nil {
		t.Fatalf("first solve: %v", err)
	}
	if _, err := b.Solve(sys, 0, 0.1, 0.01, ode.State{1.0}); err != nil {
		t.Fatalf("second solve: %v", err)
	}
	if fc.compiles != 1 {
		t.Errorf("identical custom fragments compiled %d times, want 1", fc.compiles)
	}
}

func TestSolve_RowZeroIsInitialState(t *testing.T) {
	b := newTestBackend(t, &fakeCompiler{}, &fakeExecutor{})

	sol, err := b.Solve(decaySystem(), 0, 1.0, 0.01, ode.State{1.0})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.States[0][0] != 1.0 {
		t.Errorf("row 0 = %v, want the seeded initial state", sol.States[0])
	}
}

func TestSolve_RowCount(t *testing.T) {
	b := newTestBackend(t, &fakeCompiler{}, &fakeExecutor{})

	sol, err := b.Solve(decaySystem(), 0, 1.0, 0.01, ode.State{1.0})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if want := ode.Steps(0, 1.0, 0.01); sol.Len() != want {
		t.Errorf("rows = %d, want %d", sol.Len(), want)
	}
}

func TestSolve_StepTimesAreSequential(t *testing.T) {
	fe := &fakeExecutor{}
	b := newTestBackend(t, &fakeCompiler{}, fe)

	dt := 0.1
	if _, err := b.Solve(decaySystem(), 0, 0.5, dt, ode.State{1.0}); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	// Dispatch k computes row k from row k-1, so its parameter time is
	// the previous row's.
	for i, got := range fe.times {
		want := float32(float64(i) * dt)
		if got != want {
			t.Errorf("dispatch %d saw t=%v, want %v", i+1, got, want)
		}
	}
}

func TestSolve_UniformsResolvedFromParams(t *testing.T) {
	fe := &fakeExecutor{}
	b := newTestBackend(t, &fakeCompiler{}, fe)

	if _, err := b.Solve(decaySystem(), 0, 0.1, 0.01, ode.State{1.0}); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if fe.params.Uniforms[0] != 2.0 {
		t.Errorf("lambda slot = %v, want 2.0 resolved from the parameter map", fe.params.Uniforms[0])
	}
}

func TestSolve_ExplicitUniformsWin(t *testing.T) {
	fe := &fakeExecutor{}
	b := newTestBackend(t, &fakeCompiler{}, fe)

	sys := decaySystem()
	sys.Device.Uniforms = []float32{3.5}

	if _, err := b.Solve(sys, 0, 0.1, 0.01, ode.State{1.0}); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if fe.params.Uniforms[0] != 3.5 {
		t.Errorf("lambda slot = %v, want the explicit 3.5 over the map's 2.0", fe.params.Uniforms[0])
	}
}

func TestSolve_DispatchFailureReturnsPartialSolution(t *testing.T) {
	fe := &fakeExecutor{failAtStep: 5}
	b := newTestBackend(t, &fakeCompiler{}, fe)

	sol, err := b.Solve(decaySystem(), 0, 1.0, 0.01, ode.State{1.0})
	if !errors.Is(err, ode.ErrDispatch) {
		t.Fatalf("err = %v, want ErrDispatch", err)
	}
	// Row 0 plus the four rows produced before the fault.
	if sol.Len() != 5 {
		t.Errorf("accumulated %d rows, want 5", sol.Len())
	}
	if b.State() != StateFailed {
		t.Errorf("state = %v, want failed", b.State())
	}
	if !fe.cleaned {
		t.Error("buffers not released after failure")
	}
}

func TestSolve_BuffersReleasedAfterSuccess(t *testing.T) {
	fe := &fakeExecutor{}
	b := newTestBackend(t, &fakeCompiler{}, fe)

	if _, err := b.Solve(decaySystem(), 0, 0.1, 0.01, ode.State{1.0}); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !fe.cleaned {
		t.Error("buffers not released after a completed solve")
	}
	if b.State() != StateDone {
		t.Errorf("state = %v, want done", b.State())
	}
}

func TestSolve_AgreesWithHostWithinPrecision(t *testing.T) {
	// Same stepping order on both paths: the only difference left is
	// float32 versus float64 arithmetic.
	b := newTestBackend(t, &fakeCompiler{}, &fakeExecutor{})
	sys := decaySystem()

	devSol, err := b.Solve(sys, 0, 1.0, 0.01, ode.State{1.0})
	if err != nil {
		t.Fatalf("device solve: %v", err)
	}

	hostSol, err := host.New(steppers.NewEuler()).Solve(sys, 0, 1.0, 0.01, ode.State{1.0})
	if err != nil {
		t.Fatalf("host solve: %v", err)
	}

	if devSol.Len() != hostSol.Len() {
		t.Fatalf("row counts differ: device %d, host %d", devSol.Len(), hostSol.Len())
	}
	diff := math.Abs(devSol.Final()[0] - hostSol.Final()[0])
	if diff > 1e-4 {
		t.Errorf("final values diverge by %g, want <= 1e-4 (device %v, host %v)",
			diff, devSol.Final()[0], hostSol.Final()[0])
	}
}

func TestBackendState_String(t *testing.T) {
	if StateUninitialized.String() != "uninitialized" || StateDone.String() != "done" {
		t.Error("state names wrong")
	}
}
