package device

import (
	"fmt"
	"hash/fnv"

	"github.com/jmarren/fluxion/internal/ode"
)

// BackendState tracks the device pipeline through one solve.
type BackendState int

const (
	StateUninitialized BackendState = iota
	StateContextReady
	StateShaderReady
	StateBuffersReady
	StateStepping
	StateDone
	StateFailed
)

func (s BackendState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateContextReady:
		return "context-ready"
	case StateShaderReady:
		return "shader-ready"
	case StateBuffersReady:
		return "buffers-ready"
	case StateStepping:
		return "stepping"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Compiler brings up the device connection and turns kernel source into
// executable program handles. *Context is the production implementation.
type Compiler interface {
	Initialize() error
	Compile(source string) (uint32, error)
}

// executor drives the buffer and dispatch operations of one solve. The
// GL-backed implementation is the only production one; tests substitute
// a host-side fake so the orchestration loop runs without a GPU.
type executor interface {
	Allocate(nEquations, nSteps int, initial []float32) error
	UseProgram(program uint32)
	UpdateParams(p SystemParams)
	UpdateStepControl(c StepControl)
	// Dispatch runs one invocation per equation and blocks until the
	// written state is visible to the host.
	Dispatch(nEquations int) error
	ReadState() ([]float32, error)
	Cleanup()
}

// Backend integrates ODE systems on the GPU with the generated explicit
// kernel. Compiled programs are cached by RHS identity, so a given RHS
// compiles at most once per process. Not safe for concurrent solves; the
// device context is held exclusively for the duration of each call.
type Backend struct {
	compiler Compiler
	exec     executor
	gen      *Generator
	cache    map[string]uint32
	state    BackendState
}

// NewBackend wires the backend to a live device context.
func NewBackend(ctx *Context) (*Backend, error) {
	gen, err := NewGenerator()
	if err != nil {
		return nil, err
	}
	return &Backend{
		compiler: ctx,
		exec:     newGLExecutor(),
		gen:      gen,
		cache:    make(map[string]uint32),
		state:    StateUninitialized,
	}, nil
}

func (b *Backend) Name() string { return "gpu-euler" }

// State reports where the last solve left the pipeline.
func (b *Backend) State() BackendState { return b.state }

// Solve runs the fixed-step dispatch loop. Each step uploads that step's
// time and index, dispatches one invocation per equation, waits for the
// barrier and reads the row back; steps are therefore strictly
// sequential, never batched. On failure the rows accumulated so far are
// returned together with the diagnostic.
func (b *Backend) Solve(sys *ode.System, t0, tf, dt float64, y0 ode.State) (*ode.Solution, error) {
	sol := ode.NewSolution(0)

	if err := b.compiler.Initialize(); err != nil {
		b.state = StateFailed
		return sol, err
	}
	b.state = StateContextReady

	if !sys.HasDevice() {
		b.state = StateFailed
		return sol, fmt.Errorf("%w: %q", ode.ErrUnsupportedSystem, sys.Name)
	}
	if len(y0) != sys.Dimension {
		b.state = StateFailed
		return sol, fmt.Errorf("%w: system %q has dimension %d, initial state has %d",
			ode.ErrDimensionMismatch, sys.Name, sys.Dimension, len(y0))
	}

	program, def, err := b.getOrCompile(sys)
	if err != nil {
		b.state = StateFailed
		return sol, err
	}
	b.state = StateShaderReady

	nEquations := len(y0)
	nSteps := ode.Steps(t0, tf, dt)

	initial := make([]float32, nEquations)
	for i, v := range y0 {
		initial[i] = float32(v)
	}

	if err := b.exec.Allocate(nEquations, nSteps, initial); err != nil {
		b.state = StateFailed
		return sol, err
	}
	defer b.exec.Cleanup()
	b.state = StateBuffersReady

	params := SystemParams{Dt: float32(dt), NEquations: int32(nEquations)}
	resolveUniforms(sys, def, &params)
	ctl := StepControl{TotalSteps: int32(nSteps)}

	b.exec.UseProgram(program)

	sol = ode.NewSolution(nSteps)
	b.state = StateStepping

	// Row 0 is the seeded initial state read back through the device, so
	// it carries exactly the reduced-precision representation the kernel
	// will start from.
	row, err := b.exec.ReadState()
	if err != nil {
		b.state = StateFailed
		return sol, err
	}
	sol.Append(t0, widen(row))

	for step := 1; step < nSteps; step++ {
		// The derivative for this row is evaluated at the previous
		// row's time.
		params.TCurrent = float32(t0 + float64(step-1)*dt)
		ctl.CurrentStep = int32(step)

		b.exec.UpdateParams(params)
		b.exec.UpdateStepControl(ctl)

		if err := b.exec.Dispatch(nEquations); err != nil {
			b.state = StateFailed
			return sol, fmt.Errorf("step %d: %w", step, err)
		}

		row, err := b.exec.ReadState()
		if err != nil {
			b.state = StateFailed
			return sol, fmt.Errorf("step %d: %w", step, err)
		}
		sol.Append(t0+float64(step)*dt, widen(row))
	}

	b.state = StateDone
	return sol, nil
}

// getOrCompile resolves the compiled kernel for the system's RHS
// identity: built-ins are keyed by their symbolic name, custom fragments
// by a content hash.
func (b *Backend) getOrCompile(sys *ode.System) (uint32, RHSDefinition, error) {
	var (
		def RHSDefinition
		key string
		err error
	)
	switch {
	case sys.UseBuiltinRHS():
		key = sys.Device.RHSName
		def, err = Lookup(key)
		if err != nil {
			return 0, RHSDefinition{}, err
		}
	case sys.Device.RHSSource != "":
		def = customDefinition(sys.Device)
		key = fmt.Sprintf("custom-%x", contentHash(sys.Device.RHSSource))
	default:
		return 0, RHSDefinition{}, fmt.Errorf("%w: %q carries an empty descriptor", ode.ErrUnsupportedSystem, sys.Name)
	}

	if program, ok := b.cache[key]; ok {
		return program, def, nil
	}

	source, err := b.gen.Generate(def)
	if err != nil {
		return 0, RHSDefinition{}, err
	}
	program, err := b.compiler.Compile(source)
	if err != nil {
		return 0, RHSDefinition{}, err
	}
	b.cache[key] = program
	return program, def, nil
}

// customDefinition wraps a custom fragment. Its uniform values are
// positional, exposed to the kernel as u0..uN.
func customDefinition(info *ode.DeviceInfo) RHSDefinition {
	names := make([]string, len(info.Uniforms))
	for i := range info.Uniforms {
		names[i] = fmt.Sprintf("u%d", i)
	}
	return RHSDefinition{
		Name:     "custom",
		Source:   info.RHSSource,
		Uniforms: names,
	}
}

// resolveUniforms fills the uniform slots: an explicit per-system value
// list wins; otherwise each registry-declared parameter name is looked up
// in the system's parameter map, and unresolved names stay zero.
func resolveUniforms(sys *ode.System, def RHSDefinition, params *SystemParams) {
	if len(sys.Device.Uniforms) > 0 {
		for i, v := range sys.Device.Uniforms {
			if i >= MaxUniforms {
				break
			}
			params.Uniforms[i] = v
		}
		return
	}
	for i, name := range def.Uniforms {
		if i >= MaxUniforms {
			break
		}
		if v, ok := sys.Params[name]; ok {
			params.Uniforms[i] = float32(v)
		}
	}
}

func contentHash(source string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(source))
	return h.Sum64()
}

func widen(row []float32) ode.State {
	y := make(ode.State, len(row))
	for i, v := range row {
		y[i] = float64(v)
	}
	return y
}
