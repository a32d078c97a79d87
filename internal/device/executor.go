package device

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/jmarren/fluxion/internal/ode"
)

// glExecutor runs dispatches against the live GL context through a
// BufferManager.
type glExecutor struct {
	buffers *BufferManager
}

func newGLExecutor() *glExecutor {
	return &glExecutor{buffers: NewBufferManager()}
}

func (e *glExecutor) Allocate(nEquations, nSteps int, initial []float32) error {
	return e.buffers.Allocate(nEquations, nSteps, initial)
}

func (e *glExecutor) UseProgram(program uint32) {
	gl.UseProgram(program)
	e.buffers.Bind()
}

func (e *glExecutor) UpdateParams(p SystemParams)     { e.buffers.UpdateParams(p) }
func (e *glExecutor) UpdateStepControl(c StepControl) { e.buffers.UpdateStepControl(c) }
func (e *glExecutor) ReadState() ([]float32, error)   { return e.buffers.ReadState() }
func (e *glExecutor) Cleanup()                        { e.buffers.Cleanup() }

// Dispatch issues one invocation group per LocalSize-wide block of
// equations, waits on a full storage barrier so every write is visible to
// the host, then swaps the state pair for the next step.
func (e *glExecutor) Dispatch(nEquations int) error {
	groups := uint32((nEquations + LocalSize - 1) / LocalSize)
	gl.DispatchCompute(groups, 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT | gl.BUFFER_UPDATE_BARRIER_BIT)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		return fmt.Errorf("%w: GL error 0x%x", ode.ErrDispatch, errCode)
	}
	e.buffers.SwapState()
	return nil
}
