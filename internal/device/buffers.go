package device

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/jmarren/fluxion/internal/ode"
)

// SystemParams is the fixed parameter record at binding 1, mirroring the
// kernel's Params block layout.
type SystemParams struct {
	Dt         float32
	TCurrent   float32
	NEquations int32
	Uniforms   [MaxUniforms]float32
}

// StepControl is the step-index record at binding 3.
type StepControl struct {
	CurrentStep int32
	TotalSteps  int32
}

const (
	bindingStateIn    = 0
	bindingParams     = 1
	bindingTimeSeries = 2
	bindingStepCtl    = 3
	bindingStateOut   = 4
)

// BufferManager owns the device-resident memory for one solve: the state
// pair (previous/next, swapped every step so a dispatch only ever reads
// the prior step's values), the parameter record, the optional full time
// series and the step counter. Buffers are sized exactly for one
// (equations, steps) pair and reallocated, never resized, on the next
// solve.
type BufferManager struct {
	stateIn    uint32
	stateOut   uint32
	params     uint32
	timeSeries uint32
	stepCtl    uint32

	allocated  bool
	nEquations int
	nSteps     int
}

func NewBufferManager() *BufferManager {
	return &BufferManager{}
}

func (m *BufferManager) Allocated() bool { return m.allocated }

// Allocate creates all buffers for one problem instance, seeding the
// state pair with the initial values. A prior allocation is released
// first. On any failure no partially-allocated buffers remain.
func (m *BufferManager) Allocate(nEquations, nSteps int, initial []float32) error {
	if m.allocated {
		m.releaseBuffers()
	}
	if len(initial) != nEquations {
		return fmt.Errorf("%w: initial state has %d values for %d equations",
			ode.ErrAllocation, len(initial), nEquations)
	}

	m.nEquations = nEquations
	m.nSteps = nSteps

	stateSize := nEquations * 4

	gl.GenBuffers(1, &m.stateIn)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, m.stateIn)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, stateSize, gl.Ptr(initial), gl.DYNAMIC_DRAW)

	gl.GenBuffers(1, &m.stateOut)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, m.stateOut)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, stateSize, nil, gl.DYNAMIC_DRAW)

	gl.GenBuffers(1, &m.params)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, m.params)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, int(unsafe.Sizeof(SystemParams{})), nil, gl.DYNAMIC_DRAW)

	// The series buffer only exists for multi-step runs. Row 0 holds the
	// seeded initial state; the kernel writes every later row.
	if nSteps > 1 {
		gl.GenBuffers(1, &m.timeSeries)
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, m.timeSeries)
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, nSteps*stateSize, nil, gl.DYNAMIC_READ)
		gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, stateSize, gl.Ptr(initial))
	}

	gl.GenBuffers(1, &m.stepCtl)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, m.stepCtl)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, int(unsafe.Sizeof(StepControl{})), nil, gl.DYNAMIC_DRAW)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		m.releaseBuffers()
		return fmt.Errorf("%w: GL error 0x%x during allocation", ode.ErrAllocation, errCode)
	}

	m.allocated = true
	m.Bind()
	return nil
}

// Bind attaches every buffer to its kernel binding point.
func (m *BufferManager) Bind() {
	if !m.allocated {
		return
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindingStateIn, m.stateIn)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindingParams, m.params)
	if m.timeSeries != 0 {
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindingTimeSeries, m.timeSeries)
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindingStepCtl, m.stepCtl)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindingStateOut, m.stateOut)
}

// UpdateParams rewrites the parameter record in place.
func (m *BufferManager) UpdateParams(p SystemParams) {
	if !m.allocated {
		return
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, m.params)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, int(unsafe.Sizeof(p)), unsafe.Pointer(&p))
}

// UpdateStepControl rewrites the step-control record in place.
func (m *BufferManager) UpdateStepControl(c StepControl) {
	if !m.allocated {
		return
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, m.stepCtl)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, int(unsafe.Sizeof(c)), unsafe.Pointer(&c))
}

// SwapState exchanges the state pair after a dispatch, so the row just
// written becomes the next step's input, and rebinds both.
func (m *BufferManager) SwapState() {
	if !m.allocated {
		return
	}
	m.stateIn, m.stateOut = m.stateOut, m.stateIn
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindingStateIn, m.stateIn)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindingStateOut, m.stateOut)
}

// ReadState blocks until the most recent state is visible to the host
// and returns a copy of it.
func (m *BufferManager) ReadState() ([]float32, error) {
	if !m.allocated {
		return nil, fmt.Errorf("%w: read before allocation", ode.ErrDispatch)
	}
	return m.readBuffer(m.stateIn, m.nEquations)
}

// ReadTimeSeries returns the full recorded series, one row per step.
func (m *BufferManager) ReadTimeSeries(nEquations, nSteps int) ([]float32, error) {
	if !m.allocated || m.timeSeries == 0 {
		return nil, fmt.Errorf("%w: no time series buffer allocated", ode.ErrDispatch)
	}
	return m.readBuffer(m.timeSeries, nEquations*nSteps)
}

func (m *BufferManager) readBuffer(buffer uint32, count int) ([]float32, error) {
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buffer)
	ptr := gl.MapBufferRange(gl.SHADER_STORAGE_BUFFER, 0, count*4, gl.MAP_READ_BIT)
	if ptr == nil {
		return nil, fmt.Errorf("%w: mapping buffer for readback failed", ode.ErrDispatch)
	}
	result := make([]float32, count)
	copy(result, unsafe.Slice((*float32)(ptr), count))
	gl.UnmapBuffer(gl.SHADER_STORAGE_BUFFER)
	return result, nil
}

// Cleanup releases all buffers. Safe to call when nothing is allocated.
func (m *BufferManager) Cleanup() {
	m.releaseBuffers()
	m.allocated = false
	m.nEquations = 0
	m.nSteps = 0
}

func (m *BufferManager) releaseBuffers() {
	for _, buf := range []*uint32{&m.stateIn, &m.stateOut, &m.params, &m.timeSeries, &m.stepCtl} {
		if *buf != 0 {
			gl.DeleteBuffers(1, buf)
			*buf = 0
		}
	}
}
