package device

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/jmarren/fluxion/internal/ode"
)

// Context owns the process-wide GPU connection: a hidden window provides
// the off-screen GL surface, and compiled compute programs run against
// it. Create it once and keep it until shutdown; the target driver does
// not tolerate repeated context creation/destruction cycles, so a failed
// context stays unusable instead of being rebuilt.
type Context struct {
	initialized bool
	failed      bool
	programs    []uint32
}

func NewContext() *Context {
	return &Context{}
}

// Initialize opens the device connection. The first call does the work;
// subsequent calls are no-ops. After a failure the context refuses all
// further use.
func (c *Context) Initialize() error {
	if c.initialized {
		return nil
	}
	if c.failed {
		return fmt.Errorf("%w: context failed earlier and will not be recreated", ode.ErrInitialization)
	}

	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(1, 1, "fluxion-compute")
	if !rl.IsWindowReady() {
		c.failed = true
		return fmt.Errorf("%w: off-screen surface creation failed", ode.ErrInitialization)
	}

	if err := gl.Init(); err != nil {
		c.failed = true
		rl.CloseWindow()
		return fmt.Errorf("%w: loading GL functions: %v", ode.ErrInitialization, err)
	}

	c.initialized = true
	return nil
}

// Compile compiles and links kernel source into an executable program
// handle. Callers cache by RHS identity; no caching happens here. The
// returned handle is released at Destroy.
func (c *Context) Compile(source string) (uint32, error) {
	if !c.initialized {
		return 0, fmt.Errorf("%w: compile before context initialization", ode.ErrInitialization)
	}

	content := source + "\x00"

	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(content)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		log := shaderInfoLog(shader)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: compute shader compile: %s", ode.ErrInitialization, log)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := programInfoLog(program)
		gl.DeleteProgram(program)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: program link: %s", ode.ErrInitialization, log)
	}

	gl.DeleteShader(shader)
	c.programs = append(c.programs, program)
	return program, nil
}

// Destroy releases all compiled programs and the device connection. Call
// once, at process shutdown.
func (c *Context) Destroy() {
	if !c.initialized {
		return
	}
	for _, program := range c.programs {
		gl.DeleteProgram(program)
	}
	c.programs = nil
	rl.CloseWindow()
	c.initialized = false
	c.failed = true
}

func shaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return "no diagnostic"
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func programInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return "no diagnostic"
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}
