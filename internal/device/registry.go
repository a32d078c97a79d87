package device

import (
	"fmt"
	"sort"

	"github.com/jmarren/fluxion/internal/ode"
)

// RHSDefinition is one registered derivative evaluator for the GPU path.
// Source is a GLSL fragment defining
//
//	float evaluate_rhs(uint eq_idx, float y_val, float t)
//
// over the flat state array, with consecutive equations forming one
// physical system instance. Uniforms lists the scalar parameter names in
// the order they occupy the kernel's uniform slots. Definitions are
// immutable after registration.
type RHSDefinition struct {
	Name        string
	Source      string
	Uniforms    []string
	Description string
}

var registry = map[string]RHSDefinition{}

func init() {
	registerBuiltins()
}

// Register adds a definition to the process-wide catalog. Registration
// happens once at startup; re-registering a name is an error.
func Register(def RHSDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("device: RHS definition needs a name")
	}
	if _, exists := registry[def.Name]; exists {
		return fmt.Errorf("device: RHS %q already registered", def.Name)
	}
	registry[def.Name] = def
	return nil
}

// Lookup returns the definition registered under name. This is the only
// way to obtain derivative code for the device path; there is no runtime
// expression evaluator.
func Lookup(name string) (RHSDefinition, error) {
	def, ok := registry[name]
	if !ok {
		return RHSDefinition{}, fmt.Errorf("%w: %q", ode.ErrUnknownSystem, name)
	}
	return def, nil
}

// Names lists the registered RHS names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustRegister(def RHSDefinition) {
	if err := Register(def); err != nil {
		panic(err)
	}
}

func registerBuiltins() {
	mustRegister(RHSDefinition{
		Name: "exponential",
		Source: `float evaluate_rhs(uint eq_idx, float y_val, float t) {
    return -lambda * y_val;
}`,
		Uniforms:    []string{"lambda"},
		Description: "Exponential decay: dy/dt = -lambda*y",
	})

	// Pairs of equations per oscillator: even index holds position,
	// odd index velocity. Sibling reads see the previous step's state.
	mustRegister(RHSDefinition{
		Name: "vanderpol",
		Source: `float evaluate_rhs(uint eq_idx, float y_val, float t) {
    if (eq_idx % 2u == 0u) {
        uint v_idx = eq_idx + 1u;
        return (v_idx < uint(n_equations)) ? current_state[v_idx] : 0.0;
    }
    uint x_idx = eq_idx - 1u;
    float x = current_state[x_idx];
    return mu * (1.0 - x * x) * y_val - x;
}`,
		Uniforms:    []string{"mu"},
		Description: "Van der Pol oscillator: dx/dt = v, dv/dt = mu*(1-x^2)*v - x",
	})

	// Triples of equations per attractor instance.
	mustRegister(RHSDefinition{
		Name: "lorenz",
		Source: `float evaluate_rhs(uint eq_idx, float y_val, float t) {
    uint base = (eq_idx / 3u) * 3u;
    uint local = eq_idx % 3u;
    if (base + 2u >= uint(n_equations)) {
        return 0.0;
    }
    float x = current_state[base + 0u];
    float y = current_state[base + 1u];
    float z = current_state[base + 2u];
    if (local == 0u) {
        return sigma * (y - x);
    }
    if (local == 1u) {
        return x * (rho - z) - y;
    }
    return x * y - beta * z;
}`,
		Uniforms:    []string{"sigma", "rho", "beta"},
		Description: "Lorenz system",
	})

	mustRegister(RHSDefinition{
		Name: "harmonic",
		Source: `float evaluate_rhs(uint eq_idx, float y_val, float t) {
    if (eq_idx % 2u == 0u) {
        uint v_idx = eq_idx + 1u;
        return (v_idx < uint(n_equations)) ? current_state[v_idx] : 0.0;
    }
    uint x_idx = eq_idx - 1u;
    return -omega_sq * current_state[x_idx];
}`,
		Uniforms:    []string{"omega_sq"},
		Description: "Harmonic oscillator: d2x/dt2 = -omega^2 * x",
	})
}
