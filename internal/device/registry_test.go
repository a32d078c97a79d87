package device

import (
	"errors"
	"strings"
	"testing"

	"github.com/jmarren/fluxion/internal/ode"
)

func TestLookup_Builtins(t *testing.T) {
	cases := []struct {
		name     string
		uniforms []string
	}{
		{"exponential", []string{"lambda"}},
		{"vanderpol", []string{"mu"}},
		{"lorenz", []string{"sigma", "rho", "beta"}},
		{"harmonic", []string{"omega_sq"}},
	}
	for _, c := range cases {
		def, err := Lookup(c.name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", c.name, err)
		}
		if len(def.Uniforms) != len(c.uniforms) {
			t.Fatalf("%q has %d uniforms, want %d", c.name, len(def.Uniforms), len(c.uniforms))
		}
		for i, u := range c.uniforms {
			if def.Uniforms[i] != u {
				t.Errorf("%q uniform %d = %q, want %q", c.name, i, def.Uniforms[i], u)
			}
		}
		if !strings.Contains(def.Source, "evaluate_rhs") {
			t.Errorf("%q source does not define evaluate_rhs", c.name)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("three-body")
	if !errors.Is(err, ode.ErrUnknownSystem) {
		t.Errorf("err = %v, want ErrUnknownSystem", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	if err := Register(RHSDefinition{Name: "exponential"}); err == nil {
		t.Error("re-registering a built-in should fail")
	}
}

func TestRegister_NeedsName(t *testing.T) {
	if err := Register(RHSDefinition{}); err == nil {
		t.Error("registering an unnamed definition should fail")
	}
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	if len(names) < 4 {
		t.Fatalf("expected at least the 4 built-ins, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestCoupledSystems_ReadSiblingState(t *testing.T) {
	// Coupled built-ins read sibling values through current_state, the
	// previous step's buffer, never the one being written.
	for _, name := range []string{"vanderpol", "lorenz", "harmonic"} {
		def, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if !strings.Contains(def.Source, "current_state[") {
			t.Errorf("%q does not read sibling state from current_state", name)
		}
		if strings.Contains(def.Source, "next_state") {
			t.Errorf("%q must not touch the output buffer", name)
		}
	}
}
