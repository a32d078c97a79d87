package device

import (
	"embed"
	"fmt"
	"strings"
)

// LocalSize is the fixed work-group size the kernel template declares.
// Dispatch counts are ceiling-divided by it.
const LocalSize = 64

// MaxUniforms bounds the uniform slots in the kernel parameter record.
const MaxUniforms = 16

const (
	markerUniforms = "{{USER_UNIFORMS}}"
	markerRHS      = "{{RHS_FUNCTION}}"
)

//go:embed templates/*.glsl
var templates embed.FS

// Generator specializes the generic integration kernel template for one
// RHS definition. The template carries exactly two substitution points:
// the uniform declaration block and the derivative-evaluation body.
type Generator struct {
	template string
}

// NewGenerator loads the default explicit-Euler kernel template.
func NewGenerator() (*Generator, error) {
	return NewGeneratorFor("euler.comp.glsl")
}

// NewGeneratorFor loads the named template and verifies both substitution
// markers are present, so generation can never silently emit raw template
// text.
func NewGeneratorFor(name string) (*Generator, error) {
	data, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("device: load kernel template %q: %w", name, err)
	}
	tmpl := string(data)
	for _, marker := range []string{markerUniforms, markerRHS} {
		if !strings.Contains(tmpl, marker) {
			return nil, fmt.Errorf("device: kernel template %q is missing marker %s", name, marker)
		}
	}
	return &Generator{template: tmpl}, nil
}

// Generate produces final kernel source for def.
func (g *Generator) Generate(def RHSDefinition) (string, error) {
	if len(def.Uniforms) > MaxUniforms {
		return "", fmt.Errorf("device: RHS %q declares %d uniforms, max is %d",
			def.Name, len(def.Uniforms), MaxUniforms)
	}
	if strings.TrimSpace(def.Source) == "" {
		return "", fmt.Errorf("device: RHS %q has no derivative source", def.Name)
	}

	out := strings.Replace(g.template, markerUniforms, uniformDecls(def.Uniforms), 1)
	out = strings.Replace(out, markerRHS, def.Source, 1)
	return out, nil
}

func uniformDecls(names []string) string {
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "    float %s;\n", name)
	}
	return strings.TrimRight(b.String(), "\n")
}
