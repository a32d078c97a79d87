package steppers_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jmarren/fluxion/internal/ode"
	"github.com/jmarren/fluxion/internal/steppers"
)

// decay is dy/dt = -lambda*y with lambda=2, y0=1, so y(t) = exp(-2t).
func decay() *ode.System {
	return &ode.System{
		Name:      "exponential",
		Dimension: 1,
		Initial:   ode.State{1.0},
		Params:    map[string]float64{"lambda": 2.0},
		RHS: func(t float64, y ode.State) ode.State {
			return ode.State{-2.0 * y[0]}
		},
		Analytical: func(t float64) ode.State {
			return ode.State{math.Exp(-2.0 * t)}
		},
	}
}

// integrate runs the fixed-step loop to tf and returns the final error
// against the analytical solution.
func finalError(st steppers.Stepper, sys *ode.System, tf, dt float64) float64 {
	n := ode.Steps(0, tf, dt)
	y := sys.Initial.Clone()
	for i := 1; i < n; i++ {
		t := float64(i-1) * dt
		y = st.Step(sys, t, dt, y)
	}
	exact := sys.Analytical(float64(n-1) * dt)
	return math.Abs(y[0] - exact[0])
}

var _ = Describe("fixed-step accuracy", func() {
	sys := decay()

	Describe("explicit Euler", func() {
		It("matches the known final value for dt=0.01, tf=1.0", func() {
			st := steppers.NewEuler()
			y := sys.Initial.Clone()
			n := ode.Steps(0, 1.0, 0.01)
			for i := 1; i < n; i++ {
				y = st.Step(sys, float64(i-1)*0.01, 0.01, y)
			}
			// (1 - 2*0.01)^100
			Expect(y[0]).To(BeNumerically("~", math.Pow(0.98, 100), 1e-12))
			Expect(math.Abs(y[0]-math.Exp(-2.0))).To(BeNumerically("<", 0.005))
		})

		It("halves the error when the step halves (first order)", func() {
			st := steppers.NewEuler()
			e1 := finalError(st, sys, 1.0, 0.01)
			e2 := finalError(st, sys, 1.0, 0.005)
			ratio := e1 / e2
			Expect(ratio).To(BeNumerically(">", 1.8))
			Expect(ratio).To(BeNumerically("<", 2.2))
		})
	})

	Describe("Dormand-Prince at fixed step", func() {
		It("lands within 1e-6 of exp(-2) for dt=0.01, tf=1.0", func() {
			st := steppers.NewRK45()
			y := sys.Initial.Clone()
			n := ode.Steps(0, 1.0, 0.01)
			for i := 1; i < n; i++ {
				y = st.Step(sys, float64(i-1)*0.01, 0.01, y)
			}
			Expect(y[0]).To(BeNumerically("~", 0.135335, 1e-6))
		})

		It("converges much faster than first order", func() {
			st := steppers.NewRK45()
			// Coarse steps keep the errors well above double rounding.
			e1 := finalError(st, sys, 1.0, 0.1)
			e2 := finalError(st, sys, 1.0, 0.05)
			Expect(e1 / e2).To(BeNumerically(">", 16))
		})

		It("beats Euler at the same step by orders of magnitude", func() {
			eEuler := finalError(steppers.NewEuler(), sys, 1.0, 0.01)
			eRK := finalError(steppers.NewRK45(), sys, 1.0, 0.01)
			Expect(eRK).To(BeNumerically("<", eEuler*1e-4))
		})
	})

	Describe("factory", func() {
		It("resolves registered names", func() {
			st, err := steppers.New("euler")
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Order()).To(Equal(1))

			st, err = steppers.New("rk45")
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Order()).To(Equal(5))
		})

		It("rejects unknown names", func() {
			_, err := steppers.New("leapfrog")
			Expect(err).To(HaveOccurred())
		})
	})
})
