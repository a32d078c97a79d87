package analysis

import (
	"math"

	"github.com/jmarren/fluxion/internal/ode"
	"github.com/jmarren/fluxion/internal/steppers"
)

// MaxLyapunov estimates the largest Lyapunov exponent by the trajectory
// separation method: integrate the system and a slightly perturbed copy
// side by side and average the log growth of their separation. Positive
// values indicate chaos, negative values a contracting flow.
func MaxLyapunov(sys *ode.System, st steppers.Stepper, dt, duration, perturbation float64) float64 {
	if sys.Dimension == 0 || perturbation <= 0 {
		return 0
	}

	y := sys.Initial.Clone()
	yp := sys.Initial.Clone()
	yp[0] += perturbation
	d0 := perturbation

	t := sys.TStart
	end := sys.TStart + duration
	sumLog := 0.0
	count := 0

	for t < end {
		y = st.Step(sys, t, dt, y)
		yp = st.Step(sys, t, dt, yp)
		t += dt

		sep := 0.0
		for i := range y {
			diff := yp[i] - y[i]
			sep += diff * diff
		}
		sep = math.Sqrt(sep)
		if sep == 0 {
			continue
		}

		sumLog += math.Log(sep / d0)
		count++

		// renormalize the separation so it stays in the linear regime
		scale := d0 / sep
		for i := range yp {
			yp[i] = y[i] + (yp[i]-y[i])*scale
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}
