package curvefit

import (
	"math"

	"github.com/tsylab/gswfit/nss"
	"github.com/tsylab/gswfit/treasury"
)

// tauPenalty dominates any plausible pricing error so the optimizer backs
// out of the invalid region instead of crashing the curve evaluation.
const tauPenalty = 1e10

// Objective returns the duration-weighted squared pricing error for the
// positional parameter layout (tau1, tau2, beta0..beta3):
//
//	sum_i w_i * (observed_i - model_i)^2 / duration_i
//
// Dividing by duration approximately converts price errors into yield
// errors, giving short and long maturities comparable influence.
// Candidate vectors with tau1 <= 0 or tau2 <= 0 are penalized, never
// evaluated against the curve.
func Objective(cf *treasury.CashflowMatrix, observed, weights []float64) func(x []float64) float64 {
	return func(x []float64) float64 {
		p, err := nss.FromSlice(x)
		if err != nil {
			return tauPenalty
		}
		if p.Validate() != nil {
			// Grow with the violation so the simplex is steered back
			// toward the admissible region.
			v := 0.0
			if p.Tau1 <= 0 {
				v += p.Tau1 * p.Tau1
			}
			if p.Tau2 <= 0 {
				v += p.Tau2 * p.Tau2
			}
			return tauPenalty * (1 + v)
		}

		prices, durations := PricesAndDurations(cf, p)

		sum := 0.0
		for i, obs := range observed {
			dur := durations[i]
			if dur <= 0 {
				dur = 1.0
			}
			diff := obs - prices[i]
			sum += weights[i] * diff * diff / dur
		}
		if math.IsNaN(sum) || math.IsInf(sum, 0) {
			return tauPenalty
		}
		return sum
	}
}
