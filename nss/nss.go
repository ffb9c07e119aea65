// Package nss implements the Nelson-Siegel-Svensson parametric curve family
// used by the Gurkaynak-Sack-Wright Treasury yield curve.
//
// All rates are continuously compounded decimals (0.05 == 5%) and maturities
// are in years.
package nss

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTau is returned when a decay parameter is non-positive or NaN.
//
// The model is singular at tau = 0 and undefined below it, so callers must
// reject such parameter vectors before evaluating the curve.
var ErrInvalidTau = errors.New("nss: tau parameters must be positive")

// Parameters holds the six NSS factors.
//
// Tau1 and Tau2 are decay constants in years; Beta0..Beta3 are the level,
// slope, curvature and second-hump loadings.
type Parameters struct {
	Tau1  float64
	Tau2  float64
	Beta0 float64
	Beta1 float64
	Beta2 float64
	Beta3 float64
}

// FromSlice builds Parameters from the positional layout
// (tau1, tau2, beta0, beta1, beta2, beta3) used by the optimizer.
func FromSlice(x []float64) (Parameters, error) {
	if len(x) != 6 {
		return Parameters{}, fmt.Errorf("nss: expected 6 parameters, got %d", len(x))
	}
	return Parameters{
		Tau1:  x[0],
		Tau2:  x[1],
		Beta0: x[2],
		Beta1: x[3],
		Beta2: x[4],
		Beta3: x[5],
	}, nil
}

// Slice returns the positional layout (tau1, tau2, beta0, beta1, beta2, beta3).
func (p Parameters) Slice() []float64 {
	return []float64{p.Tau1, p.Tau2, p.Beta0, p.Beta1, p.Beta2, p.Beta3}
}

// Validate reports whether the parameter vector lies in the model's domain.
func (p Parameters) Validate() error {
	if !(p.Tau1 > 0) || !(p.Tau2 > 0) {
		return ErrInvalidTau
	}
	return nil
}

// Forward returns the instantaneous forward rate t years ahead:
//
//	f(t) = b0 + b1*exp(-t/tau1) + b2*(t/tau1)*exp(-t/tau1) + b3*(t/tau2)*exp(-t/tau2)
func (p Parameters) Forward(t float64) float64 {
	x1 := t / p.Tau1
	x2 := t / p.Tau2
	return p.Beta0 +
		p.Beta1*math.Exp(-x1) +
		p.Beta2*x1*math.Exp(-x1) +
		p.Beta3*x2*math.Exp(-x2)
}

// Zero returns the zero-coupon continuously compounded yield for maturity t:
//
//	y(t) = b0 + b1*L1 + b2*(L1 - exp(-t/tau1)) + b3*(L2 - exp(-t/tau2))
//
// where Lk = (1 - exp(-t/tauK)) / (t/tauK). The t -> 0 limit is b0 + b1.
func (p Parameters) Zero(t float64) float64 {
	if t <= 0 {
		return p.Beta0 + p.Beta1
	}
	x1 := t / p.Tau1
	x2 := t / p.Tau2
	l1 := loading(x1)
	l2 := loading(x2)
	return p.Beta0 +
		p.Beta1*l1 +
		p.Beta2*(l1-math.Exp(-x1)) +
		p.Beta3*(l2-math.Exp(-x2))
}

// Discount returns the discount factor exp(-y(t)*t) for maturity t.
func (p Parameters) Discount(t float64) float64 {
	if t <= 0 {
		return 1.0
	}
	return math.Exp(-p.Zero(t) * t)
}

// loading computes (1 - exp(-x)) / x, switching to the series expansion near
// zero to remove the 0/0 singularity.
func loading(x float64) float64 {
	if math.Abs(x) < 1e-6 {
		return 1.0 - x/2.0 + x*x/6.0
	}
	return (1.0 - math.Exp(-x)) / x
}
