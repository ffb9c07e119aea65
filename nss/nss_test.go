package nss_test

import (
	"math"
	"testing"

	"github.com/tsylab/gswfit/nss"
)

func refParams() nss.Parameters {
	return nss.Parameters{
		Tau1:  0.989721,
		Tau2:  9.955324,
		Beta0: 0.0368,
		Beta1: 0.0158,
		Beta2: 0.0364,
		Beta3: 0.0981,
	}
}

func TestZero_ShortMaturityLimit(t *testing.T) {
	t.Parallel()

	p := refParams()
	want := p.Beta0 + p.Beta1

	for _, tt := range []float64{0, 1e-12, 1e-9, 1e-6, 1e-4} {
		got := p.Zero(tt)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("Zero(%g) is not finite: %v", tt, got)
		}
		if math.Abs(got-want) > 1e-3 {
			t.Fatalf("Zero(%g) = %.10f, want near limit %.10f", tt, got, want)
		}
	}
}

func TestZero_MatchesClosedForm(t *testing.T) {
	t.Parallel()

	p := refParams()
	tt := 5.0
	x1 := tt / p.Tau1
	x2 := tt / p.Tau2
	l1 := (1 - math.Exp(-x1)) / x1
	l2 := (1 - math.Exp(-x2)) / x2
	want := p.Beta0 + p.Beta1*l1 + p.Beta2*(l1-math.Exp(-x1)) + p.Beta3*(l2-math.Exp(-x2))

	if got := p.Zero(tt); math.Abs(got-want) > 1e-15 {
		t.Fatalf("Zero(%g) = %.15f, want %.15f", tt, got, want)
	}
}

func TestZero_IsAverageOfForwards(t *testing.T) {
	t.Parallel()

	// y(t) is the average of instantaneous forwards over [0, t]; check via
	// trapezoidal integration of Forward.
	p := refParams()
	tt := 7.0
	const n = 200000
	h := tt / n
	sum := 0.5 * (p.Forward(0) + p.Forward(tt))
	for i := 1; i < n; i++ {
		sum += p.Forward(float64(i) * h)
	}
	avg := sum * h / tt

	if got := p.Zero(tt); math.Abs(got-avg) > 1e-8 {
		t.Fatalf("Zero(%g) = %.10f, forward average = %.10f", tt, got, avg)
	}
}

func TestDiscount(t *testing.T) {
	t.Parallel()

	p := refParams()
	if got := p.Discount(0); got != 1.0 {
		t.Fatalf("Discount(0) = %v, want 1", got)
	}
	tt := 2.5
	want := math.Exp(-p.Zero(tt) * tt)
	if got := p.Discount(tt); math.Abs(got-want) > 1e-15 {
		t.Fatalf("Discount(%g) = %.15f, want %.15f", tt, got, want)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := refParams().Validate(); err != nil {
		t.Fatalf("Validate on valid params: %v", err)
	}

	bad := []nss.Parameters{
		{Tau1: 0, Tau2: 1},
		{Tau1: 1, Tau2: 0},
		{Tau1: -1, Tau2: 1},
		{Tau1: math.NaN(), Tau2: 1},
	}
	for _, p := range bad {
		if err := p.Validate(); err != nss.ErrInvalidTau {
			t.Fatalf("Validate(%+v) = %v, want ErrInvalidTau", p, err)
		}
	}
}

func TestFromSlice_RoundTrip(t *testing.T) {
	t.Parallel()

	want := refParams()
	got, err := nss.FromSlice(want.Slice())
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}

	if _, err := nss.FromSlice([]float64{1, 2, 3}); err == nil {
		t.Fatalf("FromSlice with 3 values should fail")
	}
}
