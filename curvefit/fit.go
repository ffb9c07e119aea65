package curvefit

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/tsylab/gswfit/nss"
	"github.com/tsylab/gswfit/treasury"
)

// ErrInsufficientData is returned when fewer eligible securities remain
// after filtering than the six-parameter fit requires. The optimization is
// not attempted: with fewer constraints than free parameters the fit is
// numerically unstable.
var ErrInsufficientData = errors.New("curvefit: too few eligible securities for a six-parameter fit")

// MinSecurities is the smallest eligible cross-section accepted for a fit,
// one constraint per free parameter.
const MinSecurities = 6

// Optimizer budget and tolerance. Non-convergence within the budget is
// reported through Result.Converged, not as an error.
const (
	maxIterations  = 10000
	maxEvaluations = 50000
	fitTolerance   = 1e-10
)

// Result is the outcome of fitting one quote date.
type Result struct {
	QuoteDate time.Time
	Params    nss.Parameters
	Objective float64
	Converged bool
	Status    string
	Eligible  int
}

// Fit estimates NSS parameters for one quote date by minimizing the
// duration-weighted pricing objective over the eligible cross-section,
// starting from the supplied initial guess. The returned parameters are a
// local optimum; the methodology accepts this and relies on the quality of
// the starting point.
func Fit(quoteDate time.Time, cross []treasury.Security, initial nss.Parameters) (Result, error) {
	fr := treasury.Filter(quoteDate, cross)
	if len(fr.Eligible) < MinSecurities {
		return Result{}, fmt.Errorf("Fit %s: %d eligible securities: %w",
			quoteDate.Format("2006-01-02"), len(fr.Eligible), ErrInsufficientData)
	}

	cf, err := treasury.BuildCashflows(quoteDate, fr.Eligible)
	if err != nil {
		return Result{}, fmt.Errorf("Fit %s: %w", quoteDate.Format("2006-01-02"), err)
	}

	observed := make([]float64, len(fr.Eligible))
	for i, s := range fr.Eligible {
		observed[i] = s.Price
	}

	problem := optimize.Problem{
		Func: Objective(cf, observed, fr.Weights),
	}
	settings := &optimize.Settings{
		MajorIterations: maxIterations,
		FuncEvaluations: maxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   fitTolerance,
			Iterations: 1000,
		},
	}

	res, err := optimize.Minimize(problem, initial.Slice(), settings, &optimize.NelderMead{})
	if res == nil {
		return Result{}, fmt.Errorf("Fit %s: optimizer failed: %w",
			quoteDate.Format("2006-01-02"), err)
	}

	params, perr := nss.FromSlice(res.X)
	if perr != nil {
		return Result{}, fmt.Errorf("Fit %s: %w", quoteDate.Format("2006-01-02"), perr)
	}

	out := Result{
		QuoteDate: quoteDate,
		Params:    params,
		Objective: res.F,
		Converged: err == nil && res.Status == optimize.FunctionConvergence,
		Status:    res.Status.String(),
		Eligible:  len(fr.Eligible),
	}
	if verr := params.Validate(); verr != nil {
		// The penalty normally keeps the simplex inside the domain; if the
		// best vertex still landed outside, the fit is unusable.
		return out, fmt.Errorf("Fit %s: %w", quoteDate.Format("2006-01-02"), verr)
	}
	return out, nil
}
