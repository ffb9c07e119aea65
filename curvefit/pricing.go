// Package curvefit fits the Nelson-Siegel-Svensson curve to a Treasury
// cross-section by minimizing duration-weighted price errors, replicating
// the Gurkaynak-Sack-Wright estimation.
package curvefit

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tsylab/gswfit/nss"
	"github.com/tsylab/gswfit/treasury"
)

// discountVector evaluates the discount curve once per payment column.
func discountVector(cf *treasury.CashflowMatrix, p nss.Parameters) *mat.VecDense {
	d := mat.NewVecDense(len(cf.Years), nil)
	for j, t := range cf.Years {
		d.SetVec(j, p.Discount(t))
	}
	return d
}

// Prices returns the model-implied price of each security: the row-wise dot
// product of the cashflow matrix with the discount vector. It is
// deterministic and side-effect-free; the optimizer calls it on every
// objective evaluation and the comparator reuses it on the fitted result.
func Prices(cf *treasury.CashflowMatrix, p nss.Parameters) []float64 {
	d := discountVector(cf, p)
	out := mat.NewVecDense(cf.NumSecurities(), nil)
	out.MulVec(cf.Amounts, d)
	return out.RawVector().Data
}

// PricesAndDurations returns model prices together with Macaulay durations,
// sharing one discount-vector evaluation.
//
// Duration is the discounted-cashflow-weighted average time to payment:
//
//	D_i = sum_j t_j * cf_ij * d_j / price_i
func PricesAndDurations(cf *treasury.CashflowMatrix, p nss.Parameters) (prices, durations []float64) {
	d := discountVector(cf, p)

	n := cf.NumSecurities()
	priceVec := mat.NewVecDense(n, nil)
	priceVec.MulVec(cf.Amounts, d)

	// Time-weighted discounted cashflows: A * (t .* d).
	td := mat.NewVecDense(len(cf.Years), nil)
	for j, t := range cf.Years {
		td.SetVec(j, t*d.AtVec(j))
	}
	weightedVec := mat.NewVecDense(n, nil)
	weightedVec.MulVec(cf.Amounts, td)

	prices = priceVec.RawVector().Data
	durations = make([]float64, n)
	for i := 0; i < n; i++ {
		if prices[i] > 0 {
			durations[i] = weightedVec.AtVec(i) / prices[i]
		}
	}
	return prices, durations
}
