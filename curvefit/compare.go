package curvefit

import (
	"fmt"
	"time"

	"github.com/tsylab/gswfit/nss"
	"github.com/tsylab/gswfit/treasury"
)

// Comparison is one row of the validation table: the fitted model price, a
// reference model's price off the same cashflow matrix, the observed market
// price, and the two fractional differences.
type Comparison struct {
	CUSIP            string  `json:"cusip"`
	ModelPrice       float64 `json:"model_price"`
	ReferencePrice   float64 `json:"reference_price"`
	ObservedPrice    float64 `json:"observed_price"`
	ModelVsObserved  float64 `json:"model_vs_observed"`  // (model - observed) / observed
	ModelVsReference float64 `json:"model_vs_reference"` // (model - reference) / reference
}

// Compare prices the eligible cross-section under both the fitted and the
// reference parameters and tabulates the discrepancies per security.
//
// Reference parameters must already be in decimals (see marketdata/fed for
// the percentage-point conversion of the published values). Rows follow the
// filter's eligible order, the same order the fit itself saw.
func Compare(quoteDate time.Time, cross []treasury.Security, fitted, reference nss.Parameters) ([]Comparison, error) {
	if err := fitted.Validate(); err != nil {
		return nil, fmt.Errorf("Compare: fitted params: %w", err)
	}
	if err := reference.Validate(); err != nil {
		return nil, fmt.Errorf("Compare: reference params: %w", err)
	}

	fr := treasury.Filter(quoteDate, cross)
	if len(fr.Eligible) == 0 {
		return nil, fmt.Errorf("Compare: no eligible securities on %s", quoteDate.Format("2006-01-02"))
	}
	cf, err := treasury.BuildCashflows(quoteDate, fr.Eligible)
	if err != nil {
		return nil, fmt.Errorf("Compare: %w", err)
	}

	modelPrices := Prices(cf, fitted)
	refPrices := Prices(cf, reference)

	out := make([]Comparison, len(fr.Eligible))
	for i, s := range fr.Eligible {
		out[i] = Comparison{
			CUSIP:            s.CUSIP,
			ModelPrice:       modelPrices[i],
			ReferencePrice:   refPrices[i],
			ObservedPrice:    s.Price,
			ModelVsObserved:  (modelPrices[i] - s.Price) / s.Price,
			ModelVsReference: (modelPrices[i] - refPrices[i]) / refPrices[i],
		}
	}
	return out, nil
}
