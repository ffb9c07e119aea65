package curvefit_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tsylab/gswfit/curvefit"
	"github.com/tsylab/gswfit/nss"
	"github.com/tsylab/gswfit/treasury"
	"github.com/tsylab/gswfit/utils"
)

// syntheticCross builds a cross-section whose observed prices are exact
// model prices under truth, so a successful fit must reproduce them. Issue
// dates predate 1980 and original maturities avoid the 20-year bucket, so
// every security survives the eligibility filter.
func syntheticCross(t *testing.T, quoteDate time.Time, truth nss.Parameters) []treasury.Security {
	t.Helper()

	maturities := []string{
		"2010-09-15", "2011-03-15", "2011-11-15", "2012-08-15",
		"2013-05-15", "2014-02-15", "2015-08-15", "2017-02-15",
		"2019-05-15", "2022-11-15", "2025-02-15",
	}
	coupons := []float64{4, 4.5, 0, 5, 3.5, 4, 6, 5.5, 4.75, 6.25, 5}
	issueDate := utils.DateParser("1975-06-15")

	secs := make([]treasury.Security, len(maturities))
	for i := range maturities {
		secs[i] = treasury.Security{
			CUSIP:        string(rune('A' + i)),
			QuoteDate:    quoteDate,
			MaturityDate: utils.DateParser(maturities[i]),
			IssueDate:    issueDate,
			CouponRate:   coupons[i],
			Type:         treasury.Bond,
		}
	}

	cf, err := treasury.BuildCashflows(quoteDate, secs)
	if err != nil {
		t.Fatalf("BuildCashflows: %v", err)
	}
	prices := curvefit.Prices(cf, truth)
	for i := range secs {
		secs[i].Price = prices[i]
	}
	return secs
}

func TestFit_RecoversSyntheticCurve(t *testing.T) {
	t.Parallel()

	quoteDate := utils.DateParser("2010-01-04")
	truth := nss.Parameters{
		Tau1:  1.2,
		Tau2:  9.0,
		Beta0: 0.052,
		Beta1: -0.015,
		Beta2: 0.012,
		Beta3: 0.025,
	}
	cross := syntheticCross(t, quoteDate, truth)

	initial := nss.Parameters{
		Tau1:  1.6,
		Tau2:  7.0,
		Beta0: 0.04,
		Beta1: -0.005,
		Beta2: 0.02,
		Beta3: 0.01,
	}

	res, err := curvefit.Fit(quoteDate, cross, initial)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if res.Eligible != len(cross) {
		t.Fatalf("eligible = %d, want %d", res.Eligible, len(cross))
	}
	if err := res.Params.Validate(); err != nil {
		t.Fatalf("fitted params invalid: %v", err)
	}

	// Observed prices are exact model prices under truth, so the fitted
	// curve must reprice every security within the published tolerances.
	table, err := curvefit.Compare(quoteDate, cross, res.Params, truth)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	for _, row := range table {
		if math.Abs(row.ModelVsObserved) >= 0.05 {
			t.Fatalf("%s: model vs observed = %v, want |.| < 0.05", row.CUSIP, row.ModelVsObserved)
		}
		if math.Abs(row.ModelVsReference) >= 0.02 {
			t.Fatalf("%s: model vs reference = %v, want |.| < 0.02", row.CUSIP, row.ModelVsReference)
		}
	}
}

func TestFit_FromPublishedInitialGuess(t *testing.T) {
	t.Parallel()

	// The replication's canonical starting point; the synthetic truth sits
	// in the same parameter scale so the local optimum is reachable.
	initial := nss.Parameters{
		Tau1:  0.989721,
		Tau2:  9.955324,
		Beta0: 3.685087,
		Beta1: 1.579927,
		Beta2: 3.637107,
		Beta3: 9.814584,
	}
	truth := nss.Parameters{
		Tau1:  1.05,
		Tau2:  9.5,
		Beta0: 3.55,
		Beta1: 1.45,
		Beta2: 3.70,
		Beta3: 9.60,
	}

	quoteDate := utils.DateParser("2010-01-04")
	maturities := []string{
		"2010-06-15", "2010-09-15", "2010-12-15", "2011-03-15",
		"2011-06-15", "2011-09-15", "2011-12-15", "2012-03-15",
	}
	issueDate := utils.DateParser("1975-06-15")
	secs := make([]treasury.Security, len(maturities))
	for i := range maturities {
		secs[i] = treasury.Security{
			CUSIP:        string(rune('A' + i)),
			QuoteDate:    quoteDate,
			MaturityDate: utils.DateParser(maturities[i]),
			IssueDate:    issueDate,
			CouponRate:   5,
			Type:         treasury.Bond,
		}
	}
	cf, err := treasury.BuildCashflows(quoteDate, secs)
	if err != nil {
		t.Fatalf("BuildCashflows: %v", err)
	}
	prices := curvefit.Prices(cf, truth)
	for i := range secs {
		secs[i].Price = prices[i]
	}

	res, err := curvefit.Fit(quoteDate, secs, initial)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	table, err := curvefit.Compare(quoteDate, secs, res.Params, truth)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	for _, row := range table {
		if math.Abs(row.ModelVsObserved) >= 0.05 {
			t.Fatalf("%s: model vs observed = %v, want |.| < 0.05", row.CUSIP, row.ModelVsObserved)
		}
	}
}

func TestFit_InsufficientData(t *testing.T) {
	t.Parallel()

	quoteDate := utils.DateParser("2010-01-04")
	cross := []treasury.Security{
		{
			CUSIP:        "ONLY",
			QuoteDate:    quoteDate,
			MaturityDate: utils.DateParser("2015-01-04"),
			IssueDate:    utils.DateParser("1975-06-15"),
			CouponRate:   5,
			Price:        100,
			Type:         treasury.Bond,
		},
	}

	_, err := curvefit.Fit(quoteDate, cross, nss.Parameters{Tau1: 1, Tau2: 10, Beta0: 0.05})
	if !errors.Is(err, curvefit.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestFit_EmptyCrossSection(t *testing.T) {
	t.Parallel()

	quoteDate := utils.DateParser("2010-01-04")
	_, err := curvefit.Fit(quoteDate, nil, nss.Parameters{Tau1: 1, Tau2: 10})
	if !errors.Is(err, curvefit.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}
