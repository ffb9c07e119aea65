package main

import (
	"fmt"
	"log"

	"github.com/tsylab/gswfit/curvefit"
	"github.com/tsylab/gswfit/nss"
	"github.com/tsylab/gswfit/treasury"
	"github.com/tsylab/gswfit/utils"
)

func main() {
	quoteDate := utils.DateParser("2010-01-04")

	// A small cross-section priced exactly off a known curve, so the fit
	// should recover it.
	truth := nss.Parameters{
		Tau1:  1.2,
		Tau2:  9.0,
		Beta0: 0.052,
		Beta1: -0.015,
		Beta2: 0.012,
		Beta3: 0.025,
	}

	maturities := []string{
		"2010-09-15", "2011-03-15", "2011-11-15", "2012-08-15",
		"2013-05-15", "2014-02-15", "2015-08-15", "2017-02-15",
		"2019-05-15", "2022-11-15", "2025-02-15",
	}
	coupons := []float64{4, 4.5, 0, 5, 3.5, 4, 6, 5.5, 4.75, 6.25, 5}

	cross := make([]treasury.Security, len(maturities))
	for i := range maturities {
		cross[i] = treasury.Security{
			CUSIP:        fmt.Sprintf("DEMO%02d", i),
			QuoteDate:    quoteDate,
			MaturityDate: utils.DateParser(maturities[i]),
			IssueDate:    utils.DateParser("1975-06-15"),
			CouponRate:   coupons[i],
			Type:         treasury.Bond,
		}
	}
	cf, err := treasury.BuildCashflows(quoteDate, cross)
	if err != nil {
		log.Fatal(err)
	}
	for i, p := range curvefit.Prices(cf, truth) {
		cross[i].Price = p
	}

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
		log.Fatal(err)
	}

	fmt.Printf("quote date: %s  eligible: %d  converged: %v  objective: %.3e\n",
		quoteDate.Format("2006-01-02"), res.Eligible, res.Converged, res.Objective)
	fmt.Printf("tau1=%.4f tau2=%.4f beta0=%.5f beta1=%.5f beta2=%.5f beta3=%.5f\n",
		res.Params.Tau1, res.Params.Tau2,
		res.Params.Beta0, res.Params.Beta1, res.Params.Beta2, res.Params.Beta3)

	table, err := curvefit.Compare(quoteDate, cross, res.Params, truth)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("\ncusip    model     observed  vs_obs      vs_ref")
	for _, row := range table {
		fmt.Printf("%-8s %9.4f %9.4f %+.2e  %+.2e\n",
			row.CUSIP, row.ModelPrice, row.ObservedPrice, row.ModelVsObserved, row.ModelVsReference)
	}

	for _, t := range []float64{0.25, 1, 2, 5, 10, 15} {
		fmt.Printf("zero(%5.2fy) = %.4f%%\n", t, 100*res.Params.Zero(t))
	}
}
