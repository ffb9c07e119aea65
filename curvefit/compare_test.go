package curvefit_test

import (
	"math"
	"testing"

	"github.com/tsylab/gswfit/curvefit"
	"github.com/tsylab/gswfit/nss"
	"github.com/tsylab/gswfit/treasury"
	"github.com/tsylab/gswfit/utils"
)

func TestCompare_Columns(t *testing.T) {
	t.Parallel()

	quoteDate := utils.DateParser("2010-01-04")
	truth := testParams()
	cross := syntheticCross(t, quoteDate, truth)

	// Compare truth against a slightly different reference curve.
	reference := truth
	reference.Beta0 += 0.002

	table, err := curvefit.Compare(quoteDate, cross, truth, reference)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(table) != len(cross) {
		t.Fatalf("table rows = %d, want %d", len(table), len(cross))
	}

	for i, row := range table {
		if row.CUSIP != cross[i].CUSIP {
			t.Fatalf("row %d order mismatch: %s vs %s", i, row.CUSIP, cross[i].CUSIP)
		}
		// Observed prices were generated under truth, so the fitted column
		// matches observed exactly and differs from the bumped reference.
		if math.Abs(row.ModelVsObserved) > 1e-12 {
			t.Fatalf("%s: model vs observed = %v, want 0", row.CUSIP, row.ModelVsObserved)
		}
		if row.ModelVsReference == 0 {
			t.Fatalf("%s: model vs reference should be nonzero", row.CUSIP)
		}
		wantFrac := (row.ModelPrice - row.ReferencePrice) / row.ReferencePrice
		if math.Abs(row.ModelVsReference-wantFrac) > 1e-15 {
			t.Fatalf("%s: fraction mismatch: %v vs %v", row.CUSIP, row.ModelVsReference, wantFrac)
		}
		// A higher reference level rate means lower reference prices.
		if row.ReferencePrice >= row.ModelPrice {
			t.Fatalf("%s: reference price %v should be below model price %v",
				row.CUSIP, row.ReferencePrice, row.ModelPrice)
		}
	}
}

func TestCompare_RejectsInvalidParams(t *testing.T) {
	t.Parallel()

	quoteDate := utils.DateParser("2010-01-04")
	cross := syntheticCross(t, quoteDate, testParams())

	bad := nss.Parameters{Tau1: 0, Tau2: 10}
	if _, err := curvefit.Compare(quoteDate, cross, bad, testParams()); err == nil {
		t.Fatalf("expected error for invalid fitted params")
	}
	if _, err := curvefit.Compare(quoteDate, cross, testParams(), bad); err == nil {
		t.Fatalf("expected error for invalid reference params")
	}
}

func TestCompare_NoEligible(t *testing.T) {
	t.Parallel()

	quoteDate := utils.DateParser("2010-01-04")
	var empty []treasury.Security
	if _, err := curvefit.Compare(quoteDate, empty, testParams(), testParams()); err == nil {
		t.Fatalf("expected error for empty cross-section")
	}
}
