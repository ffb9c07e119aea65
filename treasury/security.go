// Package treasury models U.S. Treasury security cross-sections: the
// canonical quote record, the GSW eligibility filter, and the cashflow
// matrix consumed by the curve-fitting engine.
package treasury

import (
	"fmt"
	"math"
	"time"

	"github.com/tsylab/gswfit/utils"
)

// FaceValue is the par amount all cashflows are quoted against.
const FaceValue = 100.0

// SecurityType classifies an issue by its issuance type, not by remaining
// maturity. Bills never pay coupons; notes and bonds pay semiannually.
type SecurityType int

const (
	Bill SecurityType = iota
	Note
	Bond
)

func (t SecurityType) String() string {
	switch t {
	case Bill:
		return "bill"
	case Note:
		return "note"
	case Bond:
		return "bond"
	default:
		return fmt.Sprintf("SecurityType(%d)", int(t))
	}
}

// Security is the canonical quote record for one issue on one quote date.
//
// Records are produced once at ingestion by a schema adapter (see
// marketdata/crsp) and are read-only to the fitting engine. Price is the
// quoted mid plus accrued interest, per 100 face. CouponRate is the annual
// coupon in percent (6 == 6%).
type Security struct {
	CUSIP         string
	QuoteDate     time.Time
	MaturityDate  time.Time
	IssueDate     time.Time
	CouponRate    float64
	Price         float64
	Type          SecurityType
	Callable      bool
	FirstCallDate time.Time // zero when not callable
	AmountOut     float64   // total amount outstanding, optional
}

// YearsToMaturity is the ACT/365 year fraction from quote to maturity.
func (s Security) YearsToMaturity() float64 {
	return utils.Years(s.QuoteDate, s.MaturityDate)
}

// OriginalMaturityYears is the issue's original maturity rounded to whole
// years, the bucket used by the on-the-run ranking.
func (s Security) OriginalMaturityYears() int {
	return int(math.Round(utils.Years(s.IssueDate, s.MaturityDate)))
}

// SchemaError reports a required input column missing from a security table.
// It is raised at ingestion, before any numerical work begins.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("treasury: required column %q missing from security table", e.Column)
}
