package treasury

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tsylab/gswfit/utils"
)

// CouponDates returns the future semiannual payment dates for a security,
// generated by walking backward from the maturity date until reaching (not
// including) the quote date. The result is ascending and always contains the
// maturity date.
func CouponDates(quoteDate, maturityDate time.Time) []time.Time {
	var dates []time.Time
	for d := maturityDate; d.After(quoteDate); d = utils.AddMonth(d, -6) {
		dates = append(dates, d)
	}
	// Reverse into ascending order.
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}
	return dates
}

// CashflowMatrix is the dense (security x payment date) matrix of promised
// cash amounts for one quote date.
//
// Rows follow the input security order; columns are the sorted union of all
// future payment dates across the securities. Years[j] is the ACT/365 year
// fraction from the quote date to Dates[j]. Row i sums to the security's
// total remaining coupons plus principal.
type CashflowMatrix struct {
	QuoteDate time.Time
	CUSIPs    []string
	Dates     []time.Time
	Years     []float64
	Amounts   *mat.Dense
}

// BuildCashflows constructs the cashflow matrix for the given securities.
//
// Each payment date receives face * couponRate/2, and the maturity date
// additionally receives the face value. Zero-coupon instruments contribute a
// single terminal cashflow of the face value.
func BuildCashflows(quoteDate time.Time, securities []Security) (*CashflowMatrix, error) {
	if len(securities) == 0 {
		return nil, fmt.Errorf("BuildCashflows: no securities")
	}

	perSecurity := make([][]time.Time, len(securities))
	union := make(map[time.Time]bool)
	for i, s := range securities {
		if !s.MaturityDate.After(quoteDate) {
			return nil, fmt.Errorf("BuildCashflows: %s matured on or before quote date %s",
				s.CUSIP, quoteDate.Format("2006-01-02"))
		}
		dates := CouponDates(quoteDate, s.MaturityDate)
		if s.CouponRate == 0 {
			dates = dates[len(dates)-1:]
		}
		perSecurity[i] = dates
		for _, d := range dates {
			union[d] = true
		}
	}

	columns := make([]time.Time, 0, len(union))
	for d := range union {
		columns = append(columns, d)
	}
	utils.SortDates(columns)

	index := make(map[time.Time]int, len(columns))
	years := make([]float64, len(columns))
	for j, d := range columns {
		index[d] = j
		years[j] = utils.Years(quoteDate, d)
	}

	amounts := mat.NewDense(len(securities), len(columns), nil)
	cusips := make([]string, len(securities))
	for i, s := range securities {
		cusips[i] = s.CUSIP
		coupon := FaceValue * s.CouponRate / 100.0 / 2.0
		for _, d := range perSecurity[i] {
			j := index[d]
			amount := coupon
			if d.Equal(s.MaturityDate) {
				amount += FaceValue
			}
			amounts.Set(i, j, amount)
		}
	}

	return &CashflowMatrix{
		QuoteDate: quoteDate,
		CUSIPs:    cusips,
		Dates:     columns,
		Years:     years,
		Amounts:   amounts,
	}, nil
}

// NumSecurities is the number of rows in the matrix.
func (m *CashflowMatrix) NumSecurities() int {
	r, _ := m.Amounts.Dims()
	return r
}
