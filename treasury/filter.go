package treasury

import (
	"sort"
	"time"

	"github.com/tsylab/gswfit/utils"
)

// GSW eligibility boundaries.
var (
	// onTheRunCutoff: issues from 1980 onward are subject to the
	// on-the-run / first off-the-run exclusion.
	onTheRunCutoff = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

	// twentyYearDecayStart..End: 20-year bonds carry a linearly decaying
	// objective weight over the year ending January 2, 1996.
	twentyYearDecayStart = time.Date(1995, time.January, 2, 0, 0, 0, 0, time.UTC)
	twentyYearDecayEnd   = time.Date(1996, time.January, 2, 0, 0, 0, 0, time.UTC)
)

// canonicalMaturities are the original maturities (in years) with a regular
// auction cycle; the two most recent issues in each bucket are excluded.
var canonicalMaturities = map[int]bool{
	2: true, 3: true, 4: true, 5: true, 7: true, 10: true, 20: true, 30: true,
}

// FilterResult is the eligible subset of a cross-section plus the
// per-security objective weights. Weights[i] belongs to Eligible[i]; it is
// 1.0 except for 20-year bonds inside the decay window.
type FilterResult struct {
	Eligible []Security
	Weights  []float64
}

// Filter applies the GSW eligibility rules to the cross-section for one
// quote date. Records quoted on other dates are ignored. It is a pure
// function of its inputs: applying it twice yields the same eligible set.
//
// Rules, in order:
//  1. exclude issues with less than 3 months to maturity;
//  2. exclude bills, keeping notes and bonds;
//  3. exclude callable issues whose first call date has not passed;
//  4. exclude the on-the-run and first off-the-run issue in each canonical
//     original-maturity bucket, for issues from 1980 onward;
//  5. weight (not exclude) 20-year bonds by the 1995..1996 linear decay,
//     dropping them once the weight reaches zero.
func Filter(quoteDate time.Time, cross []Security) FilterResult {
	var sameDate []Security
	for _, s := range cross {
		if s.QuoteDate.Equal(quoteDate) {
			sameDate = append(sameDate, s)
		}
	}

	runs := runness(sameDate)
	shortCutoff := utils.AddMonth(quoteDate, 3)

	var out FilterResult
	for _, s := range sameDate {
		// Inclusive boundary: maturing exactly on quote + 3 months (EDATE
		// semantics) is still excluded.
		if !s.MaturityDate.After(shortCutoff) {
			continue
		}
		if s.Type == Bill {
			continue
		}
		if s.Callable && s.FirstCallDate.After(quoteDate) {
			continue
		}
		if !s.IssueDate.Before(onTheRunCutoff) &&
			canonicalMaturities[s.OriginalMaturityYears()] &&
			runs[s.CUSIP] <= 1 {
			continue
		}

		w := 1.0
		if s.OriginalMaturityYears() == 20 {
			w = TwentyYearWeight(quoteDate)
			if w == 0 {
				continue
			}
		}

		out.Eligible = append(out.Eligible, s)
		out.Weights = append(out.Weights, w)
	}
	return out
}

// TwentyYearWeight is the GSW objective weight for 20-year original-maturity
// bonds: 1.0 before January 2, 1995, decaying linearly to 0.0 at
// January 2, 1996, and 0.0 afterwards.
func TwentyYearWeight(quoteDate time.Time) float64 {
	switch {
	case quoteDate.Before(twentyYearDecayStart):
		return 1.0
	case !quoteDate.Before(twentyYearDecayEnd):
		return 0.0
	default:
		total := utils.Days(twentyYearDecayStart, twentyYearDecayEnd)
		return utils.Days(quoteDate, twentyYearDecayEnd) / total
	}
}

// runness ranks each issue by recency of issue date within its
// original-maturity bucket: 0 is on-the-run, 1 first off-the-run. Issue-date
// ties break by CUSIP ascending so the ranking is deterministic.
func runness(cross []Security) map[string]int {
	buckets := make(map[int][]Security)
	for _, s := range cross {
		m := s.OriginalMaturityYears()
		buckets[m] = append(buckets[m], s)
	}

	ranks := make(map[string]int, len(cross))
	for _, bucket := range buckets {
		sort.Slice(bucket, func(i, j int) bool {
			if !bucket[i].IssueDate.Equal(bucket[j].IssueDate) {
				return bucket[i].IssueDate.After(bucket[j].IssueDate)
			}
			return bucket[i].CUSIP < bucket[j].CUSIP
		})
		for rank, s := range bucket {
			ranks[s.CUSIP] = rank
		}
	}
	return ranks
}
