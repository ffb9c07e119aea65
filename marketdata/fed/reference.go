// Package fed pulls and parses the Federal Reserve's published nominal yield
// curve file (feds200628), the reference the fitted parameters are validated
// against.
package fed

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tsylab/gswfit/nss"
)

// Record is one published parameter row. Betas are quoted in percentage
// points, as the Fed publishes them; taus are in years.
type Record struct {
	Date  time.Time
	Beta0 float64
	Beta1 float64
	Beta2 float64
	Beta3 float64
	Tau1  float64
	Tau2  float64
}

// Parameters converts the published quote convention into model units: betas
// move from percentage points to decimals, taus pass through.
func (r Record) Parameters() nss.Parameters {
	return nss.Parameters{
		Tau1:  r.Tau1,
		Tau2:  r.Tau2,
		Beta0: r.Beta0 / 100,
		Beta1: r.Beta1 / 100,
		Beta2: r.Beta2 / 100,
		Beta3: r.Beta3 / 100,
	}
}

// ReferenceSet holds the published history, sorted by date.
type ReferenceSet struct {
	records []Record
}

// ParamsOn returns the published parameters for an exact date.
func (rs *ReferenceSet) ParamsOn(date time.Time) (nss.Parameters, bool) {
	i := sort.Search(len(rs.records), func(i int) bool {
		return !rs.records[i].Date.Before(date)
	})
	if i < len(rs.records) && rs.records[i].Date.Equal(date) {
		return rs.records[i].Parameters(), true
	}
	return nss.Parameters{}, false
}

func (rs *ReferenceSet) Len() int { return len(rs.records) }

// requiredFields are the header names carrying the six model parameters in
// the published file.
var requiredFields = []string{"BETA0", "BETA1", "BETA2", "BETA3", "TAU1", "TAU2"}

// ParseCSV reads the published file. The download carries a free-text
// preamble of varying length before the header row, so lines are skipped
// until one starts with "Date". Rows with any parameter reported as NA
// (weekends, pre-1980 dates without the second hump) are dropped.
func ParseCSV(r io.Reader) (*ReferenceSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var header []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("fed.ParseCSV: no header row found")
		}
		if err != nil {
			return nil, fmt.Errorf("fed.ParseCSV: %w", err)
		}
		if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "Date") {
			header = row
			break
		}
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, f := range requiredFields {
		if _, ok := idx[f]; !ok {
			return nil, fmt.Errorf("fed.ParseCSV: column %s missing", f)
		}
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fed.ParseCSV: %w", err)
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("fed.ParseCSV: date %q: %w", row[0], err)
		}

		vals := make([]float64, len(requiredFields))
		ok := true
		for i, f := range requiredFields {
			if idx[f] >= len(row) {
				ok = false
				break
			}
			cell := strings.TrimSpace(row[idx[f]])
			if cell == "" || strings.EqualFold(cell, "NA") {
				ok = false
				break
			}
			if vals[i], err = strconv.ParseFloat(cell, 64); err != nil {
				return nil, fmt.Errorf("fed.ParseCSV: %s on %s: %w", f, row[0], err)
			}
		}
		if !ok {
			continue
		}

		records = append(records, Record{
			Date:  date,
			Beta0: vals[0],
			Beta1: vals[1],
			Beta2: vals[2],
			Beta3: vals[3],
			Tau1:  vals[4],
			Tau2:  vals[5],
		})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return &ReferenceSet{records: records}, nil
}
