package crsp

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tsylab/gswfit/treasury"
)

// Column aliases accepted by the CSV adapter. CRSP exports carry the raw
// table names; hand-built fixtures tend to use readable ones. Matching is
// case-insensitive on the first alias hit.
var columnAliases = map[string][]string{
	"cusip":      {"tcusip", "cusip"},
	"quote_date": {"caldt", "quote_date", "quotedate"},
	"issue_date": {"tdatdt", "issue_date", "issuedate"},
	"maturity":   {"tmatdt", "maturity", "maturity_date"},
	"coupon":     {"tcouprt", "coupon", "coupon_rate"},
	"price":      {"price", "mid_accrued"},
	"first_call": {"tfcaldt", "first_call", "first_call_date"},
	"itype":      {"itype", "type"},
	"amount_out": {"tdtotout", "amount_out", "amount_outstanding"},
}

// requiredColumns must resolve to a header or the file is rejected with a
// treasury.SchemaError before any row is parsed.
var requiredColumns = []string{"cusip", "quote_date", "issue_date", "maturity", "coupon", "price"}

type columnIndex map[string]int

func resolveColumns(header []string) (columnIndex, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	idx := make(columnIndex)
	for canonical, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := byName[a]; ok {
				idx[canonical] = i
				break
			}
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &treasury.SchemaError{Column: col}
		}
	}
	return idx, nil
}

func (idx columnIndex) get(record []string, col string) (string, bool) {
	i, ok := idx[col]
	if !ok || i >= len(record) {
		return "", false
	}
	v := strings.TrimSpace(record[i])
	return v, v != "" && !strings.EqualFold(v, "na")
}

// ReadCSV parses a CRSP-style security table into quote records. Rows for
// every quote date in the file are returned; group them with
// curvefit.NewSliceSource for sweeping.
func ReadCSV(r io.Reader) ([]treasury.Security, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("crsp.ReadCSV: header: %w", err)
	}
	idx, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var out []treasury.Security
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("crsp.ReadCSV: line %d: %w", line+1, err)
		}
		line++

		sec, err := parseRow(idx, record)
		if err != nil {
			return nil, fmt.Errorf("crsp.ReadCSV: line %d: %w", line, err)
		}
		out = append(out, sec)
	}
	return out, nil
}

func parseRow(idx columnIndex, record []string) (treasury.Security, error) {
	var sec treasury.Security

	v, _ := idx.get(record, "cusip")
	sec.CUSIP = v

	var err error
	if sec.QuoteDate, err = parseDate(idx, record, "quote_date"); err != nil {
		return sec, err
	}
	if sec.IssueDate, err = parseDate(idx, record, "issue_date"); err != nil {
		return sec, err
	}
	if sec.MaturityDate, err = parseDate(idx, record, "maturity"); err != nil {
		return sec, err
	}
	if sec.CouponRate, err = parseFloat(idx, record, "coupon"); err != nil {
		return sec, err
	}
	if sec.Price, err = parseFloat(idx, record, "price"); err != nil {
		return sec, err
	}

	sec.Type = treasury.Bond
	if raw, ok := idx.get(record, "itype"); ok {
		if err := applyType(&sec, raw); err != nil {
			return sec, err
		}
	} else if sec.OriginalMaturityYears() <= 10 {
		sec.Type = treasury.Note
	}

	if raw, ok := idx.get(record, "first_call"); ok {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return sec, fmt.Errorf("first_call: %w", err)
		}
		sec.Callable = true
		sec.FirstCallDate = d
	}
	if raw, ok := idx.get(record, "amount_out"); ok {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return sec, fmt.Errorf("amount_out: %w", err)
		}
		sec.AmountOut = f
	}
	return sec, nil
}

// applyType maps either a CRSP itype code or a readable name onto the
// security type. The callable itype marks callability; the first-call date
// itself comes from the call column when present.
func applyType(sec *treasury.Security, raw string) error {
	switch strings.ToLower(raw) {
	case "1", "bond", "note":
		// itype 1 covers both; distinguish by original maturity.
		sec.Type = treasury.Bond
		if sec.OriginalMaturityYears() <= 10 {
			sec.Type = treasury.Note
		}
	case "2", "callable":
		sec.Type = treasury.Bond
		sec.Callable = true
	case "bill":
		sec.Type = treasury.Bill
	default:
		return fmt.Errorf("itype: unrecognized value %q", raw)
	}
	return nil
}

func parseDate(idx columnIndex, record []string, col string) (time.Time, error) {
	raw, ok := idx.get(record, col)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: empty value", col)
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", col, err)
	}
	return d, nil
}

func parseFloat(idx columnIndex, record []string, col string) (float64, error) {
	raw, ok := idx.get(record, col)
	if !ok {
		return 0, fmt.Errorf("%s: empty value", col)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	return f, nil
}
