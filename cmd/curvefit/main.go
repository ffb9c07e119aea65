// Command curvefit estimates the six-parameter yield curve for a single
// quote date from a JSON cross-section, optionally tabulating model prices
// against a reference parameter set.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tsylab/gswfit/curvefit"
	"github.com/tsylab/gswfit/nss"
	"github.com/tsylab/gswfit/treasury"
)

type fitInput struct {
	QuoteDate  string         `json:"quote_date"`
	Initial    paramsJSON     `json:"initial"`
	Reference  *paramsJSON    `json:"reference,omitempty"`
	Securities []securityJSON `json:"securities"`
}

// paramsJSON carries model parameters in decimals (0.05 == 5%).
type paramsJSON struct {
	Tau1  float64 `json:"tau1"`
	Tau2  float64 `json:"tau2"`
	Beta0 float64 `json:"beta0"`
	Beta1 float64 `json:"beta1"`
	Beta2 float64 `json:"beta2"`
	Beta3 float64 `json:"beta3"`
}

func (p paramsJSON) params() nss.Parameters {
	return nss.Parameters{Tau1: p.Tau1, Tau2: p.Tau2, Beta0: p.Beta0, Beta1: p.Beta1, Beta2: p.Beta2, Beta3: p.Beta3}
}

func fromParams(p nss.Parameters) paramsJSON {
	return paramsJSON{Tau1: p.Tau1, Tau2: p.Tau2, Beta0: p.Beta0, Beta1: p.Beta1, Beta2: p.Beta2, Beta3: p.Beta3}
}

type securityJSON struct {
	CUSIP         string  `json:"cusip"`
	MaturityDate  string  `json:"maturity_date"`
	IssueDate     string  `json:"issue_date"`
	CouponRate    float64 `json:"coupon_rate"`
	Price         float64 `json:"price"`
	Type          string  `json:"type"` // bill, note, bond
	FirstCallDate string  `json:"first_call_date,omitempty"`
}

type fitOutput struct {
	QuoteDate  string                `json:"quote_date"`
	Params     paramsJSON            `json:"params"`
	Objective  float64               `json:"objective"`
	Converged  bool                  `json:"converged"`
	Eligible   int                   `json:"eligible"`
	Comparison []curvefit.Comparison `json:"comparison,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "JSON input path (reads stdin if omitted)")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Fprintln(os.Stderr, "Usage: curvefit -input <path>")
		fmt.Fprintln(os.Stderr, "Fit a Svensson yield curve to one quote date's cross-section.")
		return
	}

	raw, err := readInput(strings.TrimSpace(*inputPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read input:", err)
		os.Exit(2)
	}

	var in fitInput
	if err := json.Unmarshal(bytes.TrimSpace(raw), &in); err != nil {
		fmt.Fprintln(os.Stderr, "parse input:", err)
		os.Exit(2)
	}

	out, err := process(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	b, _ := json.Marshal(out)
	fmt.Println(string(b))
}

func process(in fitInput) (*fitOutput, error) {
	quoteDate, err := time.Parse("2006-01-02", in.QuoteDate)
	if err != nil {
		return nil, fmt.Errorf("invalid quote_date: %v", err)
	}

	cross := make([]treasury.Security, 0, len(in.Securities))
	for _, s := range in.Securities {
		sec, err := toSecurity(quoteDate, s)
		if err != nil {
			return nil, fmt.Errorf("security %s: %v", s.CUSIP, err)
		}
		cross = append(cross, sec)
	}

	res, err := curvefit.Fit(quoteDate, cross, in.Initial.params())
	if err != nil {
		return nil, err
	}

	out := &fitOutput{
		QuoteDate: in.QuoteDate,
		Params:    fromParams(res.Params),
		Objective: res.Objective,
		Converged: res.Converged,
		Eligible:  res.Eligible,
	}
	if in.Reference != nil {
		table, err := curvefit.Compare(quoteDate, cross, res.Params, in.Reference.params())
		if err != nil {
			return nil, err
		}
		out.Comparison = table
	}
	return out, nil
}

func toSecurity(quoteDate time.Time, s securityJSON) (treasury.Security, error) {
	sec := treasury.Security{
		CUSIP:      s.CUSIP,
		QuoteDate:  quoteDate,
		CouponRate: s.CouponRate,
		Price:      s.Price,
	}

	var err error
	if sec.MaturityDate, err = time.Parse("2006-01-02", s.MaturityDate); err != nil {
		return sec, fmt.Errorf("invalid maturity_date: %v", err)
	}
	if sec.IssueDate, err = time.Parse("2006-01-02", s.IssueDate); err != nil {
		return sec, fmt.Errorf("invalid issue_date: %v", err)
	}

	switch strings.ToLower(s.Type) {
	case "bill":
		sec.Type = treasury.Bill
	case "note", "":
		sec.Type = treasury.Note
	case "bond":
		sec.Type = treasury.Bond
	default:
		return sec, fmt.Errorf("unsupported type %q", s.Type)
	}

	if s.FirstCallDate != "" {
		if sec.FirstCallDate, err = time.Parse("2006-01-02", s.FirstCallDate); err != nil {
			return sec, fmt.Errorf("invalid first_call_date: %v", err)
		}
		sec.Callable = true
	}
	return sec, nil
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}
