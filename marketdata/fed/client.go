package fed

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// yieldCurveURL is the Board's published nominal curve, updated daily.
const yieldCurveURL = "https://www.federalreserve.gov/data/yield-curve-tables/feds200628.csv"

// Client downloads the published curve file.
type Client struct {
	http *resty.Client
	url  string
}

// NewClient builds a download client. Pass an empty url to use the Board's
// published location.
func NewClient(url string) *Client {
	if url == "" {
		url = yieldCurveURL
	}
	return &Client{
		http: resty.New().
			SetRetryCount(3).
			SetRetryWaitTime(2 * time.Second).
			SetTimeout(60 * time.Second),
		url: url,
	}
}

// PullYieldCurve downloads and parses the published parameter history.
func (c *Client) PullYieldCurve(ctx context.Context) (*ReferenceSet, error) {
	resp, err := c.http.R().SetContext(ctx).Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("fed.PullYieldCurve: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fed.PullYieldCurve: unexpected status %d", resp.StatusCode())
	}
	return ParseCSV(bytes.NewReader(resp.Body()))
}
