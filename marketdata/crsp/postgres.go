// Package crsp loads Treasury quote cross-sections from a CRSP-style daily
// securities table, either over Postgres or from CSV exports. Both paths
// normalize into []treasury.Security so the fitting engine never sees source
// column names.
package crsp

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/tsylab/gswfit/treasury"
)

// itype codes for non-callable and callable coupon issues in the CRSP daily
// file. Bills and flower bonds carry other codes and are never loaded; the
// bill exclusion in treasury.Filter is a second line of defense for CSV
// inputs that carry them anyway.
const (
	itypeNoncallable = 1
	itypeCallable    = 2
)

// Store reads cross-sections from a Postgres mirror of the CRSP consolidated
// daily Treasury table.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("crsp.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("crsp.Open: ping: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// crossSectionQuery joins the daily quote table with the issue master. The
// price is the bid/ask midpoint plus accrued interest, per 100 face, the
// quote convention the objective function expects.
const crossSectionQuery = `
SELECT
    i.tcusip,
    q.caldt,
    i.tdatdt,
    i.tmatdt,
    i.tfcaldt,
    (q.tdbid + q.tdask) / 2 + q.tdaccint AS price,
    i.tcouprt,
    i.itype,
    q.tdtotout
FROM crsp.tfz_dly q
JOIN crsp.tfz_iss i ON i.kytreasno = q.kytreasno AND i.kycrspid = q.kycrspid
WHERE q.caldt = $1
  AND i.itype IN ($2, $3)
  AND q.tdbid IS NOT NULL
  AND q.tdask IS NOT NULL
ORDER BY i.tcusip`

// CrossSection loads every coupon-bearing quote on quoteDate. Callability is
// carried through so the eligibility filter can apply the call rule itself;
// no filtering beyond the itype restriction happens here.
func (s *Store) CrossSection(ctx context.Context, quoteDate time.Time) ([]treasury.Security, error) {
	rows, err := s.db.QueryContext(ctx, crossSectionQuery, quoteDate, itypeNoncallable, itypeCallable)
	if err != nil {
		return nil, fmt.Errorf("crsp.CrossSection: %w", err)
	}
	defer rows.Close()

	var out []treasury.Security
	for rows.Next() {
		var (
			sec       treasury.Security
			firstCall sql.NullTime
			amountOut sql.NullFloat64
			itype     int
		)
		if err := rows.Scan(
			&sec.CUSIP,
			&sec.QuoteDate,
			&sec.IssueDate,
			&sec.MaturityDate,
			&firstCall,
			&sec.Price,
			&sec.CouponRate,
			&itype,
			&amountOut,
		); err != nil {
			return nil, fmt.Errorf("crsp.CrossSection: scan: %w", err)
		}
		sec.Type = treasury.Bond
		if sec.OriginalMaturityYears() <= 10 {
			sec.Type = treasury.Note
		}
		if itype == itypeCallable && firstCall.Valid {
			sec.Callable = true
			sec.FirstCallDate = firstCall.Time
		}
		if amountOut.Valid {
			sec.AmountOut = amountOut.Float64
		}
		out = append(out, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("crsp.CrossSection: %w", err)
	}
	return out, nil
}

// QuoteDates lists the distinct quote dates available in [start, end], the
// grid a sweep can intersect with curvefit.MonthStarts.
func (s *Store) QuoteDates(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	const q = `SELECT DISTINCT caldt FROM crsp.tfz_dly WHERE caldt BETWEEN $1 AND $2 ORDER BY caldt`
	rows, err := s.db.QueryContext(ctx, q, start, end)
	if err != nil {
		return nil, fmt.Errorf("crsp.QuoteDates: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("crsp.QuoteDates: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("crsp.QuoteDates: %w", err)
	}
	return out, nil
}
