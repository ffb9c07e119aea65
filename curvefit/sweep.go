package curvefit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsylab/gswfit/nss"
	"github.com/tsylab/gswfit/treasury"
)

// CrossSectionSource supplies the security cross-section for a quote date.
// marketdata/crsp.Store implements it against Postgres; SliceSource serves
// an in-memory table.
type CrossSectionSource interface {
	CrossSection(ctx context.Context, quoteDate time.Time) ([]treasury.Security, error)
}

// SliceSource serves cross-sections from a flat slice of records spanning
// many quote dates, grouped once at construction.
type SliceSource struct {
	byDate map[time.Time][]treasury.Security
}

func NewSliceSource(records []treasury.Security) *SliceSource {
	byDate := make(map[time.Time][]treasury.Security)
	for _, s := range records {
		byDate[s.QuoteDate] = append(byDate[s.QuoteDate], s)
	}
	return &SliceSource{byDate: byDate}
}

func (s *SliceSource) CrossSection(_ context.Context, quoteDate time.Time) ([]treasury.Security, error) {
	return s.byDate[quoteDate], nil
}

// DateResult is the outcome of one quote date within a sweep. Exactly one of
// Err or a populated Result is meaningful.
type DateResult struct {
	QuoteDate time.Time
	Result    Result
	Err       error
}

// Sweep fits every quote date on a worker pool. Each date is an independent,
// side-effect-free unit of work over its own cross-section, so no locking is
// needed; a failed or non-converged date is recorded and does not abort the
// batch. Results come back in input date order.
func Sweep(ctx context.Context, log zerolog.Logger, src CrossSectionSource, dates []time.Time, initial nss.Parameters, workers int) []DateResult {
	if workers < 1 {
		workers = 1
	}

	out := make([]DateResult, len(dates))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out[idx] = fitOne(ctx, log, src, dates[idx], initial)
			}
		}()
	}

	for idx := range dates {
		if ctx.Err() != nil {
			out[idx] = DateResult{QuoteDate: dates[idx], Err: ctx.Err()}
			continue
		}
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return out
}

func fitOne(ctx context.Context, log zerolog.Logger, src CrossSectionSource, quoteDate time.Time, initial nss.Parameters) DateResult {
	cross, err := src.CrossSection(ctx, quoteDate)
	if err != nil {
		log.Error().Err(err).Time("quote_date", quoteDate).Msg("cross-section load failed")
		return DateResult{QuoteDate: quoteDate, Err: err}
	}

	res, err := Fit(quoteDate, cross, initial)
	if err != nil {
		log.Warn().Err(err).Time("quote_date", quoteDate).Msg("fit failed")
		return DateResult{QuoteDate: quoteDate, Err: err}
	}

	log.Info().
		Time("quote_date", quoteDate).
		Int("eligible", res.Eligible).
		Float64("objective", res.Objective).
		Bool("converged", res.Converged).
		Msg("fit done")
	return DateResult{QuoteDate: quoteDate, Result: res}
}

// MonthStarts returns the first weekday of each month in [start, end], the
// quote-date grid the published replication sweeps over. Saturdays and
// Sundays roll forward; exchange holidays are not modeled.
func MonthStarts(start, end time.Time) []time.Time {
	var out []time.Time
	d := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !d.After(end) {
		// Roll first, then test against the range: a start date inside the
		// weekend still picks up that month's rolled business day.
		q := d
		switch q.Weekday() {
		case time.Saturday:
			q = q.AddDate(0, 0, 2)
		case time.Sunday:
			q = q.AddDate(0, 0, 1)
		}
		if !q.Before(start) && !q.After(end) {
			out = append(out, q)
		}
		d = d.AddDate(0, 1, 0)
	}
	return out
}
