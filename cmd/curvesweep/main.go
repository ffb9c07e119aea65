// Command curvesweep estimates the yield curve for the first business day of
// every month in a date range, reading cross-sections from Postgres or a CSV
// export and writing one JSON result per quote date.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/tsylab/gswfit/curvefit"
	"github.com/tsylab/gswfit/marketdata/crsp"
	"github.com/tsylab/gswfit/nss"
	"github.com/tsylab/gswfit/utils"
)

type config struct {
	Source struct {
		DSN string `yaml:"dsn"` // overridden by CRSP_DSN when set
		CSV string `yaml:"csv"`
	} `yaml:"source"`
	Sweep struct {
		Start   string `yaml:"start"`
		End     string `yaml:"end"`
		Workers int    `yaml:"workers"`
	} `yaml:"sweep"`
	Initial struct {
		Tau1  float64 `yaml:"tau1"`
		Tau2  float64 `yaml:"tau2"`
		Beta0 float64 `yaml:"beta0"`
		Beta1 float64 `yaml:"beta1"`
		Beta2 float64 `yaml:"beta2"`
		Beta3 float64 `yaml:"beta3"`
	} `yaml:"initial"`
	Output string `yaml:"output"` // stdout when empty
	Log    struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

type sweepRow struct {
	QuoteDate string   `json:"quote_date"`
	Tau1      float64  `json:"tau1,omitempty"`
	Tau2      float64  `json:"tau2,omitempty"`
	Beta0     float64  `json:"beta0,omitempty"`
	Beta1     float64  `json:"beta1,omitempty"`
	Beta2     float64  `json:"beta2,omitempty"`
	Beta3     float64  `json:"beta3,omitempty"`
	Objective *float64 `json:"objective,omitempty"`
	Converged *bool    `json:"converged,omitempty"`
	Eligible  int      `json:"eligible,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func main() {
	configPath := flag.String("config", "curvesweep.yaml", "YAML config path")
	flag.Parse()

	// Local .env may carry CRSP_DSN; absence is not an error.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := newLogger(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg); err != nil {
		log.Error().Err(err).Msg("sweep failed")
		os.Exit(1)
	}
}

func loadConfig(path string) (config, error) {
	var cfg config
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if dsn := os.Getenv("CRSP_DSN"); dsn != "" {
		cfg.Source.DSN = dsn
	}
	if cfg.Sweep.Workers < 1 {
		cfg.Sweep.Workers = 4
	}
	return cfg, nil
}

func newLogger(cfg config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.Log.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

func run(ctx context.Context, log zerolog.Logger, cfg config) error {
	start, err := time.Parse("2006-01-02", cfg.Sweep.Start)
	if err != nil {
		return fmt.Errorf("invalid sweep.start: %w", err)
	}
	end, err := time.Parse("2006-01-02", cfg.Sweep.End)
	if err != nil {
		return fmt.Errorf("invalid sweep.end: %w", err)
	}

	src, cleanup, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	initial := nss.Parameters{
		Tau1:  cfg.Initial.Tau1,
		Tau2:  cfg.Initial.Tau2,
		Beta0: cfg.Initial.Beta0,
		Beta1: cfg.Initial.Beta1,
		Beta2: cfg.Initial.Beta2,
		Beta3: cfg.Initial.Beta3,
	}
	if err := initial.Validate(); err != nil {
		return fmt.Errorf("initial parameters: %w", err)
	}

	dates := curvefit.MonthStarts(start, end)
	log.Info().Int("dates", len(dates)).Int("workers", cfg.Sweep.Workers).Msg("starting sweep")

	results := curvefit.Sweep(ctx, log, src, dates, initial, cfg.Sweep.Workers)

	rows := make([]sweepRow, len(results))
	failed := 0
	for i, r := range results {
		row := sweepRow{QuoteDate: r.QuoteDate.Format("2006-01-02")}
		if r.Err != nil {
			row.Error = r.Err.Error()
			failed++
		} else {
			// Round for the output table; full precision stays in Result.
			p := r.Result.Params
			row.Tau1, row.Tau2 = utils.RoundTo(p.Tau1, 6), utils.RoundTo(p.Tau2, 6)
			row.Beta0, row.Beta1 = utils.RoundTo(p.Beta0, 6), utils.RoundTo(p.Beta1, 6)
			row.Beta2, row.Beta3 = utils.RoundTo(p.Beta2, 6), utils.RoundTo(p.Beta3, 6)
			row.Objective = &r.Result.Objective
			row.Converged = &r.Result.Converged
			row.Eligible = r.Result.Eligible
		}
		rows[i] = row
	}
	log.Info().Int("fitted", len(rows)-failed).Int("failed", failed).Msg("sweep done")

	return writeResults(cfg.Output, rows)
}

func openSource(ctx context.Context, cfg config) (curvefit.CrossSectionSource, func(), error) {
	switch {
	case cfg.Source.DSN != "":
		store, err := crsp.Open(ctx, cfg.Source.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case cfg.Source.CSV != "":
		f, err := os.Open(cfg.Source.CSV)
		if err != nil {
			return nil, nil, fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()
		records, err := crsp.ReadCSV(f)
		if err != nil {
			return nil, nil, err
		}
		return curvefit.NewSliceSource(records), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("config needs source.dsn, source.csv, or CRSP_DSN")
	}
}

func writeResults(path string, rows []sweepRow) error {
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(string(b))
		return nil
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
