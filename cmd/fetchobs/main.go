// Command fetchobs pulls surface observations from the Synoptic Data API
// and writes them to a flat file for verification against forecast output.
//
// Usage:
//
//	SYNOPTIC_TOKEN=... fetchobs -stations KSEA,KPDX -vars ozone_concentration \
//	    -start 2024-01-15T00 -end 2024-01-16T00 -out obs.csv
//
// The output format follows the -out extension (.csv or .json).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/couchcryptid/naqfc-fetch/internal/adapter/synoptic"
	"github.com/couchcryptid/naqfc-fetch/internal/config"
	"github.com/couchcryptid/naqfc-fetch/internal/dataset"
	"github.com/couchcryptid/naqfc-fetch/internal/observability"
)

const windowFormat = "2006-01-02T15"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	stations := flag.String("stations", "", "comma-separated station IDs (required)")
	vars := flag.String("vars", "", "comma-separated variable names (default: all reported)")
	startStr := flag.String("start", "", "window start as YYYY-MM-DDTHH UTC (required)")
	endStr := flag.String("end", "", "window end as YYYY-MM-DDTHH UTC (required)")
	out := flag.String("out", "synoptic_data.csv", "output path; extension selects the format")
	flag.Parse()

	if *stations == "" {
		return errors.New("-stations is required")
	}
	if *startStr == "" || *endStr == "" {
		return errors.New("-start and -end are required")
	}

	start, err := time.ParseInLocation(windowFormat, *startStr, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -start %q (want %s): %w", *startStr, windowFormat, err)
	}
	end, err := time.ParseInLocation(windowFormat, *endStr, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -end %q (want %s): %w", *endStr, windowFormat, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.SynopticToken == "" {
		return errors.New("SYNOPTIC_TOKEN is not set")
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	client := synoptic.NewClient(cfg.SynopticToken, cfg.SynopticBaseURL, cfg.SynopticTimeout, metrics, logger)

	params := synoptic.TimeSeriesParams{
		Stations: splitList(*stations),
		Start:    start,
		End:      end,
	}
	if *vars != "" {
		params.Variables = splitList(*vars)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SynopticTimeout)
	defer cancel()

	rows, err := client.TimeSeries(ctx, params)
	if err != nil {
		return err
	}

	if err := dataset.WriteFile(*out, rows); err != nil {
		return err
	}

	logger.Info("observations saved", "rows", len(rows), "path", *out)
	fmt.Printf("saved %d rows to %s\n", len(rows), *out)
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
