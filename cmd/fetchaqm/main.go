// Command fetchaqm resolves and downloads one NAQFC forecast artifact.
//
// Usage:
//
//	fetchaqm -cycle 2024-01-15T12 -product max_8hr_o3 -domain conus -dest data
//	fetchaqm -product ave_1hr_pm25 -dry-run   # latest cycle, print URLs only
//
// With no -cycle the most recent 06Z/12Z initialization is used. The -raw
// flag selects the non-bias-corrected variant. Timeouts and the probe cache
// size come from the environment (DOWNLOAD_TIMEOUT, PROBE_CACHE_SIZE).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/couchcryptid/naqfc-fetch/internal/adapter/archive"
	"github.com/couchcryptid/naqfc-fetch/internal/config"
	"github.com/couchcryptid/naqfc-fetch/internal/naqfc"
	"github.com/couchcryptid/naqfc-fetch/internal/observability"
)

const cycleFormat = "2006-01-02T15"

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cycleStr := flag.String("cycle", "", "forecast cycle as YYYY-MM-DDTHH UTC (default: latest 06Z/12Z run)")
	product := flag.String("product", "max_8hr_o3", "forecast product, e.g. max_8hr_o3, ave_1hr_pm25")
	domainStr := flag.String("domain", "conus", "grid domain: conus, alaska, or hawaii")
	raw := flag.Bool("raw", false, "fetch the non-bias-corrected variant")
	dest := flag.String("dest", "data", "destination directory")
	dryRun := flag.Bool("dry-run", false, "print resolved URLs without downloading")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cycle := naqfc.LatestCycle()
	if *cycleStr != "" {
		cycle, err = time.ParseInLocation(cycleFormat, *cycleStr, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid -cycle %q (want %s): %w", *cycleStr, cycleFormat, err)
		}
	}

	domain := naqfc.Domain(strings.ToLower(*domainStr))
	req := naqfc.Request{
		Cycle:         cycle,
		Product:       *product,
		Domain:        domain,
		BiasCorrected: !*raw,
	}

	sources, err := naqfc.Resolve(req)
	if err != nil {
		return err
	}

	if !naqfc.ProductAdvertised(domain, *product) {
		fmt.Printf("%s product %q is not advertised for %s (known: %s); trying anyway\n",
			yellow("warning:"), *product, domain, strings.Join(naqfc.Products(domain), ", "))
	}

	fmt.Printf("cycle   %s (%s)\n", cycle.Format(cycleFormat), naqfc.ResolveVersion(cycle))
	fmt.Printf("aws     %s\n", sources.AWS)
	fmt.Printf("nomads  %s\n", sources.NOMADS)

	if *dryRun {
		return nil
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	retriever := archive.NewRetriever(cfg.DownloadTimeout, cfg.ProbeCacheSize, metrics, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DownloadTimeout)
	defer cancel()

	result, err := retriever.Fetch(ctx, sources, *dest)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s (%d bytes from %s)\n", green("fetched"), result.Path, result.Bytes, result.Source)
	return nil
}
