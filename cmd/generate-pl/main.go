// generate-pl runs PL generation for one month or a backfill range.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	go run ./cmd/generate-pl -from 2025-04 -to 2026-03
//
// With only -from, a single month is generated.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/boost-jp/ops_backend/workflow"
)

func main() {
	from := flag.String("from", "", "first month to generate (YYYY-MM)")
	to := flag.String("to", "", "last month to generate, inclusive (defaults to -from)")
	flag.Parse()

	if *from == "" {
		fmt.Fprintln(os.Stderr, "-from is required (YYYY-MM)")
		os.Exit(2)
	}
	if *to == "" {
		*to = *from
	}
	start, err := utils.ParseTargetMonth(*from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -from: %v\n", err)
		os.Exit(2)
	}
	end, err := utils.ParseTargetMonth(*to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -to: %v\n", err)
		os.Exit(2)
	}
	if end.Before(start) {
		fmt.Fprintln(os.Stderr, "-to is before -from")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	config.ConnectRedisWithRetry()

	ctx := context.Background()
	logger := config.GetLogger()
	for month := start; !month.After(end); month = month.AddDate(0, 1, 0) {
		target := month.Format(utils.MonthLayout)
		result, err := workflow.GeneratePL(ctx, logger, target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: generation failed: %v\n", target, err)
			os.Exit(1)
		}
		fmt.Printf("%s: generated %d records\n", result.TargetMonth, result.Generated)
	}
}
