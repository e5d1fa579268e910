// Command rvsnapshot computes one snapshot and prints the cross-market
// spread matrix, optionally archiving the quotes in Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/meenmo/bondrv/config"
	"github.com/meenmo/bondrv/logging"
	"github.com/meenmo/bondrv/marketdata"
	"github.com/meenmo/bondrv/service"
)

func main() {
	var (
		configPath string
		archive    bool
	)
	flag.StringVar(&configPath, "config", "", "path to config file (optional)")
	flag.BoolVar(&archive, "archive", false, "persist quotes to Postgres")
	flag.Parse()

	if err := run(configPath, archive); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, archive bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logging.Init(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	ctx := context.Background()
	provider := marketdata.NewStaticProvider()
	engine := service.NewEngine(cfg, provider, nil, log)

	snap, err := engine.Compute(ctx)
	if err != nil {
		return err
	}

	if archive {
		if err := archiveQuotes(ctx, cfg, snap); err != nil {
			return err
		}
	}

	printMatrix(snap)
	if len(snap.Omissions) > 0 {
		fmt.Printf("\n%d omissions:\n", len(snap.Omissions))
		for _, o := range snap.Omissions {
			fmt.Printf("  %s", o.Issuer)
			if o.Mode != "" {
				fmt.Printf(" [%s]", o.Mode)
			}
			fmt.Printf(": %s\n", o.Reason)
		}
	}
	return nil
}

func printMatrix(snap *service.Snapshot) {
	fmt.Printf("Spreads vs %s (bp), as of %s\n\n", snap.Reference, snap.AsOf.Format("2006-01-02 15:04:05"))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "Country")
	for _, label := range snap.Matrix.Labels {
		fmt.Fprintf(w, "\t%s", label)
	}
	fmt.Fprintln(w)
	for _, row := range snap.Matrix.Rows {
		fmt.Fprint(w, row.Issuer)
		for _, cell := range row.Cells {
			if cell.Valid {
				fmt.Fprintf(w, "\t%+.1f", cell.SpreadBP)
			} else {
				fmt.Fprint(w, "\t-")
			}
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

func archiveQuotes(ctx context.Context, cfg config.Config, snap *service.Snapshot) error {
	store, err := marketdata.OpenStore(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer store.Close()

	var quotes []marketdata.Quote
	for _, cr := range snap.Countries {
		quotes = append(quotes, cr.Quotes...)
	}
	if err := store.SaveQuotes(ctx, quotes); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	fmt.Printf("archived %d quotes\n", len(quotes))
	return nil
}
