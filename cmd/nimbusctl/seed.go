package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nimbusworks/nimbus/internal/health"
	"github.com/nimbusworks/nimbus/internal/store"
	"github.com/nimbusworks/nimbus/internal/travel"
)

var (
	seedDB    string
	seedDays  int
	seedValue int64
	seedStart string
	seedWhich string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo data into a SQLite database",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedDB, "db", "nimbus.db", "SQLite database path")
	seedCmd.Flags().StringVar(&seedWhich, "app", "travel", "application to seed: travel or health")
	seedCmd.Flags().IntVar(&seedDays, "days", 30, "days of inventory to generate (travel)")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 1, "random seed for deterministic data (travel)")
	seedCmd.Flags().StringVar(&seedStart, "start", "", "first inventory date YYYY-MM-DD, default today (travel)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	db, err := store.OpenSQLite(seedDB)
	if err != nil {
		return err
	}
	switch seedWhich {
	case "travel":
		opts := travel.SeedOptions{Days: seedDays, Seed: seedValue}
		if seedStart != "" {
			start, err := time.Parse(travel.DateLayout, seedStart)
			if err != nil {
				return fmt.Errorf("parse --start: %w", err)
			}
			opts.Start = start
		}
		if _, err := travel.NewRepository(db); err != nil {
			return err
		}
		if err := travel.Seed(db, opts); err != nil {
			return err
		}
	case "health":
		if _, err := health.NewRepository(db); err != nil {
			return err
		}
		if err := health.Seed(db); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown app %q, expected travel or health", seedWhich)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s data into %s\n", seedWhich, seedDB)
	return nil
}
