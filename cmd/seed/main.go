// Command seed fills a database with demo postings and runs approval and
// automatic matching over them, for local development and demos.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/campuskeep/lostfound/internal/domain"
	"github.com/campuskeep/lostfound/internal/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dbPath    string
		threshold float64
		reset     bool
	)

	flag.StringVar(&dbPath, "db", envOrDefault("LOSTFOUND_DB", "lostfound.db"), "SQLite database path")
	flag.Float64Var(&threshold, "threshold", 0.7, "Automatic match threshold")
	flag.BoolVar(&reset, "reset", false, "Delete all existing rows before seeding")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	db, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := sqlite.EnsureSchema(db); err != nil {
		return err
	}

	ctx := context.Background()
	if reset {
		for _, table := range []string{"notifications", "matches", "postings"} {
			if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
		}
		fmt.Println("Cleared existing rows")
	}

	store := sqlite.NewStore(db)
	registry := domain.NewRegistry(logger)
	matcher, err := domain.NewService(store, store, registry, domain.MatcherConfig{
		AutoThreshold: threshold,
		SuggestFloor:  0.30,
	}, logger)
	if err != nil {
		return err
	}

	now := time.Now()
	postings := []*domain.Posting{
		{
			Title:            "Lost black wallet",
			Description:      "Black leather wallet with a student card inside",
			Category:         domain.CategoryWallet,
			PostType:         domain.PostLost,
			Location:         domain.LocationLibrary,
			DetailedLocation: "LIBRARY_READING_ROOM",
			LostFoundTime:    now.Add(-6 * time.Hour),
			OwnerID:          1,
		},
		{
			Title:            "Found a wallet near the library",
			Description:      "Black leather wallet, found on a reading room desk",
			Category:         domain.CategoryWallet,
			PostType:         domain.PostFound,
			Location:         domain.LocationLibrary,
			DetailedLocation: "LIBRARY_READING_ROOM",
			LostFoundTime:    now.Add(-4 * time.Hour),
			OwnerID:          2,
		},
		{
			Title:            "Lost AirPods Pro case",
			Description:      "White charging case, last seen at the gym",
			Category:         domain.CategoryHeadphones,
			PostType:         domain.PostLost,
			Location:         domain.LocationGym,
			DetailedLocation: "GYM_EQUIPMENT_ROOM",
			LostFoundTime:    now.Add(-26 * time.Hour),
			OwnerID:          3,
		},
		{
			Title:            "Found earphones case",
			Description:      "White earphone charging case by the lockers",
			Category:         domain.CategoryHeadphones,
			PostType:         domain.PostFound,
			Location:         domain.LocationGym,
			DetailedLocation: "GYM_EQUIPMENT_ROOM",
			LostFoundTime:    now.Add(-20 * time.Hour),
			OwnerID:          4,
		},
		{
			Title:            "Lost umbrella",
			Description:      "Long blue umbrella, left in a lecture hall",
			Category:         domain.CategoryUmbrella,
			PostType:         domain.PostLost,
			Location:         domain.LocationTeachingBldgA,
			LostFoundTime:    now.Add(-3 * 24 * time.Hour),
			OwnerID:          5,
		},
	}

	for _, p := range postings {
		if err := matcher.CreatePosting(ctx, p); err != nil {
			return fmt.Errorf("seed posting %q: %w", p.Title, err)
		}
		matches, err := matcher.ApprovePosting(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("approve posting %q: %w", p.Title, err)
		}
		fmt.Printf("Seeded posting %d (%s, weight %d), matches created: %d\n",
			p.ID, p.Title, p.TotalWeight, len(matches))
	}

	fmt.Println("Done")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
