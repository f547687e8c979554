package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/catalog"
	"github.com/MarcoPoloResearchLab/filmfolio/internal/config"
	"github.com/MarcoPoloResearchLab/filmfolio/internal/store"
	"go.uber.org/zap"
)

func seedDatabase(t *testing.T, databasePath string) {
	t.Helper()
	ctx := context.Background()
	movieStore, closeStore, err := openStore(ctx, config.AppConfig{
		StoreDriver:  config.StoreDriverSQLite,
		DatabasePath: databasePath,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer closeStore() //nolint:errcheck

	for _, movie := range []catalog.Movie{
		{ID: 1, Title: "Zodiac", GenreIDs: []int{80}},
		{ID: 2, Title: "alien", GenreIDs: []int{27, 878}},
		{ID: 3, Title: "Brazil", GenreIDs: []int{878}},
	} {
		if _, _, err := movieStore.AddToWatchlist(ctx, movie); err != nil {
			t.Fatalf("failed to seed movie: %v", err)
		}
	}
	watched := store.StatusWatched
	for _, movieID := range []int{1, 2} {
		if _, _, err := movieStore.UpdateWatchlistItem(ctx, movieID, store.WatchlistUpdate{Status: &watched}); err != nil {
			t.Fatalf("failed to update movie: %v", err)
		}
	}
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var output bytes.Buffer
	rootCmd := newRootCommand(config.NewViper())
	rootCmd.SetOut(&output)
	rootCmd.SetErr(&output)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, output.String())
	}
	return output.String()
}

func TestWatchlistCommandFiltersAndSorts(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "filmfolio.db")
	seedDatabase(t, databasePath)

	output := runCommand(t, "watchlist", "--database-path", databasePath, "--log-level", "error", "--status", "watched", "--sort", "title")

	var entries []store.WatchlistEntry
	if err := json.Unmarshal([]byte(output), &entries); err != nil {
		t.Fatalf("failed to decode output %q: %v", output, err)
	}
	if len(entries) != 2 || entries[0].Title != "alien" || entries[1].Title != "Zodiac" {
		t.Fatalf("unexpected watchlist output %#v", entries)
	}
}

func TestStatsCommandPrintsSummary(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "filmfolio.db")
	seedDatabase(t, databasePath)

	output := runCommand(t, "stats", "--database-path", databasePath, "--log-level", "error")

	var report statsReport
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		t.Fatalf("failed to decode output %q: %v", output, err)
	}
	if report.Total != 3 || report.TotalRuntime != 240 || report.FormattedRuntime != "4h 0m" {
		t.Fatalf("unexpected stats %#v", report)
	}
	if len(report.TopGenres) == 0 || report.TopGenres[0].ID != 878 || report.TopGenres[0].Count != 2 {
		t.Fatalf("unexpected top genres %#v", report.TopGenres)
	}
}

func TestWatchlistCommandRejectsUnknownStatus(t *testing.T) {
	rootCmd := newRootCommand(config.NewViper())
	var output bytes.Buffer
	rootCmd.SetOut(&output)
	rootCmd.SetErr(&output)
	rootCmd.SetArgs([]string{"watchlist", "--store-driver", "memory", "--status", "finished"})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid status filter") {
		t.Fatalf("expected invalid status error, got %v", err)
	}
}

func TestRootCommandRequiresCatalogKey(t *testing.T) {
	t.Setenv("FILMFOLIO_TMDB_API_KEY", "")
	rootCmd := newRootCommand(config.NewViper())
	var output bytes.Buffer
	rootCmd.SetOut(&output)
	rootCmd.SetErr(&output)
	rootCmd.SetArgs([]string{"--store-driver", "memory", "--log-level", "error"})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "tmdb.api_key") {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}
