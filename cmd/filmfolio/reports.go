package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/insights"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type statsReport struct {
	insights.Stats
	CompletionRate   float64 `json:"completionRate"`
	FormattedRuntime string  `json:"formattedRuntime"`
}

func newStatsCommand(configViper *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print watchlist statistics from the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, logger, err := loadRuntime(configViper)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			movieStore, closeStore, err := openStore(cmd.Context(), appConfig, logger)
			if err != nil {
				return err
			}
			defer closeStore() //nolint:errcheck

			entries, err := movieStore.ReadWatchlist(cmd.Context())
			if err != nil {
				return err
			}
			stats := insights.ComputeStats(entries, time.Now())
			return writeJSON(cmd.OutOrStdout(), statsReport{
				Stats:            stats,
				CompletionRate:   insights.CompletionRate(stats),
				FormattedRuntime: insights.FormatRuntime(stats.TotalRuntime),
			})
		},
	}
}

func newWatchlistCommand(configViper *viper.Viper) *cobra.Command {
	var statusFlag, sortFlag string

	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Print the filtered and sorted watchlist from the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := insights.ParseStatusFilter(statusFlag)
			if err != nil {
				return err
			}
			sortKey := insights.ParseSortKey(sortFlag)

			appConfig, logger, err := loadRuntime(configViper)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			movieStore, closeStore, err := openStore(cmd.Context(), appConfig, logger)
			if err != nil {
				return err
			}
			defer closeStore() //nolint:errcheck

			entries, err := movieStore.ReadWatchlist(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), insights.FilterAndSort(entries, filter, sortKey))
		},
	}
	cmd.Flags().StringVar(&statusFlag, "status", string(insights.StatusFilterAll), "Status filter (all, plan_to_watch, watching, watched, dropped)")
	cmd.Flags().StringVar(&sortFlag, "sort", string(insights.SortByDateAdded), "Sort key (dateAdded, title, rating, personalRating, releaseDate)")
	return cmd
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
