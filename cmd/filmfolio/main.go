package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/catalog"
	"github.com/MarcoPoloResearchLab/filmfolio/internal/config"
	"github.com/MarcoPoloResearchLab/filmfolio/internal/logging"
	"github.com/MarcoPoloResearchLab/filmfolio/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand(config.NewViper()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(configViper *viper.Viper) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:          "filmfolio",
		Short:        "FilmFolio movie tracking service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(configViper, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), configViper)
		},
	}

	setupFlags(rootCmd, configViper, &cfgFile)
	rootCmd.AddCommand(newStatsCommand(configViper), newWatchlistCommand(configViper))
	return rootCmd
}

func setupFlags(cmd *cobra.Command, configViper *viper.Viper, cfgFile *string) {
	defaults := config.NewViper()
	flags := cmd.PersistentFlags()
	flags.StringVar(cfgFile, "config", "", "Path to configuration file")
	flags.String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	flags.String("database-path", defaults.GetString("database.path"), "SQLite database path")
	flags.String("store-driver", defaults.GetString("store.driver"), "Store driver (sqlite, redis, memory)")
	flags.String("redis-address", "", "Redis address for the redis store driver")
	flags.String("redis-prefix", defaults.GetString("redis.prefix"), "Key prefix for the redis store driver")
	flags.String("tmdb-api-key", "", "TMDB API key (overrides env)")
	flags.String("tmdb-base-url", defaults.GetString("tmdb.base_url"), "TMDB API base URL")
	flags.Int("tmdb-timeout-seconds", defaults.GetInt("tmdb.timeout_seconds"), "TMDB request timeout in seconds")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	flags.String("log-file", "", "Optional rotating log file path")

	bindFlag(cmd, configViper, "http.address", "http-address")
	bindFlag(cmd, configViper, "database.path", "database-path")
	bindFlag(cmd, configViper, "store.driver", "store-driver")
	bindFlag(cmd, configViper, "redis.address", "redis-address")
	bindFlag(cmd, configViper, "redis.prefix", "redis-prefix")
	bindFlag(cmd, configViper, "tmdb.api_key", "tmdb-api-key")
	bindFlag(cmd, configViper, "tmdb.base_url", "tmdb-base-url")
	bindFlag(cmd, configViper, "tmdb.timeout_seconds", "tmdb-timeout-seconds")
	bindFlag(cmd, configViper, "log.level", "log-level")
	bindFlag(cmd, configViper, "log.file", "log-file")
}

func bindFlag(cmd *cobra.Command, configViper *viper.Viper, key, flag string) {
	if err := configViper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig(configViper *viper.Viper, cfgFile string) error {
	if cfgFile == "" {
		return nil
	}
	configViper.SetConfigFile(cfgFile)
	return configViper.ReadInConfig()
}

func loadRuntime(configViper *viper.Viper) (config.AppConfig, *zap.Logger, error) {
	appConfig, err := config.Load(configViper)
	if err != nil {
		return config.AppConfig{}, nil, err
	}
	logger, err := logging.NewLogger(logging.Options{Level: appConfig.LogLevel, FilePath: appConfig.LogFile})
	if err != nil {
		return config.AppConfig{}, nil, err
	}
	return appConfig, logger, nil
}

func runServer(ctx context.Context, configViper *viper.Viper) error {
	appConfig, logger, err := loadRuntime(configViper)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if err := appConfig.RequireCatalog(); err != nil {
		return err
	}

	movieStore, closeStore, err := openStore(ctx, appConfig, logger)
	if err != nil {
		return err
	}
	defer closeStore() //nolint:errcheck

	catalogClient, err := catalog.NewClient(catalog.ClientConfig{
		APIKey:       appConfig.TMDBAPIKey,
		BaseURL:      appConfig.TMDBBaseURL,
		ImageBaseURL: appConfig.TMDBImageBaseURL,
		Timeout:      appConfig.TMDBTimeout,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Store:   movieStore,
		Catalog: catalogClient,
		Logger:  logger,
		Clock:   time.Now,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("address", appConfig.HTTPAddress),
			zap.String("store_driver", appConfig.StoreDriver))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
