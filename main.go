package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"metric-diary/internal/analytics"
	"metric-diary/internal/api"
	"metric-diary/internal/config"
	"metric-diary/internal/db"
	"metric-diary/internal/logger"
	"metric-diary/internal/provider"
)

var version = "dev"

func main() {
	addr := flag.String("addr", "", "listen address (overrides DIARY_LISTEN_ADDR)")
	dataDir := flag.String("data", "", "data directory (overrides DIARY_DATA_DIR)")
	flag.Parse()

	logger.Banner(version)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("Config", err.Error())
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()
	database.CleanupStaleSeries()

	client := provider.NewClient(cfg.ProviderBaseURL, cfg.Strategies)
	cache := provider.NewSeriesCache(client, database)
	engine := analytics.NewEngine(cache, client, client, database)
	srv := api.NewServer(cfg, database, client, cache, engine)

	logger.Section("Startup")
	if client.HealthCheck() {
		logger.Success("Provider", fmt.Sprintf("Reachable at %s", cfg.ProviderBaseURL))
	} else {
		logger.Warn("Provider", fmt.Sprintf("Unreachable at %s, dashboards will degrade until it is back", cfg.ProviderBaseURL))
	}
	if params, err := database.ActiveParameters(); err == nil {
		logger.Stats("Parameters", len(params))
	}

	logger.Server(cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Handler()); err != nil {
		logger.Error("Server", err.Error())
		os.Exit(1)
	}
}
