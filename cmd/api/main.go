package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"printstudio/internal/adapter/repo"
	"printstudio/internal/assets"
	"printstudio/internal/compliance"
	"printstudio/internal/http/handlers"
	"printstudio/internal/http/httpapi"
	"printstudio/internal/infra"
	"printstudio/internal/infra/geoip"
	"printstudio/internal/placement"
	"printstudio/internal/providers/fulfillment"
	"printstudio/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	geoResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}

	assetRepo := repo.NewAssetRepository(pool)
	designRepo := repo.NewDesignRepository(pool)
	catalogRepo := repo.NewCatalogRepository(pool)

	prober := assets.NewRepoProbe(assetRepo, assets.NewHTTPProbe(nil, cfg.AssetProbeTimeout))
	store := placement.NewStore()

	app := &handlers.App{
		Logger:      logger,
		SQL:         runner,
		Store:       store,
		Assets:      assetRepo,
		Designs:     designRepo,
		CatalogRepo: catalogRepo,
		Provider: fulfillment.NewClient(fulfillment.Options{
			BaseURL: cfg.FulfillmentBaseURL,
			APIKey:  cfg.FulfillmentAPIKey,
		}),
		Prober:           prober,
		Files:            fileStore,
		StorageBaseURL:   cfg.StorageBaseURL,
		TolerancePercent: cfg.TolerancePercent,
		MobileBreakpoint: cfg.MobileBreakpointPx,
	}
	app.Orchestrator = compliance.NewOrchestrator(store, compliance.NewValidator(prober),
		compliance.AssetResolverFunc(app.AssetURL), logger)

	router := httpapi.NewRouter(app, httpapi.Options{
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   "en",
		GeoIP:           geoResolver,
		StaticDir:       storagePath,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
