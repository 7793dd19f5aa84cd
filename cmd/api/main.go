package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pixelmorph/internal/http/handlers"
	httpapi "pixelmorph/internal/http/httpapi"
	"pixelmorph/internal/http/web"
	"pixelmorph/internal/imagegen"
	"pixelmorph/internal/infra"
	"pixelmorph/internal/loader"
	"pixelmorph/internal/preview"
	"pixelmorph/internal/studio"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	client, err := imagegen.NewClient(ctx, imagegen.Options{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create gemini client")
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("API_KEY is not set; generation requests will fail")
	}

	previews := preview.NewRegistry("/v1/previews")
	store := studio.NewStore(studio.StoreOptions{
		Generator: client,
		Previews:  previews,
		Logger:    logger,
		TTL:       cfg.SessionTTL,
	})
	sweeper, err := studio.NewSweeper(store, cfg.SessionSweepInterval)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule session sweep")
	}

	pages, err := web.Templates()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}

	app := handlers.NewApp(store, loader.New(previews, cfg.MaxUploadBytes, logger), previews, pages, cfg.MaxUploadBytes, logger)
	router := httpapi.NewRouter(app, httpapi.Options{SessionCookie: cfg.SessionCookie})
	server := infra.NewHTTPServer(cfg, router)

	sweeper.Start()

	go func() {
		logger.Info().Str("model", client.Model()).Msgf("PixelMorph listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	sweeper.Stop()
	store.CloseAll()
	logger.Info().Msg("server stopped")
}
