// Package main is the entry point for the agent backend server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gaiachat/arweave-agent/internal/arweave"
	"github.com/gaiachat/arweave-agent/internal/config"
	"github.com/gaiachat/arweave-agent/internal/events"
	"github.com/gaiachat/arweave-agent/internal/handler"
	"github.com/gaiachat/arweave-agent/internal/llm"
	"github.com/gaiachat/arweave-agent/internal/middleware"
	"github.com/gaiachat/arweave-agent/internal/poller"
	"github.com/gaiachat/arweave-agent/internal/service"
	"github.com/gaiachat/arweave-agent/internal/tools"
	"github.com/gaiachat/arweave-agent/pkg/logger"
	"github.com/gaiachat/arweave-agent/pkg/tracing"
)

func main() {
	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting agent backend")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "arweave-agent", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	publisher, err := events.Connect(cfg.NATSURL, log)
	if err != nil {
		log.Warn("event publisher unavailable, continuing without it", zap.Error(err))
		publisher, _ = events.Connect("", log)
	}
	defer publisher.Close()

	// External collaborators.
	storage := arweave.NewClient(arweave.Config{
		BaseURL:    cfg.StorageAPIURL,
		PrivateKey: cfg.PrivateKey,
		Network:    cfg.Network,
		Token:      cfg.Token,
		AppName:    cfg.AppName,
	}, log)

	gaia, err := llm.NewGaiaClient(cfg.GaiaAPIKey, cfg.GaiaNodeURL, cfg.GaiaModel)
	if err != nil {
		log.Error("failed to create Gaia client", zap.Error(err))
		os.Exit(1)
	}

	confirm := poller.New(storage, log)

	dispatcher := tools.NewDispatcher(storage, confirm, tools.Config{
		GaiaNodeURL: cfg.GaiaNodeURL,
		GaiaModel:   cfg.GaiaModel,
		GatewayURL:  cfg.GatewayURL,
		TokenSymbol: cfg.Token,
	}, publisher, log)

	// Services.
	agentSvc := service.NewAgentService(gaia, dispatcher, cfg.GaiaModel, log)
	chatSvc := service.NewChatService(gaia, cfg.GaiaModel)
	uploadSvc := service.NewUploadService(storage, confirm, publisher, cfg.GaiaNodeURL, cfg.GaiaModel, cfg.GatewayURL, log)

	// Handlers.
	healthHandler := handler.NewHealthHandler()
	uploadHandler := handler.NewUploadHandler(uploadSvc, log)
	agentHandler := handler.NewAgentHandler(agentSvc, cfg.StaticDir, log)
	socketHandler := handler.NewSocketHandler(chatSvc, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/get-estimates", uploadHandler.Estimates)
		r.Post("/upload-transcript", uploadHandler.Upload)
		r.Get("/get-my-uploads", uploadHandler.List)
		r.Post("/agent-chat", agentHandler.Chat)
	})

	r.Get("/ws", socketHandler.Serve)
	r.Get("/agent-demo", agentHandler.Demo)
	r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
