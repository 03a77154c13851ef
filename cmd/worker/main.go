package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-crm/internal/config"
	"github.com/jwalitptl/clinic-crm/internal/handler/health"
	"github.com/jwalitptl/clinic-crm/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-crm/internal/middleware"
	"github.com/jwalitptl/clinic-crm/internal/worker"
	"github.com/jwalitptl/clinic-crm/pkg/logger"
	"github.com/jwalitptl/clinic-crm/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-crm/pkg/metrics"
)

const healthAddr = ":8081"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Setup(logger.Config{
		Level:   cfg.App.LogLevel,
		Console: cfg.App.IsDevelopment(),
		Service: cfg.App.Name + "-worker",
	})
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broker, err := redis.NewRedisBroker(ctx, redis.DefaultConfig(cfg.Redis.URL))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis broker")
	}
	defer broker.Close()

	m := metrics.New("crm")

	// Probes and metrics for the worker process.
	engine := gin.New()
	engine.Use(middleware.Recovery())
	health.NewHandler(map[string]health.Check{"redis": broker.Ping}).RegisterRoutes(engine)
	prometheus.New(m.Registry()).RegisterRoutes(engine)
	srv := &http.Server{Addr: healthAddr, Handler: engine, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Health check server failed")
			stop()
		}
	}()

	if err := worker.NewEventLogWorker(broker, cfg.Redis.Channel, m).Start(ctx); err != nil {
		log.Error().Err(err).Msg("Event worker stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Health check server forced to shutdown")
	}
	log.Info().Msg("Worker exited")
}
