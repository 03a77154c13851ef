package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-crm/internal/config"
	"github.com/jwalitptl/clinic-crm/internal/email"
	"github.com/jwalitptl/clinic-crm/internal/handler/health"
	"github.com/jwalitptl/clinic-crm/internal/repository"
	"github.com/jwalitptl/clinic-crm/internal/repository/memory"
	"github.com/jwalitptl/clinic-crm/internal/repository/postgres"
	"github.com/jwalitptl/clinic-crm/internal/router"
	appointmentService "github.com/jwalitptl/clinic-crm/internal/service/appointment"
	authService "github.com/jwalitptl/clinic-crm/internal/service/auth"
	clientService "github.com/jwalitptl/clinic-crm/internal/service/client"
	dashboardService "github.com/jwalitptl/clinic-crm/internal/service/dashboard"
	"github.com/jwalitptl/clinic-crm/pkg/auth"
	"github.com/jwalitptl/clinic-crm/pkg/clock"
	"github.com/jwalitptl/clinic-crm/pkg/event"
	"github.com/jwalitptl/clinic-crm/pkg/logger"
	"github.com/jwalitptl/clinic-crm/pkg/messaging"
	"github.com/jwalitptl/clinic-crm/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-crm/pkg/metrics"
	"github.com/jwalitptl/clinic-crm/pkg/security"
	"github.com/jwalitptl/clinic-crm/pkg/tracing"
)

const metricsNamespace = "crm"

type stores struct {
	appointments repository.AppointmentRepository
	clients      repository.ClientRepository
	users        repository.UserRepository
	db           *sqlx.DB
}

func openStores(ctx context.Context, cfg config.StorageConfig) (*stores, error) {
	if cfg.Driver != "postgres" {
		return &stores{
			appointments: memory.NewAppointmentRepository(),
			clients:      memory.NewClientRepository(),
			users:        memory.NewUserRepository(),
		}, nil
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		appointments: postgres.NewAppointmentRepository(db),
		clients:      postgres.NewClientRepository(db),
		users:        postgres.NewUserRepository(db),
		db:           db,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(logger.Config{
		Level:   cfg.App.LogLevel,
		Console: cfg.App.IsDevelopment(),
		Service: cfg.App.Name,
	})
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}

	st, err := openStores(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open storage")
	}
	if st.db != nil {
		defer st.db.Close()
	}

	m := metrics.New(metricsNamespace)
	m.RegisterStoreSize(metricsNamespace, "appointments", countOf(st.appointments.Count))
	m.RegisterStoreSize(metricsNamespace, "clients", countOf(st.clients.Count))

	checks := map[string]health.Check{}
	if st.db != nil {
		checks["database"] = st.db.PingContext
	}

	// Change events go to Redis when enabled. The outbox keeps publishing
	// off the request path.
	emitter := event.Nop()
	var broker messaging.Broker
	outboxCtx, stopOutbox := context.WithCancel(context.Background())
	defer stopOutbox()
	outboxDone := make(chan struct{})
	if cfg.Redis.Enabled {
		broker, err = redis.NewRedisBroker(ctx, redis.DefaultConfig(cfg.Redis.URL))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
		checks["redis"] = broker.Ping

		outboxCfg := event.DefaultOutboxConfig()
		outboxCfg.Channel = cfg.Redis.Channel
		outbox, err := event.NewOutbox(broker, outboxCfg, m)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create outbox")
		}
		emitter = outbox
		go func() {
			defer close(outboxDone)
			outbox.Run(outboxCtx)
		}()
	} else {
		close(outboxDone)
	}

	mailer := email.Nop()
	if cfg.Mail.Enabled {
		mailer = email.NewSMTPService(email.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	}

	loc, _ := cfg.Dashboard.Location()
	clk := clock.System(loc)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry())
	authSvc := authService.NewService(st.users, jwtSvc, security.NewBcryptHasher(bcrypt.DefaultCost), m,
		authService.Config{
			MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
			LockoutDuration:  time.Duration(cfg.Auth.LockoutMinutes) * time.Minute,
		})
	appointmentSvc := appointmentService.NewService(st.appointments, emitter, mailer)
	clientSvc := clientService.NewService(st.clients, emitter, clk)
	dashboardSvc := dashboardService.NewService(appointmentSvc, clientSvc, cfg.Dashboard.ActiveStaff, clk)

	if err := seedUsers(ctx, authSvc, cfg.Auth.Users, cfg.App.IsProduction()); err != nil {
		log.Fatal().Err(err).Msg("failed to seed users")
	}
	if cfg.Storage.Seed {
		if err := seedSampleData(ctx, st.clients, st.appointments); err != nil {
			log.Fatal().Err(err).Msg("failed to seed sample data")
		}
	}

	r := router.NewRouter(router.RouterConfig{
		ServiceName:      cfg.App.Name,
		Production:       cfg.App.IsProduction(),
		SecureCookie:     !cfg.App.IsDevelopment(),
		CORSOrigins:      cfg.CORS.AllowedOrigins,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		Tracing:          cfg.Tracing.Enabled,
	}, router.Services{
		Auth:         authSvc,
		Appointments: appointmentSvc,
		Clients:      clientSvc,
		Dashboard:    dashboardSvc,
	}, m, checks)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("env", cfg.App.Env).Str("storage", cfg.Storage.Driver).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	drainOnShutdown(shutdownCtx, srv, appointmentSvc.Wait, stopOutbox, outboxDone)
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush traces")
	}

	log.Info().Msg("server exited properly")
}

// drainOnShutdown lets in-flight requests and background mail finish before
// the outbox is stopped, so every event they emit is still published.
func drainOnShutdown(ctx context.Context, srv *http.Server, waitMail func(), stopOutbox context.CancelFunc, outboxDone <-chan struct{}) {
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	mailDone := make(chan struct{})
	go func() {
		defer close(mailDone)
		waitMail()
	}()
	select {
	case <-mailDone:
	case <-ctx.Done():
		log.Warn().Msg("confirmation mails still pending at shutdown timeout")
	}

	stopOutbox()
	select {
	case <-outboxDone:
	case <-ctx.Done():
		log.Warn().Msg("outbox did not drain before shutdown timeout")
	}
}

// countOf adapts a repository Count to a gauge callback.
func countOf(count func(context.Context) (int, error)) func() float64 {
	return func() float64 {
		n, err := count(context.Background())
		if err != nil {
			log.Warn().Err(err).Msg("failed to count records for metrics")
			return 0
		}
		return float64(n)
	}
}
