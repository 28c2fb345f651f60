package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/clinic-ops-platform/internal/api/router"
	"github.com/clinicdesk/clinic-ops-platform/internal/appointments"
	"github.com/clinicdesk/clinic-ops-platform/internal/attribution"
	"github.com/clinicdesk/clinic-ops-platform/internal/calendar"
	"github.com/clinicdesk/clinic-ops-platform/internal/clinic"
	"github.com/clinicdesk/clinic-ops-platform/internal/commission"
	"github.com/clinicdesk/clinic-ops-platform/internal/completion"
	appconfig "github.com/clinicdesk/clinic-ops-platform/internal/config"
	"github.com/clinicdesk/clinic-ops-platform/internal/http/handlers"
	"github.com/clinicdesk/clinic-ops-platform/internal/notify"
	"github.com/clinicdesk/clinic-ops-platform/internal/observability/metrics"
	"github.com/clinicdesk/clinic-ops-platform/internal/patients"
	"github.com/clinicdesk/clinic-ops-platform/internal/procedures"
	"github.com/clinicdesk/clinic-ops-platform/internal/reconcile"
	"github.com/clinicdesk/clinic-ops-platform/internal/team"
	"github.com/clinicdesk/clinic-ops-platform/internal/writeback"
	"github.com/clinicdesk/clinic-ops-platform/pkg/logging"
)

func main() {
	// Local development convenience; production gets real env vars.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-ops-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	redisOpts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	settingsStore := clinic.NewStore(redisClient)

	googleClient, err := calendar.NewGoogleClientWithToken(ctx, cfg.GoogleAccessToken, int64(cfg.GoogleRequestLimit))
	if err != nil {
		logger.Error("failed to create calendar client", "error", err)
		os.Exit(1)
	}
	palette := calendar.NewPalette(cfg.DefaultEventColor)
	agendaAdapter := calendar.NewAdapterWithTimeout(googleClient, palette, cfg.GoogleFetchTimeout, logger)
	tagSync := writeback.NewSync(agendaAdapter, cfg.ConfirmedColorToken, cfg.MissedColorToken, logger)

	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)

	apptRepo := appointments.NewRepository(pool)
	patientRepo := patients.NewRepository(pool)
	procedureRepo := procedures.NewRepository(pool)
	mappingRepo := team.NewMappingRepository(pool)

	attributionResolver := attribution.NewResolver(mappingRepo, logger)
	commissionResolver := commission.NewResolver(procedureRepo)

	controller := reconcile.NewController(apptRepo, attributionResolver, settingsStore, engineMetrics, logger)
	workflow := completion.NewWorkflow(apptRepo, commissionResolver, procedureRepo, patientRepo, tagSync, settingsStore, engineMetrics, logger)

	var email notify.EmailSender
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil {
		email = sender
	}
	alerts := notify.NewAlerts(email, settingsStore, 0, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Agenda:             handlers.NewAgendaHandler(agendaAdapter, mappingRepo, logger),
		Appointments:       handlers.NewAppointmentsHandler(controller, workflow, apptRepo, alerts, logger),
		Commissions:        handlers.NewCommissionsHandler(procedureRepo, logger),
		StaffAuthSecret:    cfg.StaffJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
