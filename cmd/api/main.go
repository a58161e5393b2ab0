package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"crm/internal/auth"
	"crm/internal/config"
	"crm/internal/directory"
	"crm/internal/httpserver"
	"crm/internal/logging"
	"crm/internal/observability"
	"crm/internal/providers/whatsapp"
	"crm/internal/service"
	"crm/internal/store/pg"
	"crm/internal/util"
	"crm/internal/worker"
)

func main() {
	cfg := config.LoadAPI()
	logging.Init("api", cfg.LogFormat, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AutoMigrate {
		if err := migrate(ctx, cfg.DBDSN); err != nil {
			slog.Error("api auto-migrate failed", "err", err)
			os.Exit(1)
		}
	}

	db, err := pg.NewPool(ctx, cfg.DBDSN, pg.PoolOptions{
		MaxConns:          cfg.DBPoolMaxConns,
		MinConns:          cfg.DBPoolMinConns,
		MaxConnLifetime:   cfg.DBPoolMaxConnLifetime,
		MaxConnIdleTime:   cfg.DBPoolMaxConnIdleTime,
		HealthCheckPeriod: cfg.DBPoolHealthCheckPeriod,
	})
	if err != nil {
		slog.Error("api db connect failed", "err", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		slog.Error("api jwt init failed", "err", err)
		os.Exit(1)
	}

	observability.Register(prometheus.DefaultRegisterer)

	store := pg.New(db)

	tpl := whatsapp.Template{Greeting: cfg.MessageGreeting, Signature: cfg.MessageSignature}
	if tpl.Greeting == "" {
		tpl.Greeting = whatsapp.DefaultGreeting
	}
	if tpl.Signature == "" {
		tpl.Signature = whatsapp.DefaultSignature
	}
	gateway := &whatsapp.Client{
		BaseURL:     cfg.GatewayBaseURL,
		APIKey:      cfg.GatewayAPIKey,
		HTTP:        &http.Client{Timeout: cfg.GatewayTimeout},
		CountryCode: cfg.GatewayCountryCode,
		Template:    tpl,
	}
	if !gateway.Ready() {
		slog.Warn("whatsapp gateway not configured, broadcasts will be refused")
	}

	var pacer worker.Pacer = worker.NoPacing{}
	if cfg.DispatchPacing > 0 {
		pacer = worker.FixedPacer{Interval: cfg.DispatchPacing}
	}
	var limiter *rate.Limiter
	if cfg.DispatchRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.DispatchRPS), 1)
	}
	dispatcher := &worker.Dispatcher{
		Sender:      gateway,
		Pacer:       pacer,
		Limiter:     limiter,
		CallTimeout: cfg.GatewayTimeout,
		Breaker: worker.NewBreaker(worker.BreakerSettings{
			Name:                "whatsapp-gateway",
			MaxConsecutiveFails: cfg.BreakerMaxFailures,
			OpenTimeout:         cfg.BreakerOpenTimeout,
		}),
	}

	notify := &service.NotificationService{
		Audit:      store,
		Audience:   &directory.Directory{Store: store},
		Gateway:    gateway,
		Dispatcher: dispatcher,
		Jobs:       worker.NewRegistry(cfg.DispatchHistory),
		Mode:       service.DispatchMode(cfg.DispatchMode),
		BaseCtx:    ctx,
		IDGen:      util.NewBroadcastID,
	}

	s := httpserver.New()
	api := &httpserver.API{
		Notifications: notify,
		Auth:          &service.AuthService{Users: store, Tokens: tokens},
		Customers:     &service.CustomerService{Store: store},
		Tasks:         &service.TaskService{Store: store},
		Users:         &service.UserService{Store: store},
		Tokens:        tokens,
	}
	api.Register(s.Mux)

	s.Mux.HandleFunc("/healthz", httpserver.Healthz()).Methods(http.MethodGet)
	s.Mux.HandleFunc("/readyz", httpserver.Readyz(2*time.Second, store.Ping)).Methods(http.MethodGet)
	s.Mux.Use(httpserver.Metrics(observability.APIRequests))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpserver.Logging(s.Mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("api shutdown", "signal", sig.String())
		// stops running broadcasts; unsent recipients are recorded as failed
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("api listening", "port", cfg.Port, "dispatch_mode", cfg.DispatchMode, "pacing", cfg.DispatchPacing)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("api server failed", "err", err)
		os.Exit(1)
	}

	db.Close()
}

func migrate(ctx context.Context, dsn string) error {
	sqlDB, err := pg.OpenSQL(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return pg.Migrate(ctx, sqlDB, "up")
}
