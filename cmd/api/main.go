package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/invoiceai/internal/auth"
	"github.com/MrJamesThe3rd/invoiceai/internal/auth/cache"
	"github.com/MrJamesThe3rd/invoiceai/internal/auth/supabase"
	"github.com/MrJamesThe3rd/invoiceai/internal/auth/token"
	"github.com/MrJamesThe3rd/invoiceai/internal/breaker"
	"github.com/MrJamesThe3rd/invoiceai/internal/client"
	clientStore "github.com/MrJamesThe3rd/invoiceai/internal/client/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/config"
	"github.com/MrJamesThe3rd/invoiceai/internal/database"
	"github.com/MrJamesThe3rd/invoiceai/internal/events"
	"github.com/MrJamesThe3rd/invoiceai/internal/export"
	invoiceaiHttp "github.com/MrJamesThe3rd/invoiceai/internal/http"
	clientHandler "github.com/MrJamesThe3rd/invoiceai/internal/http/client"
	eventsHandler "github.com/MrJamesThe3rd/invoiceai/internal/http/events"
	invoiceHandler "github.com/MrJamesThe3rd/invoiceai/internal/http/invoice"
	paymentHandler "github.com/MrJamesThe3rd/invoiceai/internal/http/payment"
	reportHandler "github.com/MrJamesThe3rd/invoiceai/internal/http/report"
	userHandler "github.com/MrJamesThe3rd/invoiceai/internal/http/user"
	"github.com/MrJamesThe3rd/invoiceai/internal/importer"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoiceai/internal/invoice/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
	paymentStore "github.com/MrJamesThe3rd/invoiceai/internal/payment/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/report"
	reportStore "github.com/MrJamesThe3rd/invoiceai/internal/report/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/user"
	userStore "github.com/MrJamesThe3rd/invoiceai/internal/user/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.App.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	verifier, rdb, err := newVerifier(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up authentication", "error", err)
		os.Exit(1)
	}

	if rdb != nil {
		defer rdb.Close()
	}

	hub := events.NewHub()
	go hub.Run(ctx)

	var (
		userService    = user.NewService(userStore.New(db))
		clientService  = client.NewService(clientStore.New(db))
		invoiceService = invoice.NewService(invoiceStore.New(db), clientService)
		paymentService = payment.NewService(paymentStore.New(db), invoiceService, hub)
		reportService  = report.NewService(reportStore.New(db))
		exportService  = export.NewService(invoiceService, clientService, paymentService)
		importService  = importer.NewService(invoiceService, paymentService)
	)

	router := invoiceaiHttp.New(
		invoiceaiHttp.Info{Name: cfg.App.Name, Version: cfg.App.Version, CORSOrigins: cfg.Server.CORSOrigins},
		auth.NewResolver(verifier, userService),
		invoiceaiHttp.Handlers{
			Clients:  clientHandler.NewHandler(clientService),
			Invoices: invoiceHandler.NewHandler(invoiceService, exportService),
			Payments: paymentHandler.NewHandler(paymentService, importService),
			Users:    userHandler.NewHandler(userService),
			Reports:  reportHandler.NewHandler(reportService),
			Events:   eventsHandler.NewHandler(hub, cfg.Server.CORSOrigins),
		},
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "auth_mode", cfg.Auth.Mode, "auth_cache", cfg.AuthCacheEnabled())

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

// newVerifier builds the credential verifier for the configured auth mode,
// wrapped in the Redis identity cache when one is configured. The returned
// client is nil without a cache.
func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, *redis.Client, error) {
	var verifier auth.Verifier

	switch cfg.Auth.Mode {
	case config.AuthModeJWT:
		verifier = token.New(cfg.Auth.JWTSecret)
	default:
		cb := breaker.New(breaker.Config{
			FailureThreshold: cfg.Auth.FailureThreshold,
			SuccessThreshold: cfg.Auth.SuccessThreshold,
			OpenTimeout:      cfg.Auth.OpenTimeout,
		})
		verifier = supabase.New(cfg.Auth.SupabaseURL, cfg.Auth.SupabaseAnonKey, cfg.Auth.Timeout, cb)
	}

	if !cfg.AuthCacheEnabled() {
		return verifier, nil, nil
	}

	rdb, err := cache.Connect(ctx, cfg.Cache.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	return cache.New(rdb, verifier, cfg.Cache.AuthTTL), rdb, nil
}
