package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/rad_plants/internal/catalog"
	"github.com/Skotchmaster/rad_plants/internal/checkout"
	"github.com/Skotchmaster/rad_plants/internal/config"
	"github.com/Skotchmaster/rad_plants/internal/contact"
	"github.com/Skotchmaster/rad_plants/internal/handlers"
	"github.com/Skotchmaster/rad_plants/internal/logging"
	"github.com/Skotchmaster/rad_plants/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/rad_plants/internal/middleware/logging"
	sessionmw "github.com/Skotchmaster/rad_plants/internal/middleware/session"
	"github.com/Skotchmaster/rad_plants/internal/newsletter"
	"github.com/Skotchmaster/rad_plants/internal/session"
	httpserver "github.com/Skotchmaster/rad_plants/internal/transport/http"
	"github.com/Skotchmaster/rad_plants/internal/validation"
)

const (
	sweepInterval = 10 * time.Minute
	eventBuffer   = 1024
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx := context.Background()

	back, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("kv init (%s): %v", cfg.KVBackend, err)
	}

	prod := openPublisher(cfg, logger)

	store := catalog.NewStore(catalog.Seed())
	searcher := openSearcher(ctx, cfg, store, logger)

	if cfg.Production() {
		config.MustNonEmptyBytes(cfg.SessionSecret, "SESSION_SECRET")
	}
	if len(cfg.SessionSecret) == 0 {
		cfg.SessionSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.SessionSecret); err != nil {
			log.Fatalf("session secret: %v", err)
		}
		logger.Warn("session_secret_generated", "reason", "SESSION_SECRET empty, sessions will not survive a restart")
	}

	events := &handlers.Events{Producer: prod, Logger: logger}
	events.Start(eventBuffer)
	registry := session.NewRegistry(session.Options{
		Store:           back.store,
		DefaultCurrency: cfg.DefaultCurrency,
		Submitter: &checkout.SimulatedSubmitter{
			Delay:  cfg.OrderDelay,
			Policy: checkout.Probability(cfg.OrderSuccessRate, nil),
		},
		IdleTTL:      cfg.SessionTTL,
		OnCartChange: events.CartChanged,
		OnOrder:      events.OrderOutcome,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = &validation.Echo{V: validation.New()}
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	products := &handlers.ProductHandler{Catalog: store}
	deps := httpserver.Deps{
		PageHandler:       &handlers.PageHandler{Catalog: store, Products: products},
		ProductHandler:    products,
		SearchHandler:     &handlers.SearchHandler{Searcher: searcher},
		CurrencyHandler:   &handlers.CurrencyHandler{},
		CartHandler:       &handlers.CartHandler{Catalog: store},
		CheckoutHandler:   &handlers.CheckoutHandler{},
		OrderHandler:      &handlers.OrderHandler{},
		NewsletterHandler: &handlers.NewsletterHandler{Service: newsletter.NewService(cfg.FormDelay), Events: events},
		ContactHandler:    &handlers.ContactHandler{Service: contact.NewService(cfg.FormDelay), Events: events},
		Session: sessionmw.Middleware(sessionmw.Config{
			Registry: registry,
			Tokens:   session.Tokens{Secret: cfg.SessionSecret, TTL: cfg.SessionTTL},
		}),
		Ready: back.ready,
	}
	if cfg.CSRFEnabled {
		deps.CSRF = csrf.Middleware(csrf.DefaultConfig())
	}

	httpserver.Register(e, &deps)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go func() {
		t := time.NewTicker(sweepInterval)
		defer t.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-t.C:
				if n := registry.Sweep(); n > 0 {
					logger.Info("sessions_swept", "dropped", n, "live", registry.Len())
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", srv.Addr, "kv_backend", cfg.KVBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	go func() {
		<-quit
		logger.Warn("force_exit")
		os.Exit(1)
	}()

	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	stopSweep()

	events.Close()
	if err := prod.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	back.close(logger)

	logger.Info("shutdown_complete")
}
