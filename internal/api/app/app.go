package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slicelab/pizzeria/internal/api/auth"
	"github.com/slicelab/pizzeria/internal/api/blob"
	httpapi "github.com/slicelab/pizzeria/internal/api/http"
	"github.com/slicelab/pizzeria/internal/api/notify"
	"github.com/slicelab/pizzeria/internal/api/service"
	"github.com/slicelab/pizzeria/internal/api/session"
	"github.com/slicelab/pizzeria/internal/api/store"
	"github.com/slicelab/pizzeria/internal/api/store/drivers/sqlite"
	"github.com/slicelab/pizzeria/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the pizzeria API with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	cache    *redis.Client
	sessions *session.Store
	tokens   *auth.TokenService
	broker   *notify.Broker

	// Services
	userService    *service.UserService
	pizzaService   *service.PizzaService
	catalogService *service.CatalogService
	ticketService  *service.StreamTicketService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "pizzeria-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCache(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initBroker(); err != nil {
		_ = app.cache.Close()
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("pizzeria api starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down pizzeria api...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the broker loops before the cache connection goes away.
	app.broker.Close()

	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing session cache", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("pizzeria api stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCache connects to the Redis session cache. Startup fails fast if the
// cache is unreachable: without it nobody can authenticate.
func (app *Application) initCache() error {
	rdb := redis.NewClient(&redis.Options{
		Addr: app.cfg.RedisAddr,
		DB:   app.cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("failed to connect to session cache at %s: %w", app.cfg.RedisAddr, err)
	}

	app.cache = rdb
	app.sessions = session.NewStore(rdb)
	return nil
}

func (app *Application) initBroker() error {
	broker, err := notify.NewBroker(notify.NewRedisBus(app.cache), app.logger)
	if err != nil {
		return fmt.Errorf("failed to start notification broker: %w", err)
	}
	app.broker = broker
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.tokens = &auth.TokenService{
		Sessions: app.sessions,
		TTL:      app.cfg.SessionTTL,
	}

	app.userService = &service.UserService{
		Store:  app.db,
		Tokens: app.tokens,
	}
	app.pizzaService = &service.PizzaService{
		Store:  app.db,
		Broker: app.broker,
		Uploads: &blob.LocalDir{
			Dir:     app.cfg.UploadDir,
			BaseURL: app.cfg.UploadURL,
		},
		Logger: app.logger,
	}
	app.catalogService = &service.CatalogService{Store: app.db}
	app.ticketService = &service.StreamTicketService{Sessions: app.sessions}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens,
		app.db,
		app.cache,
		BuildVersion,
		app.logger,
	)

	// Wire services to router
	router.UserService = app.userService
	router.PizzaService = app.pizzaService
	router.CatalogService = app.catalogService
	router.TicketService = app.ticketService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
