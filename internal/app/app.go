package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agromarket/internal/auth"
	"agromarket/internal/config"
	"agromarket/internal/controller"
	"agromarket/internal/repository"
	"agromarket/internal/repository/memory"
	"agromarket/internal/repository/postgres"
	"agromarket/internal/router"
	"agromarket/internal/service"
)

type App struct {
	store      repository.Store
	service    *service.Service
	controller *controller.Controller
	logger     *zap.Logger
	stopSig    chan os.Signal
	cfg        *config.Config
	addr       net.Addr

	// Ready is closed once the server listens, Done once it has shut down.
	Ready chan struct{}
	Done  chan struct{}
}

type option func(*App)

func WithConfig(cfg *config.Config) option {
	return func(app *App) {
		app.cfg = cfg
	}
}

func WithLogger(logger *zap.Logger) option {
	return func(app *App) {
		app.logger = logger
	}
}

func WithStore(store repository.Store) option {
	return func(app *App) {
		app.store = store
	}
}

func NewApp(ctx context.Context, opts ...option) (*App, error) {
	var err error

	app := &App{
		stopSig: make(chan os.Signal, 2),
		Ready:   make(chan struct{}),
		Done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.logger == nil {
		app.logger = zap.NewNop()
	}

	if app.cfg == nil {
		cfg, err := config.NewConfig()
		if err != nil {
			return nil, err
		}
		app.cfg = cfg
	}

	if app.store == nil {
		app.store, err = NewStore(ctx, app.cfg, app.logger)
		if err != nil {
			return nil, err
		}
	}

	app.service = service.NewService(app.store, app.logger.Named("ledger"))
	app.controller = controller.NewController(app.service, auth.NewIssuer(app.cfg.JWTSecret), app.logger.Named("controller"))

	if app.cfg.SeedDemo {
		if app.cfg.Storage != config.StorageMemory {
			app.logger.Warn("demo seed is only loaded into the memory store", zap.String("storage", app.cfg.Storage))
		} else if err = SeedDemo(ctx, app.service); err != nil {
			app.store.Close()
			return nil, err
		}
	}

	return app, nil
}

// NewStore opens the store selected by cfg.Storage.
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StoragePostgres:
		store, err := postgres.NewStore(ctx, nil, &cfg.PostgresConfig, logger.Named("postgres"))
		if err != nil {
			return nil, fmt.Errorf("app.NewStore: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("app.NewStore: unknown storage %q", cfg.Storage)
	}
}

// Addr is the address the server listens on. Valid after Ready is closed.
func (app *App) Addr() string {
	if app.addr == nil {
		return app.cfg.ServerAddress
	}
	return app.addr.String()
}

func (app *App) Run() error {
	defer close(app.Done)

	signal.Notify(app.stopSig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(app.stopSig)

	listener, err := net.Listen("tcp", app.cfg.ServerAddress)
	if err != nil {
		app.closeStore()
		return fmt.Errorf("app.App.Run: %w", err)
	}
	app.addr = listener.Addr()

	server := http.Server{
		Handler:      router.NewRouter(app.controller, app.logger.Named("http")),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	app.logger.Info("server started, listening for connections", zap.String("address", app.Addr()), zap.String("storage", app.cfg.Storage))
	close(app.Ready)

	select {
	case sig := <-app.stopSig:
		app.logger.Info("received signal", zap.String("signal", sig.String()))
	case err = <-serveErr:
		app.logger.Error("http server error", zap.Error(err))
	}

	timeout, tcancel := context.WithTimeout(context.Background(), time.Second*10)
	defer tcancel()
	app.logger.Info("shutting down http server")
	if shutdownErr := server.Shutdown(timeout); shutdownErr != nil {
		app.logger.Error("http server shutdown error", zap.Error(shutdownErr))
	}

	app.closeStore()
	app.logger.Info("exiting app")
	return err
}

func (app *App) closeStore() {
	app.logger.Info("closing store")
	if err := app.store.Close(); err != nil {
		app.logger.Error("store closing error", zap.Error(err))
	}
}
