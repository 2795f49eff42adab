// Package server wires configuration, storage, services and the HTTP
// surface into a runnable application with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avoronov/todovault/internal/logging"
	"github.com/avoronov/todovault/internal/server/config"
	"github.com/avoronov/todovault/internal/server/httpapi"
	"github.com/avoronov/todovault/internal/server/mailer"
	"github.com/avoronov/todovault/internal/server/storage"
	"github.com/avoronov/todovault/internal/server/todos"
	"github.com/avoronov/todovault/internal/server/users"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	storage storage.RepositoryManager
	httpSrv *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rm, err := storage.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := users.NewService(rm.Users(), cfg, logger)
	ts := todos.NewService(rm.Todos())
	m := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPSender)

	return &App{
		config:  cfg,
		logger:  logger,
		storage: rm,
		httpSrv: httpapi.NewServer(cfg, logger, us, ts, m),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "env", app.config.Env)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpSrv.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.storage.Close(); err != nil {
		app.logger.Error(ctx, "error closing storage", "error", err.Error())
	}
}
