// Package httpapi exposes the credential and task stores over the REST
// contract consumed by the client application.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avoronov/todovault/internal/logging"
	"github.com/avoronov/todovault/internal/server/config"
	"github.com/avoronov/todovault/internal/server/todos"
	"github.com/avoronov/todovault/internal/server/users"
)

// MailSender is the slice of the mailer used by the API surface; tests
// substitute a recording fake.
type MailSender interface {
	Send(to, templateFile string, data any) error
}

type Server struct {
	config *config.Config
	logger logging.Logger
	users  *users.Service
	todos  *todos.Service
	mailer MailSender
}

func NewServer(cfg *config.Config, l logging.Logger, us *users.Service, ts *todos.Service, m MailSender) *Server {
	return &Server{
		config: cfg,
		logger: l.With("module", "httpapi"),
		users:  us,
		todos:  ts,
		mailer: m,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.EndpointAddr,
		Handler:      s.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "starting HTTP server", "address", s.config.EndpointAddr, "env", s.config.Env)

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
