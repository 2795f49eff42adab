package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/avoronov/todovault/internal/common"
)

const maxRequestBody = 1 << 20

type envelope map[string]any

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// readJSON decodes the request body into dst, rejecting unknown junk
// gently: any malformed payload comes back as a single validation error.
func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrorValidation)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON object", common.ErrorValidation)
	}
	return nil
}

// writeError renders the contract's error shape: {"message": "..."}.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, status int) {
	s.writeJSON(w, status, envelope{"message": err.Error()})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	msg := "the server encountered a problem and could not process your request"
	if s.config.Env == "development" {
		msg = err.Error()
	}
	s.writeJSON(w, http.StatusInternalServerError, envelope{"message": msg})
}

// replyError maps domain sentinels onto HTTP statuses. Anything not in
// the taxonomy is a 500.
func (s *Server) replyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrorInvalidCredentials),
		errors.Is(err, common.ErrorInvalidToken):
		s.writeError(w, r, err, http.StatusBadRequest)
	case errors.Is(err, common.ErrorNotFound):
		s.writeError(w, r, err, http.StatusNotFound)
	default:
		s.serverError(w, r, err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{
		"status":      "available",
		"environment": s.config.Env,
	})
}
