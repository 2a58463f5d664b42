package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"content-backend/internal/auth"
	"content-backend/internal/config"
	"content-backend/internal/middleware"
	"content-backend/internal/validation"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server hosts the endpoints that are not tied to a content type: admin session
// management and health.
type Server struct {
	Cfg    *config.Config
	Val    *validation.Validator
	Log    *slog.Logger
	Auth   *auth.Manager
	Checks map[string]Pinger
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
