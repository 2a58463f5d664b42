package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"content-backend/internal/transport"
)

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.Checks))
	for name := range s.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := s.Checks[name].Ping(ctx); err != nil {
			log.Warn("health: check failed", slog.String("check", name), slog.String("error", err.Error()))
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	transport.WriteJSON(w, status, map[string]interface{}{
		"status": overall,
		"checks": checks,
	})
}
