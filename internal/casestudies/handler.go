package casestudies

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"content-backend/internal/apperr"
	"content-backend/internal/httpx"
	"content-backend/internal/middleware"
	"content-backend/internal/transport"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	log     *slog.Logger
}

func NewHandler(service *Service, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

type activeRequest struct {
	IsActive *bool `json:"is_active"`
}

// PublicList returns the active case studies narrowed by the industry and q query
// parameters, together with the industry facets of the unfiltered list.
func (h *Handler) PublicList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	query := r.URL.Query()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	all, err := h.service.ListPublished(ctx)
	if err != nil {
		h.writeError(w, log, "case studies public list", err)
		return
	}

	items := Filter(all, query.Get("industry"), query.Get("q"))

	log.Info("case studies public list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":      items,
		"industries": Industries(all),
	})
}

func (h *Handler) PublicGetBySlug(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		log.Warn("case studies public get: missing slug")
		transport.WriteError(w, http.StatusBadRequest, "missing slug", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.GetPublished(ctx, slug)
	if err != nil {
		h.writeError(w, log.With(slog.String("slug", slug)), "case studies public get", err)
		return
	}

	log.Info("case studies public get: ok", slog.String("slug", slug))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	query := r.URL.Query()
	limit, offset, err := httpx.ParseLimitOffset(query, 50, 500)
	if err != nil {
		log.Warn("admin case studies list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	active, err := httpx.ParseOptionalBool(query, "active")
	if err != nil {
		log.Warn("admin case studies list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	filter := AdminListFilter{
		Active:   active,
		Industry: query.Get("industry"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.ListAdmin(ctx, filter, limit, offset)
	if err != nil {
		h.writeError(w, log, "admin case studies list", err)
		return
	}

	log.Info("admin case studies list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, log, "admin case studies get")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeError(w, log.With(slog.String("case_study_id", id)), "admin case studies get", err)
		return
	}

	log.Info("admin case studies get: ok", slog.String("case_study_id", id))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin case studies create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeError(w, log.With(slog.String("slug", req.Slug)), "admin case studies create", err)
		return
	}

	log.Info("admin case studies create: ok", slog.String("case_study_id", item.ID), slog.String("slug", item.Slug))
	transport.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, log, "admin case studies update")
	if !ok {
		return
	}

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin case studies update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, id, req)
	if err != nil {
		h.writeError(w, log.With(slog.String("case_study_id", id)), "admin case studies update", err)
		return
	}

	log.Info("admin case studies update: ok", slog.String("case_study_id", id), slog.String("slug", item.Slug))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) AdminSetActive(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, log, "admin case studies active")
	if !ok {
		return
	}

	// an empty body, chunked or not, means toggle
	var req activeRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("admin case studies active: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		item CaseStudy
		err  error
	)
	if req.IsActive == nil {
		item, err = h.service.ToggleActive(ctx, id)
	} else {
		item, err = h.service.SetActive(ctx, id, *req.IsActive)
	}
	if err != nil {
		h.writeError(w, log.With(slog.String("case_study_id", id)), "admin case studies active", err)
		return
	}

	log.Info("admin case studies active: ok", slog.String("case_study_id", id), slog.Bool("is_active", item.IsActive))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, log, "admin case studies delete")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		h.writeError(w, log.With(slog.String("case_study_id", id)), "admin case studies delete", err)
		return
	}

	log.Info("admin case studies delete: ok", slog.String("case_study_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn(op + ": missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return "", false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		log.Warn(op + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", ve.Fields)
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(op + ": not found")
		transport.WriteError(w, http.StatusNotFound, "case study not found", nil)
	case errors.Is(err, ErrSlugExists):
		log.Warn(op + ": slug exists")
		transport.WriteError(w, http.StatusConflict, "slug already exists", nil)
	case errors.Is(err, apperr.ErrUnavailable):
		log.Error(op+": store unavailable", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusServiceUnavailable, "store unavailable", nil)
	default:
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
