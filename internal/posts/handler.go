package posts

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

func (h *Handler) PublicList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.ListPublished(ctx)
	if err != nil {
		h.writeError(w, log, "posts public list", err)
		return
	}

	log.Info("posts public list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

func (h *Handler) PublicGetBySlug(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		log.Warn("posts public get: missing slug")
		transport.WriteError(w, http.StatusBadRequest, "missing slug", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.GetPublished(ctx, slug)
	if err != nil {
		h.writeError(w, log.With(slog.String("slug", slug)), "posts public get", err)
		return
	}

	log.Info("posts public get: ok", slog.String("slug", slug), slog.Int("related", len(item.Related)))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	query := r.URL.Query()
	limit, offset, err := httpx.ParseLimitOffset(query, 50, 500)
	if err != nil {
		log.Warn("admin posts list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	active, err := httpx.ParseOptionalBool(query, "active")
	if err != nil {
		log.Warn("admin posts list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	sort, ok := ParseSort(query.Get("sort"))
	if !ok {
		log.Warn("admin posts list: invalid sort")
		transport.WriteError(w, http.StatusBadRequest, "invalid sort", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.ListAdmin(ctx, AdminListFilter{Active: active, Sort: sort}, limit, offset)
	if err != nil {
		h.writeError(w, log, "admin posts list", err)
		return
	}

	log.Info("admin posts list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, log, "admin posts get")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeError(w, log.With(slog.String("post_id", id)), "admin posts get", err)
		return
	}

	log.Info("admin posts get: ok", slog.String("post_id", id))
	transport.WriteJSON(w, http.StatusOK, item)
}

// AdminCandidates lists posts that can be attached as related articles. The
// optional selected parameter (comma separated ids) is echoed back without the ids
// that no longer exist.
func (h *Handler) AdminCandidates(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	query := r.URL.Query()
	exclude := strings.TrimSpace(query.Get("exclude"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	candidates, err := h.service.ListCandidates(ctx, exclude)
	if err != nil {
		h.writeError(w, log, "admin posts candidates", err)
		return
	}

	selected := PruneSelection(splitIDs(query.Get("selected")), candidates)
	items := FilterBySearch(candidates, query.Get("q"))

	log.Info("admin posts candidates: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":    items,
		"selected": selected,
	})
}

func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin posts create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeError(w, log.With(slog.String("slug", req.Slug)), "admin posts create", err)
		return
	}

	log.Info("admin posts create: ok", slog.String("post_id", item.ID), slog.String("slug", item.Slug))
	transport.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, log, "admin posts update")
	if !ok {
		return
	}

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin posts update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, id, req)
	if err != nil {
		h.writeError(w, log.With(slog.String("post_id", id)), "admin posts update", err)
		return
	}

	log.Info("admin posts update: ok", slog.String("post_id", id), slog.String("slug", item.Slug))
	transport.WriteJSON(w, http.StatusOK, item)
}

// AdminSetActive toggles visibility when called without a body, or sets it when the
// body carries is_active.
func (h *Handler) AdminSetActive(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, log, "admin posts active")
	if !ok {
		return
	}

	// an empty body, chunked or not, means toggle
	var req activeRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("admin posts active: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		item Post
		err  error
	)
	if req.IsActive == nil {
		item, err = h.service.ToggleActive(ctx, id)
	} else {
		item, err = h.service.SetActive(ctx, id, *req.IsActive)
	}
	if err != nil {
		h.writeError(w, log.With(slog.String("post_id", id)), "admin posts active", err)
		return
	}

	log.Info("admin posts active: ok", slog.String("post_id", id), slog.Bool("is_active", item.IsActive))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, log, "admin posts delete")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		h.writeError(w, log.With(slog.String("post_id", id)), "admin posts delete", err)
		return
	}

	log.Info("admin posts delete: ok", slog.String("post_id", id))
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
		transport.WriteError(w, http.StatusNotFound, "post not found", nil)
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

func splitIDs(raw string) []string {
	ids := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
