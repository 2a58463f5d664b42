package casestudies

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"content-backend/internal/apperr"
	"content-backend/internal/cache"
	"content-backend/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MoreLimit caps the "more case studies" set shown on a detail page.
const MoreLimit = 3

const publicListKey = "case-studies:public"

var (
	ErrNotFound   = fmt.Errorf("case study %w", apperr.ErrNotFound)
	ErrSlugExists = fmt.Errorf("slug already exists: %w", apperr.ErrConflict)
)

type Service struct {
	repo   Repository
	val    *validation.Validator
	public *cache.Slot
	now    func() time.Time
}

func NewService(repo Repository, val *validation.Validator, store cache.Cache, cacheTTL time.Duration, location *time.Location, log *slog.Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:   repo,
		val:    val,
		public: cache.NewSlot(store, publicListKey, cacheTTL, log),
		now:    func() time.Time { return time.Now().In(location).Truncate(time.Millisecond) },
	}
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (CaseStudy, error) {
	req = req.normalized()
	if err := s.val.Check(req); err != nil {
		return CaseStudy{}, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.now()
	item := fromRequest(req)
	item.ID = primitive.NewObjectID().Hex()
	item.IsActive = isActive
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.repo.Create(ctx, item); err != nil {
		return CaseStudy{}, err
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (CaseStudy, error) {
	req = req.normalized()
	if err := s.val.Check(req); err != nil {
		return CaseStudy{}, err
	}

	current, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return CaseStudy{}, err
	}

	item := fromRequest(req)
	item.ID = current.ID
	item.IsActive = current.IsActive
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return CaseStudy{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) ToggleActive(ctx context.Context, id string) (CaseStudy, error) {
	current, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return CaseStudy{}, err
	}
	return s.SetActive(ctx, current.ID, !current.IsActive)
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (CaseStudy, error) {
	updated, err := s.repo.SetActive(ctx, strings.TrimSpace(id), active, s.now())
	if err != nil {
		return CaseStudy{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (CaseStudy, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) ListAdmin(ctx context.Context, filter AdminListFilter, limit, offset int64) ([]CaseStudy, int64, error) {
	opts := ListOptions{
		Active:   filter.Active,
		Industry: strings.TrimSpace(filter.Industry),
		Limit:    limit,
		Offset:   offset,
	}
	items, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListPublished returns every active case study, newest first. The result is cached
// until the next mutation.
func (s *Service) ListPublished(ctx context.Context) ([]CaseStudy, error) {
	if cached, ok := s.public.Get(ctx); ok {
		var items []CaseStudy
		if err := json.Unmarshal(cached, &items); err == nil {
			return items, nil
		}
	}

	gen := s.public.Generation()
	items, err := s.repo.List(ctx, ListOptions{Active: activeOnly()})
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(items); err == nil {
		s.public.Fill(ctx, gen, payload)
	}
	return items, nil
}

// GetPublished resolves a public slug together with the most recent other active
// case studies.
func (s *Service) GetPublished(ctx context.Context, slug string) (Published, error) {
	item, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug), true)
	if err != nil {
		return Published{}, err
	}

	more, err := s.repo.List(ctx, ListOptions{
		Active:    activeOnly(),
		ExcludeID: item.ID,
		Limit:     MoreLimit,
	})
	if err != nil {
		return Published{}, err
	}

	cards := make([]Card, 0, len(more))
	for _, c := range more {
		cards = append(cards, c.Card())
	}
	return Published{CaseStudy: item, Related: cards}, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	s.public.Invalidate(ctx)
}

func fromRequest(req UpsertRequest) CaseStudy {
	return CaseStudy{
		Slug:         req.Slug,
		Title:        req.Title,
		Subtitle:     req.Subtitle,
		Client:       req.Client,
		Industry:     req.Industry,
		Location:     req.Location,
		Overview:     req.Overview,
		Services:     req.Services,
		ImageURL:     req.ImageURL,
		Stats:        req.Stats,
		Gallery:      req.Gallery,
		Technologies: req.Technologies,
	}
}
