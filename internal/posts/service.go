package posts

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

// RelatedLimit caps the related set shown on a detail page.
const RelatedLimit = 3

const publicListKey = "posts:public"

var (
	ErrNotFound   = fmt.Errorf("post %w", apperr.ErrNotFound)
	ErrSlugExists = fmt.Errorf("slug already exists: %w", apperr.ErrConflict)
)

type Service struct {
	repo   Repository
	val    *validation.Validator
	public *cache.Slot
	now    func() time.Time
}

// NewService wires the post workflow. Timestamps are cut to milliseconds, the
// precision Mongo stores, so a write returns what a later read yields.
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

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Post, error) {
	req = req.normalized()
	if err := s.val.Check(req); err != nil {
		return Post{}, err
	}

	id := primitive.NewObjectID().Hex()
	related, err := s.resolveRelated(ctx, id, req.RelatedArticles)
	if err != nil {
		return Post{}, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.now()
	item := Post{
		ID:              id,
		Slug:            req.Slug,
		Title:           req.Title,
		Excerpt:         req.Excerpt,
		CoverImage:      req.CoverImage,
		Content:         req.Content,
		IsActive:        isActive,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		RelatedArticles: related,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if isActive {
		item.PublishedAt = &now
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return Post{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Post, error) {
	id = strings.TrimSpace(id)
	req = req.normalized()
	if err := s.val.Check(req); err != nil {
		return Post{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Post{}, err
	}

	related, err := s.resolveRelated(ctx, id, req.RelatedArticles)
	if err != nil {
		return Post{}, err
	}

	isActive := current.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.now()
	item := Post{
		ID:              current.ID,
		Slug:            req.Slug,
		Title:           req.Title,
		Excerpt:         req.Excerpt,
		CoverImage:      req.CoverImage,
		Content:         req.Content,
		IsActive:        isActive,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		RelatedArticles: related,
		CreatedAt:       current.CreatedAt,
		UpdatedAt:       now,
		PublishedAt:     current.PublishedAt,
	}
	if isActive && item.PublishedAt == nil {
		item.PublishedAt = &now
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return Post{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// ToggleActive flips the visibility flag and returns the updated post.
func (s *Service) ToggleActive(ctx context.Context, id string) (Post, error) {
	current, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Post{}, err
	}
	updated, err := s.repo.SetActive(ctx, current.ID, !current.IsActive, s.now())
	if err != nil {
		return Post{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (Post, error) {
	updated, err := s.repo.SetActive(ctx, strings.TrimSpace(id), active, s.now())
	if err != nil {
		return Post{}, err
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

func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) ListAdmin(ctx context.Context, filter AdminListFilter, limit, offset int64) ([]Post, int64, error) {
	opts := ListOptions{
		Active: filter.Active,
		Sort:   filter.Sort,
		Limit:  limit,
		Offset: offset,
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

// ListPublished returns every active post, newest first. The result is cached until
// the next mutation.
func (s *Service) ListPublished(ctx context.Context) ([]Post, error) {
	if cached, ok := s.public.Get(ctx); ok {
		var items []Post
		if err := json.Unmarshal(cached, &items); err == nil {
			return items, nil
		}
	}

	gen := s.public.Generation()
	items, err := s.repo.List(ctx, ListOptions{Active: activeOnly(), Sort: SortNewest})
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(items); err == nil {
		s.public.Fill(ctx, gen, payload)
	}
	return items, nil
}

// GetPublished resolves a public slug. Inactive and missing posts both yield
// ErrNotFound.
func (s *Service) GetPublished(ctx context.Context, slug string) (Published, error) {
	item, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug), true)
	if err != nil {
		return Published{}, err
	}

	related, err := s.relatedFor(ctx, item)
	if err != nil {
		return Published{}, err
	}

	teasers := make([]Teaser, 0, len(related))
	for _, p := range related {
		teasers = append(teasers, p.Teaser())
	}
	return Published{
		Post:    item,
		SEO:     ResolveSEO(item),
		Related: teasers,
	}, nil
}

// ListCandidates lists every post that may be attached as related, minus excludeID.
func (s *Service) ListCandidates(ctx context.Context, excludeID string) ([]Summary, error) {
	return s.repo.ListSummaries(ctx, strings.TrimSpace(excludeID))
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// relatedFor prefers the curated set (active targets only, curated order) and falls
// back to the most recent other active posts when curation yields nothing.
func (s *Service) relatedFor(ctx context.Context, item Post) ([]Post, error) {
	if len(item.RelatedArticles) > 0 {
		found, err := s.repo.GetByIDs(ctx, item.RelatedArticles)
		if err != nil {
			return nil, err
		}
		if picked := pickCurated(item, found); len(picked) > 0 {
			return picked, nil
		}
	}

	recent, err := s.repo.List(ctx, ListOptions{
		Active:    activeOnly(),
		ExcludeID: item.ID,
		Sort:      SortNewest,
		Limit:     RelatedLimit,
	})
	if err != nil {
		return nil, err
	}
	return recent, nil
}

func pickCurated(item Post, found []Post) []Post {
	byID := make(map[string]Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	picked := make([]Post, 0, RelatedLimit)
	for _, id := range NewSelection(item.RelatedArticles...).IDs() {
		if len(picked) == RelatedLimit {
			break
		}
		p, ok := byID[id]
		if !ok || !p.IsActive || p.ID == item.ID {
			continue
		}
		picked = append(picked, p)
	}
	return picked
}

// resolveRelated dedupes ids, rejects a self reference and silently drops ids that
// no longer exist. The repository prunes again inside the write, which covers a
// delete landing after this check.
func (s *Service) resolveRelated(ctx context.Context, selfID string, ids []string) ([]string, error) {
	sel := NewSelection(ids...)
	if sel.Has(selfID) {
		return nil, apperr.NewValidation("related_articles", "self_reference")
	}
	if sel.Len() == 0 {
		return []string{}, nil
	}

	found, err := s.repo.GetByIDs(ctx, sel.IDs())
	if err != nil {
		return nil, err
	}
	candidates := make([]Summary, 0, len(found))
	for _, p := range found {
		candidates = append(candidates, Summary{ID: p.ID, Title: p.Title, Slug: p.Slug})
	}
	return PruneSelection(sel.IDs(), candidates), nil
}

func (s *Service) invalidate(ctx context.Context) {
	s.public.Invalidate(ctx)
}
