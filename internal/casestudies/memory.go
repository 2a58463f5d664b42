package casestudies

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]CaseStudy
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]CaseStudy)}
}

func (r *MemoryRepository) Create(ctx context.Context, item CaseStudy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists || r.slugTaken(item.Slug, item.ID) {
		return ErrSlugExists
	}
	r.items[item.ID] = cloneCaseStudy(item)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (CaseStudy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return CaseStudy{}, ErrNotFound
	}
	return cloneCaseStudy(item), nil
}

func (r *MemoryRepository) GetBySlug(ctx context.Context, slug string, activeOnly bool) (CaseStudy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Slug == slug && (!activeOnly || item.IsActive) {
			return cloneCaseStudy(item), nil
		}
	}
	return CaseStudy{}, ErrNotFound
}

func (r *MemoryRepository) List(ctx context.Context, opts ListOptions) ([]CaseStudy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.matching(opts)
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})

	if opts.Offset >= int64(len(items)) {
		return []CaseStudy{}, nil
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < int64(len(items)) {
		items = items[:opts.Limit]
	}
	return items, nil
}

func (r *MemoryRepository) Count(ctx context.Context, opts ListOptions) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.matching(opts))), nil
}

func (r *MemoryRepository) Update(ctx context.Context, item CaseStudy) (CaseStudy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return CaseStudy{}, ErrNotFound
	}
	if r.slugTaken(item.Slug, item.ID) {
		return CaseStudy{}, ErrSlugExists
	}
	r.items[item.ID] = cloneCaseStudy(item)
	return cloneCaseStudy(item), nil
}

func (r *MemoryRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) (CaseStudy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return CaseStudy{}, ErrNotFound
	}
	item.IsActive = active
	item.UpdatedAt = at
	r.items[id] = item
	return cloneCaseStudy(item), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) slugTaken(slug, exceptID string) bool {
	for id, item := range r.items {
		if id != exceptID && item.Slug == slug {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) matching(opts ListOptions) []CaseStudy {
	items := make([]CaseStudy, 0, len(r.items))
	for _, item := range r.items {
		if opts.Active != nil && item.IsActive != *opts.Active {
			continue
		}
		if opts.ExcludeID != "" && item.ID == opts.ExcludeID {
			continue
		}
		if opts.Industry != "" && item.Industry != opts.Industry {
			continue
		}
		items = append(items, cloneCaseStudy(item))
	}
	return items
}

func cloneCaseStudy(c CaseStudy) CaseStudy {
	c.Services = cloneStrings(c.Services)
	c.Gallery = cloneStrings(c.Gallery)
	c.Technologies = cloneStrings(c.Technologies)
	if c.Stats != nil {
		c.Stats = append(make([]Stat, 0, len(c.Stats)), c.Stats...)
	}
	return c
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append(make([]string, 0, len(values)), values...)
}
