package posts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository keeps posts in process memory. It backs STORE_DRIVER=memory and
// the tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Post
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]Post)}
}

func (r *MemoryRepository) Create(ctx context.Context, item Post) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return Post{}, ErrSlugExists
	}
	if r.slugTaken(item.Slug, item.ID) {
		return Post{}, ErrSlugExists
	}
	item.RelatedArticles = r.existing(item.RelatedArticles, item.ID)
	r.items[item.ID] = clonePost(item)
	return clonePost(item), nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return clonePost(item), nil
}

func (r *MemoryRepository) GetByIDs(ctx context.Context, ids []string) ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Post, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := r.items[id]; ok {
			items = append(items, clonePost(item))
		}
	}
	return items, nil
}

func (r *MemoryRepository) GetBySlug(ctx context.Context, slug string, activeOnly bool) (Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Slug != slug {
			continue
		}
		if activeOnly && !item.IsActive {
			return Post{}, ErrNotFound
		}
		return clonePost(item), nil
	}
	return Post{}, ErrNotFound
}

func (r *MemoryRepository) List(ctx context.Context, opts ListOptions) ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.matching(opts)
	sortPosts(items, opts.Sort)
	return paginate(items, opts.Limit, opts.Offset), nil
}

func (r *MemoryRepository) Count(ctx context.Context, opts ListOptions) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.matching(opts))), nil
}

func (r *MemoryRepository) ListSummaries(ctx context.Context, excludeID string) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Summary, 0, len(r.items))
	for _, item := range r.items {
		if excludeID != "" && item.ID == excludeID {
			continue
		}
		items = append(items, Summary{ID: item.ID, Title: item.Title, Slug: item.Slug})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Title != items[j].Title {
			return items[i].Title < items[j].Title
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *MemoryRepository) Update(ctx context.Context, item Post) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return Post{}, ErrNotFound
	}
	if r.slugTaken(item.Slug, item.ID) {
		return Post{}, ErrSlugExists
	}
	item.RelatedArticles = r.existing(item.RelatedArticles, item.ID)
	r.items[item.ID] = clonePost(item)
	return clonePost(item), nil
}

func (r *MemoryRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	item.IsActive = active
	item.UpdatedAt = at
	if active && item.PublishedAt == nil {
		published := at
		item.PublishedAt = &published
	}
	r.items[id] = item
	return clonePost(item), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	for otherID, other := range r.items {
		if otherID == id {
			continue
		}
		if pruned, changed := without(other.RelatedArticles, id); changed {
			other.RelatedArticles = pruned
			r.items[otherID] = other
		}
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

// existing keeps the ids that are stored right now. Callers hold the write lock.
func (r *MemoryRepository) existing(ids []string, selfID string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := r.items[id]; ok && id != selfID {
			out = append(out, id)
		}
	}
	return out
}

func (r *MemoryRepository) matching(opts ListOptions) []Post {
	items := make([]Post, 0, len(r.items))
	for _, item := range r.items {
		if opts.Active != nil && item.IsActive != *opts.Active {
			continue
		}
		if opts.ExcludeID != "" && item.ID == opts.ExcludeID {
			continue
		}
		items = append(items, clonePost(item))
	}
	return items
}

func sortPosts(items []Post, s Sort) {
	newest := func(a, b Post) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch s {
		case SortTitle:
			if a.Title != b.Title {
				return strings.Compare(a.Title, b.Title) < 0
			}
			return a.ID < b.ID
		case SortPublished:
			switch {
			case a.PublishedAt == nil && b.PublishedAt == nil:
				return newest(a, b)
			case a.PublishedAt == nil:
				return false
			case b.PublishedAt == nil:
				return true
			case !a.PublishedAt.Equal(*b.PublishedAt):
				return a.PublishedAt.After(*b.PublishedAt)
			}
			return newest(a, b)
		default:
			return newest(a, b)
		}
	})
}

func paginate(items []Post, limit, offset int64) []Post {
	if offset >= int64(len(items)) {
		return []Post{}
	}
	items = items[offset:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

func without(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids))
	changed := false
	for _, v := range ids {
		if v == id {
			changed = true
			continue
		}
		out = append(out, v)
	}
	return out, changed
}

func clonePost(p Post) Post {
	if p.Content != nil {
		p.Content = append(Document(nil), p.Content...)
	}
	if p.RelatedArticles != nil {
		p.RelatedArticles = append(make([]string, 0, len(p.RelatedArticles)), p.RelatedArticles...)
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		p.PublishedAt = &t
	}
	return p
}
