package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Slot is a read-through entry for one key. Every Invalidate bumps a generation, and
// Fill drops a value whose load started before the latest Invalidate, so a slow read
// can never put back a list that a mutation already cleared.
type Slot struct {
	store Cache
	key   string
	ttl   time.Duration
	log   *slog.Logger

	mu  sync.Mutex
	gen uint64
}

func NewSlot(store Cache, key string, ttl time.Duration, log *slog.Logger) *Slot {
	if store == nil {
		store = NewNoop()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Slot{
		store: store,
		key:   key,
		ttl:   ttl,
		log:   log,
	}
}

// Get returns the cached payload. Store errors count as a miss.
func (s *Slot) Get(ctx context.Context) ([]byte, bool) {
	payload, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("cache get: failed", slog.String("key", s.key), slog.String("error", err.Error()))
		return nil, false
	}
	return payload, ok
}

// Generation must be read before loading the value that will be passed to Fill.
func (s *Slot) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Fill stores payload unless an Invalidate happened since gen was read. It reports
// whether the payload was written.
func (s *Slot) Fill(ctx context.Context, gen uint64, payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	if err := s.store.Set(ctx, s.key, payload, s.ttl); err != nil {
		s.log.Warn("cache set: failed", slog.String("key", s.key), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (s *Slot) Invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if err := s.store.Delete(context.WithoutCancel(ctx), s.key); err != nil {
		s.log.Error("cache invalidate: failed", slog.String("key", s.key), slog.String("error", err.Error()))
	}
}
