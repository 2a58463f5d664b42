package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCache struct {
	*MemoryCache
}

func (brokenCache) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

func TestSlotFillDroppedAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	slot := NewSlot(store, "list", time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	gen := slot.Generation()
	slot.Invalidate(ctx)
	assert.False(t, slot.Fill(ctx, gen, []byte("stale")))

	_, ok := slot.Get(ctx)
	assert.False(t, ok)

	gen = slot.Generation()
	assert.True(t, slot.Fill(ctx, gen, []byte("fresh")))
	got, ok := slot.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, []byte("fresh"), got)
}

func TestSlotInvalidateLogsStoreErrors(t *testing.T) {
	var buf bytes.Buffer
	slot := NewSlot(brokenCache{NewMemory()}, "list", time.Minute, slog.New(slog.NewTextHandler(&buf, nil)))

	slot.Invalidate(context.Background())

	assert.Contains(t, buf.String(), "cache invalidate: failed")
	assert.Contains(t, buf.String(), "connection refused")
}
