package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"content-backend/internal/casestudies"
	"content-backend/internal/posts"
	"content-backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeeder() (*seeder, *posts.MemoryRepository, *casestudies.MemoryRepository) {
	val := validation.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	postRepo := posts.NewMemoryRepository()
	casesRepo := casestudies.NewMemoryRepository()
	return &seeder{
		posts:     posts.NewService(postRepo, val, nil, time.Minute, time.UTC, log),
		postRepo:  postRepo,
		cases:     casestudies.NewService(casesRepo, val, nil, time.Minute, time.UTC, log),
		casesRepo: casesRepo,
		log:       log,
	}, postRepo, casesRepo
}

func TestSeedBundledFixtures(t *testing.T) {
	fh, err := os.Open("fixtures.yaml")
	require.NoError(t, err)
	defer fh.Close()

	fixtures, err := loadFixtures(fh)
	require.NoError(t, err)

	s, postRepo, _ := newTestSeeder()
	ctx := context.Background()

	report, err := s.run(ctx, fixtures)
	require.NoError(t, err)
	assert.Equal(t, 3, report.PostsCreated)
	assert.Equal(t, 2, report.CaseStudiesCreated)

	hello, err := postRepo.GetBySlug(ctx, "hello-world", false)
	require.NoError(t, err)
	shipping, err := postRepo.GetBySlug(ctx, "shipping-weekly", false)
	require.NoError(t, err)
	assert.Equal(t, []string{shipping.ID}, hello.RelatedArticles)
	assert.Equal(t, []string{hello.ID}, shipping.RelatedArticles)

	draft, err := postRepo.GetBySlug(ctx, "draft-notes-on-observability", false)
	require.NoError(t, err)
	assert.False(t, draft.IsActive)

	again, err := s.run(ctx, fixtures)
	require.NoError(t, err)
	assert.Equal(t, 0, again.PostsCreated)
	assert.Equal(t, 3, again.PostsSkipped)
	assert.Equal(t, 2, again.CaseStudiesSkipped)
}

func TestSeedUnknownRelatedSlugIsSkipped(t *testing.T) {
	fixtures, err := loadFixtures(strings.NewReader(`
posts:
  - slug: only
    title: Only
    content: {blocks: [{type: paragraph, text: hi}]}
    related: [missing]
`))
	require.NoError(t, err)

	s, postRepo, _ := newTestSeeder()
	_, err = s.run(context.Background(), fixtures)
	require.NoError(t, err)

	only, err := postRepo.GetBySlug(context.Background(), "only", false)
	require.NoError(t, err)
	assert.Empty(t, only.RelatedArticles)
}

func TestSeedSelfRelatedSlugIsSkipped(t *testing.T) {
	fixtures, err := loadFixtures(strings.NewReader(`
posts:
  - slug: first
    title: First
    content: {blocks: []}
    related: [first, second]
  - slug: second
    title: Second
    content: {blocks: []}
    related: [" First "]
`))
	require.NoError(t, err)

	s, postRepo, _ := newTestSeeder()
	ctx := context.Background()
	report, err := s.run(ctx, fixtures)
	require.NoError(t, err)
	assert.Equal(t, 2, report.PostsCreated)

	first, err := postRepo.GetBySlug(ctx, "first", false)
	require.NoError(t, err)
	second, err := postRepo.GetBySlug(ctx, "second", false)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, first.RelatedArticles)
	assert.Equal(t, []string{first.ID}, second.RelatedArticles)
}

func TestLoadFixturesRejectsUnknownFields(t *testing.T) {
	_, err := loadFixtures(strings.NewReader("posts:\n  - slug: a\n    titel: typo\n"))
	assert.Error(t, err)
}

func TestSeedInvalidFixtureFails(t *testing.T) {
	fixtures, err := loadFixtures(strings.NewReader("case_studies:\n  - slug: x\n    title: X\n"))
	require.NoError(t, err)

	s, _, _ := newTestSeeder()
	_, err = s.run(context.Background(), fixtures)
	assert.Error(t, err)
}
