package posts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func commandNames(mt *mtest.T) []string {
	names := make([]string, 0)
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mt.Run("create duplicate slug", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: posts index: slug_1",
		}))

		_, err := repo.Create(ctx, Post{ID: "p1", Slug: "intro"})
		assert.ErrorIs(mt, err, ErrSlugExists)
	})

	mt.Run("create pulls related ids deleted meanwhile", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{{Key: "_id", Value: "a"}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		created, err := repo.Create(ctx, Post{ID: "p1", Slug: "intro", RelatedArticles: []string{"a", "gone"}})
		require.NoError(mt, err)
		assert.Equal(mt, []string{"a"}, created.RelatedArticles)
		assert.Equal(mt, []string{"insert", "find", "update"}, commandNames(mt))
	})

	mt.Run("create keeps related when all exist", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{{Key: "_id", Value: "a"}}),
		)

		created, err := repo.Create(ctx, Post{ID: "p1", Slug: "intro", RelatedArticles: []string{"a"}})
		require.NoError(mt, err)
		assert.Equal(mt, []string{"a"}, created.RelatedArticles)
		assert.Equal(mt, []string{"insert", "find"}, commandNames(mt))
	})

	mt.Run("update missing post", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Update(ctx, Post{ID: "missing", Slug: "x"})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update duplicate slug", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "E11000 duplicate key error collection: posts index: slug_1",
			Name:    "DuplicateKey",
		}))

		_, err := repo.Update(ctx, Post{ID: "p1", Slug: "taken"})
		assert.ErrorIs(mt, err, ErrSlugExists)
	})

	mt.Run("set active keeps first published_at", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll)
		first := at.Add(-24 * time.Hour)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "p1"},
			{Key: "slug", Value: "intro"},
			{Key: "is_active", Value: true},
			{Key: "updated_at", Value: at},
			{Key: "published_at", Value: first},
		}}))

		got, err := repo.SetActive(ctx, "p1", true, at)
		require.NoError(mt, err)
		assert.True(mt, got.IsActive)
		require.NotNil(mt, got.PublishedAt)
		assert.True(mt, first.Equal(*got.PublishedAt))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		update := evt.Command.Lookup("update")
		assert.Equal(mt, bsontype.Array, update.Type, "activation must use an update pipeline")
		assert.Contains(mt, update.String(), "$ifNull")
	})

	mt.Run("delete missing post", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(mt, repo.Delete(ctx, "missing"), ErrNotFound)
		assert.Equal(mt, []string{"delete"}, commandNames(mt))
	})

	mt.Run("delete removes then cascades", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}),
		)

		require.NoError(mt, repo.Delete(ctx, "p1"))
		assert.Equal(mt, []string{"delete", "update"}, commandNames(mt))
	})

	mt.Run("list summaries", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "a"}, {Key: "title", Value: "Alpha"}, {Key: "slug", Value: "alpha"}},
			bson.D{{Key: "_id", Value: "b"}, {Key: "title", Value: "Beta"}, {Key: "slug", Value: "beta"}},
		))

		items, err := repo.ListSummaries(ctx, "c")
		require.NoError(mt, err)
		assert.Equal(mt, []Summary{
			{ID: "a", Title: "Alpha", Slug: "alpha"},
			{ID: "b", Title: "Beta", Slug: "beta"},
		}, items)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "c", evt.Command.Lookup("filter", "_id", "$ne").StringValue())
		assert.Contains(mt, evt.Command.Lookup("projection").String(), `"title"`)
	})
}
