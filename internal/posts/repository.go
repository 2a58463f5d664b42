package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"content-backend/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository is the only component allowed to mutate stored posts.
type Repository interface {
	Create(ctx context.Context, item Post) (Post, error)
	GetByID(ctx context.Context, id string) (Post, error)
	GetByIDs(ctx context.Context, ids []string) ([]Post, error)
	GetBySlug(ctx context.Context, slug string, activeOnly bool) (Post, error)
	List(ctx context.Context, opts ListOptions) ([]Post, error)
	Count(ctx context.Context, opts ListOptions) (int64, error)
	ListSummaries(ctx context.Context, excludeID string) ([]Summary, error)
	Update(ctx context.Context, item Post) (Post, error)
	SetActive(ctx context.Context, id string, active bool, at time.Time) (Post, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, item Post) (Post, error) {
	if _, err := r.col.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Post{}, ErrSlugExists
		}
		return Post{}, storeErr("create", err)
	}

	related, err := r.pullMissingRelated(ctx, item.ID, item.RelatedArticles)
	if err != nil {
		return Post{}, err
	}
	item.RelatedArticles = related
	return item, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Post, error) {
	return r.findOne(ctx, "get by id", bson.M{"_id": id})
}

func (r *MongoRepository) GetByIDs(ctx context.Context, ids []string) ([]Post, error) {
	if len(ids) == 0 {
		return []Post{}, nil
	}
	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeErr("get by ids", err)
	}
	return decodeAll(ctx, cursor)
}

func (r *MongoRepository) GetBySlug(ctx context.Context, slug string, activeOnly bool) (Post, error) {
	query := bson.M{"slug": slug}
	if activeOnly {
		query["is_active"] = true
	}
	return r.findOne(ctx, "get by slug", query)
}

func (r *MongoRepository) List(ctx context.Context, opts ListOptions) ([]Post, error) {
	findOpts := options.Find().SetSort(sortDoc(opts.Sort))
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(opts.Offset)
	}

	cursor, err := r.col.Find(ctx, listQuery(opts), findOpts)
	if err != nil {
		return nil, storeErr("list", err)
	}
	return decodeAll(ctx, cursor)
}

func (r *MongoRepository) Count(ctx context.Context, opts ListOptions) (int64, error) {
	n, err := r.col.CountDocuments(ctx, listQuery(opts))
	if err != nil {
		return 0, storeErr("count", err)
	}
	return n, nil
}

func (r *MongoRepository) ListSummaries(ctx context.Context, excludeID string) ([]Summary, error) {
	query := bson.M{}
	if excludeID != "" {
		query["_id"] = bson.M{"$ne": excludeID}
	}
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "title": 1, "slug": 1}).
		SetSort(bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, storeErr("list summaries", err)
	}
	defer cursor.Close(ctx)

	items := make([]Summary, 0)
	for cursor.Next(ctx) {
		var item Summary
		if err := cursor.Decode(&item); err != nil {
			return nil, storeErr("list summaries", err)
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, storeErr("list summaries", err)
	}
	return items, nil
}

func (r *MongoRepository) Update(ctx context.Context, item Post) (Post, error) {
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)

	var updated Post
	if err := r.col.FindOneAndReplace(ctx, bson.M{"_id": item.ID}, item, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Post{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return Post{}, ErrSlugExists
		}
		return Post{}, storeErr("update", err)
	}

	related, err := r.pullMissingRelated(ctx, updated.ID, updated.RelatedArticles)
	if err != nil {
		return Post{}, err
	}
	updated.RelatedArticles = related
	return updated, nil
}

func (r *MongoRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) (Post, error) {
	set := bson.M{
		"is_active":  active,
		"updated_at": at,
	}
	if active {
		// published_at is written once, on the first activation.
		set["published_at"] = bson.M{"$ifNull": bson.A{"$published_at", at}}
	}
	update := mongo.Pipeline{{{Key: "$set", Value: set}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Post
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Post{}, ErrNotFound
		}
		return Post{}, storeErr("set active", err)
	}
	return updated, nil
}

// Delete removes the post, then pulls id out of every other post's related set. A
// write that references id after the removal prunes it itself, see pullMissingRelated.
func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("delete", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	_, err = r.col.UpdateMany(ctx,
		bson.M{"related_articles": id},
		bson.M{"$pull": bson.M{"related_articles": id}},
	)
	if err != nil {
		return storeErr("delete cascade", err)
	}
	return nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	if err := r.col.Database().Client().Ping(ctx, nil); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// pullMissingRelated runs after a write and removes related ids whose post is gone.
// Combined with Delete removing before it cascades, no reference to a deleted post
// survives both steps.
func (r *MongoRepository) pullMissingRelated(ctx context.Context, id string, related []string) ([]string, error) {
	if len(related) == 0 {
		return related, nil
	}

	cursor, err := r.col.Find(ctx,
		bson.M{"_id": bson.M{"$in": related}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, storeErr("related check", err)
	}
	found, err := decodeAll(ctx, cursor)
	if err != nil {
		return nil, err
	}
	present := make(map[string]struct{}, len(found))
	for _, p := range found {
		present[p.ID] = struct{}{}
	}

	kept := make([]string, 0, len(related))
	missing := make([]string, 0)
	for _, relatedID := range related {
		if _, ok := present[relatedID]; ok {
			kept = append(kept, relatedID)
		} else {
			missing = append(missing, relatedID)
		}
	}
	if len(missing) == 0 {
		return related, nil
	}

	_, err = r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pullAll": bson.M{"related_articles": missing}},
	)
	if err != nil {
		return nil, storeErr("related prune", err)
	}
	return kept, nil
}

func (r *MongoRepository) findOne(ctx context.Context, op string, query bson.M) (Post, error) {
	var item Post
	if err := r.col.FindOne(ctx, query).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Post{}, ErrNotFound
		}
		return Post{}, storeErr(op, err)
	}
	return item, nil
}

func listQuery(opts ListOptions) bson.M {
	query := bson.M{}
	if opts.Active != nil {
		query["is_active"] = *opts.Active
	}
	if opts.ExcludeID != "" {
		query["_id"] = bson.M{"$ne": opts.ExcludeID}
	}
	return query
}

func sortDoc(s Sort) bson.D {
	switch s {
	case SortTitle:
		return bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}
	case SortPublished:
		return bson.D{{Key: "published_at", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]Post, error) {
	defer cursor.Close(ctx)

	items := make([]Post, 0)
	for cursor.Next(ctx) {
		var item Post
		if err := cursor.Decode(&item); err != nil {
			return nil, storeErr("decode", err)
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, storeErr("cursor", err)
	}
	return items, nil
}

func storeErr(op string, err error) error {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("posts %s: %w: %w", op, apperr.ErrUnavailable, err)
	}
	return fmt.Errorf("posts %s: %w", op, err)
}
