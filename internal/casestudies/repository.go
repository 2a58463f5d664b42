package casestudies

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

type Repository interface {
	Create(ctx context.Context, item CaseStudy) error
	GetByID(ctx context.Context, id string) (CaseStudy, error)
	GetBySlug(ctx context.Context, slug string, activeOnly bool) (CaseStudy, error)
	List(ctx context.Context, opts ListOptions) ([]CaseStudy, error)
	Count(ctx context.Context, opts ListOptions) (int64, error)
	Update(ctx context.Context, item CaseStudy) (CaseStudy, error)
	SetActive(ctx context.Context, id string, active bool, at time.Time) (CaseStudy, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, item CaseStudy) error {
	if _, err := r.col.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlugExists
		}
		return storeErr("create", err)
	}
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (CaseStudy, error) {
	return r.findOne(ctx, "get by id", bson.M{"_id": id})
}

func (r *MongoRepository) GetBySlug(ctx context.Context, slug string, activeOnly bool) (CaseStudy, error) {
	query := bson.M{"slug": slug}
	if activeOnly {
		query["is_active"] = true
	}
	return r.findOne(ctx, "get by slug", query)
}

func (r *MongoRepository) List(ctx context.Context, opts ListOptions) ([]CaseStudy, error) {
	findOpts := options.Find().
		SetSort(bson.D{
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		})
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
	defer cursor.Close(ctx)

	items := make([]CaseStudy, 0)
	for cursor.Next(ctx) {
		var item CaseStudy
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

func (r *MongoRepository) Count(ctx context.Context, opts ListOptions) (int64, error) {
	n, err := r.col.CountDocuments(ctx, listQuery(opts))
	if err != nil {
		return 0, storeErr("count", err)
	}
	return n, nil
}

func (r *MongoRepository) Update(ctx context.Context, item CaseStudy) (CaseStudy, error) {
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)

	var updated CaseStudy
	if err := r.col.FindOneAndReplace(ctx, bson.M{"_id": item.ID}, item, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return CaseStudy{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return CaseStudy{}, ErrSlugExists
		}
		return CaseStudy{}, storeErr("update", err)
	}
	return updated, nil
}

func (r *MongoRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) (CaseStudy, error) {
	update := bson.M{"$set": bson.M{"is_active": active, "updated_at": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated CaseStudy
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return CaseStudy{}, ErrNotFound
		}
		return CaseStudy{}, storeErr("set active", err)
	}
	return updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("delete", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	if err := r.col.Database().Client().Ping(ctx, nil); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, op string, query bson.M) (CaseStudy, error) {
	var item CaseStudy
	if err := r.col.FindOne(ctx, query).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return CaseStudy{}, ErrNotFound
		}
		return CaseStudy{}, storeErr(op, err)
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
	if opts.Industry != "" {
		query["industry"] = opts.Industry
	}
	return query
}

func storeErr(op string, err error) error {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("case studies %s: %w: %w", op, apperr.ErrUnavailable, err)
	}
	return fmt.Errorf("case studies %s: %w", op, err)
}
