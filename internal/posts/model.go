package posts

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type Post struct {
	ID              string     `bson:"_id,omitempty" json:"id"`
	Slug            string     `bson:"slug" json:"slug"`
	Title           string     `bson:"title" json:"title"`
	Excerpt         string     `bson:"excerpt" json:"excerpt"`
	CoverImage      string     `bson:"cover_image" json:"cover_image"`
	Content         Document   `bson:"content" json:"content"`
	IsActive        bool       `bson:"is_active" json:"is_active"`
	MetaTitle       string     `bson:"meta_title" json:"meta_title"`
	MetaDescription string     `bson:"meta_description" json:"meta_description"`
	MetaKeywords    string     `bson:"meta_keywords" json:"meta_keywords"`
	RelatedArticles []string   `bson:"related_articles" json:"related_articles"`
	CreatedAt       time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at" json:"updated_at"`
	PublishedAt     *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
}

// Summary is the projection the related-articles picker works with.
type Summary struct {
	ID    string `bson:"_id" json:"id"`
	Title string `bson:"title" json:"title"`
	Slug  string `bson:"slug" json:"slug"`
}

// Teaser is what a detail page shows for each related post.
type Teaser struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt,omitempty"`
	CoverImage string    `json:"cover_image,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (p Post) Teaser() Teaser {
	return Teaser{
		ID:         p.ID,
		Slug:       p.Slug,
		Title:      p.Title,
		Excerpt:    p.Excerpt,
		CoverImage: p.CoverImage,
		CreatedAt:  p.CreatedAt,
	}
}

// Published is the public detail view of a post.
type Published struct {
	Post    Post     `json:"post"`
	SEO     SEO      `json:"seo"`
	Related []Teaser `json:"related"`
}

// Document is the rich-text body. It is kept as raw JSON and never interpreted here;
// in Mongo it is stored as a string so the exact payload round-trips.
type Document []byte

func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	*d = append((*d)[0:0], data...)
	return nil
}

func (d Document) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(d))
}

func (d *Document) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.Null {
		*d = nil
		return nil
	}
	raw := bson.RawValue{Type: t, Value: data}
	s, ok := raw.StringValueOK()
	if !ok {
		return fmt.Errorf("content: unexpected bson type %s", t)
	}
	*d = Document(s)
	return nil
}

type UpsertRequest struct {
	Slug            string   `json:"slug" validate:"required,slug,max=120"`
	Title           string   `json:"title" validate:"required,max=300"`
	Excerpt         string   `json:"excerpt" validate:"max=1000"`
	CoverImage      string   `json:"cover_image" validate:"omitempty,url"`
	Content         Document `json:"content" validate:"required,document"`
	IsActive        *bool    `json:"is_active"`
	MetaTitle       string   `json:"meta_title" validate:"max=300"`
	MetaDescription string   `json:"meta_description" validate:"max=1000"`
	MetaKeywords    string   `json:"meta_keywords" validate:"max=1000"`
	RelatedArticles []string `json:"related_articles" validate:"omitempty,dive,required"`
}

func (r UpsertRequest) normalized() UpsertRequest {
	r.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	r.Title = strings.TrimSpace(r.Title)
	r.Excerpt = strings.TrimSpace(r.Excerpt)
	r.CoverImage = strings.TrimSpace(r.CoverImage)
	r.MetaTitle = strings.TrimSpace(r.MetaTitle)
	r.MetaDescription = strings.TrimSpace(r.MetaDescription)
	r.MetaKeywords = strings.TrimSpace(r.MetaKeywords)
	ids := make([]string, 0, len(r.RelatedArticles))
	for _, id := range r.RelatedArticles {
		ids = append(ids, strings.TrimSpace(id))
	}
	r.RelatedArticles = ids
	return r
}

type Sort string

const (
	SortNewest    Sort = "newest"
	SortTitle     Sort = "title"
	SortPublished Sort = "published"
)

func ParseSort(raw string) (Sort, bool) {
	switch Sort(strings.TrimSpace(raw)) {
	case "", SortNewest:
		return SortNewest, true
	case SortTitle:
		return SortTitle, true
	case SortPublished:
		return SortPublished, true
	}
	return "", false
}

// ListOptions drives every list query. A nil Active matches both states.
type ListOptions struct {
	Active    *bool
	ExcludeID string
	Sort      Sort
	Limit     int64
	Offset    int64
}

type AdminListFilter struct {
	Active *bool
	Sort   Sort
}

func activeOnly() *bool {
	v := true
	return &v
}
