package casestudies

import (
	"strings"
	"time"
)

type Stat struct {
	Value string `bson:"value" json:"value" validate:"required"`
	Label string `bson:"label" json:"label" validate:"required"`
}

type CaseStudy struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Slug         string    `bson:"slug" json:"slug"`
	Title        string    `bson:"title" json:"title"`
	Subtitle     string    `bson:"subtitle" json:"subtitle"`
	Client       string    `bson:"client" json:"client"`
	Industry     string    `bson:"industry" json:"industry"`
	Location     string    `bson:"location" json:"location"`
	Overview     string    `bson:"overview" json:"overview"`
	Services     []string  `bson:"services" json:"services"`
	ImageURL     string    `bson:"image_url" json:"image_url"`
	Stats        []Stat    `bson:"stats" json:"stats"`
	Gallery      []string  `bson:"gallery" json:"gallery"`
	Technologies []string  `bson:"technologies" json:"technologies"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Card is the compact form used for "more case studies" on a detail page.
type Card struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Client   string `json:"client"`
	Industry string `json:"industry"`
	ImageURL string `json:"image_url"`
}

func (c CaseStudy) Card() Card {
	return Card{
		ID:       c.ID,
		Slug:     c.Slug,
		Title:    c.Title,
		Subtitle: c.Subtitle,
		Client:   c.Client,
		Industry: c.Industry,
		ImageURL: c.ImageURL,
	}
}

type Published struct {
	CaseStudy CaseStudy `json:"case_study"`
	Related   []Card    `json:"related"`
}

type UpsertRequest struct {
	Slug         string   `json:"slug" validate:"required,slug,max=120"`
	Title        string   `json:"title" validate:"required,max=300"`
	Subtitle     string   `json:"subtitle" validate:"max=300"`
	Client       string   `json:"client" validate:"required,max=200"`
	Industry     string   `json:"industry" validate:"required,max=100"`
	Location     string   `json:"location" validate:"max=200"`
	Overview     string   `json:"overview" validate:"required"`
	Services     []string `json:"services" validate:"omitempty,dive,required"`
	ImageURL     string   `json:"image_url" validate:"omitempty,url"`
	Stats        []Stat   `json:"stats" validate:"omitempty,dive"`
	Gallery      []string `json:"gallery" validate:"omitempty,dive,url"`
	Technologies []string `json:"technologies" validate:"omitempty,dive,required"`
	IsActive     *bool    `json:"is_active"`
}

func (r UpsertRequest) normalized() UpsertRequest {
	r.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	r.Title = strings.TrimSpace(r.Title)
	r.Subtitle = strings.TrimSpace(r.Subtitle)
	r.Client = strings.TrimSpace(r.Client)
	r.Industry = strings.TrimSpace(r.Industry)
	r.Location = strings.TrimSpace(r.Location)
	r.Overview = strings.TrimSpace(r.Overview)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	r.Services = trimList(r.Services)
	r.Gallery = trimList(r.Gallery)
	r.Technologies = trimList(r.Technologies)
	stats := make([]Stat, 0, len(r.Stats))
	for _, st := range r.Stats {
		stats = append(stats, Stat{Value: strings.TrimSpace(st.Value), Label: strings.TrimSpace(st.Label)})
	}
	r.Stats = stats
	return r
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

// ListOptions drives list queries. A nil Active matches both states.
type ListOptions struct {
	Active    *bool
	ExcludeID string
	Industry  string
	Limit     int64
	Offset    int64
}

type AdminListFilter struct {
	Active   *bool
	Industry string
}

func activeOnly() *bool {
	v := true
	return &v
}
