package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"content-backend/internal/casestudies"
	"content-backend/internal/posts"
	"content-backend/internal/slug"

	"gopkg.in/yaml.v3"
)

type fixtureFile struct {
	Posts       []postFixture      `yaml:"posts"`
	CaseStudies []caseStudyFixture `yaml:"case_studies"`
}

type postFixture struct {
	Slug            string      `yaml:"slug"`
	Title           string      `yaml:"title"`
	Excerpt         string      `yaml:"excerpt"`
	CoverImage      string      `yaml:"cover_image"`
	Content         interface{} `yaml:"content"`
	Active          *bool       `yaml:"active"`
	MetaTitle       string      `yaml:"meta_title"`
	MetaDescription string      `yaml:"meta_description"`
	MetaKeywords    string      `yaml:"meta_keywords"`
	// Related lists slugs of other posts in the same file.
	Related []string `yaml:"related"`
}

type caseStudyFixture struct {
	Slug         string             `yaml:"slug"`
	Title        string             `yaml:"title"`
	Subtitle     string             `yaml:"subtitle"`
	Client       string             `yaml:"client"`
	Industry     string             `yaml:"industry"`
	Location     string             `yaml:"location"`
	Overview     string             `yaml:"overview"`
	Services     []string           `yaml:"services"`
	ImageURL     string             `yaml:"image_url"`
	Stats        []casestudies.Stat `yaml:"stats"`
	Gallery      []string           `yaml:"gallery"`
	Technologies []string           `yaml:"technologies"`
	Active       *bool              `yaml:"active"`
}

func loadFixtures(r io.Reader) (fixtureFile, error) {
	var f fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return fixtureFile{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return f, nil
}

type seeder struct {
	posts     *posts.Service
	postRepo  posts.Repository
	cases     *casestudies.Service
	casesRepo casestudies.Repository
	log       *slog.Logger
}

type seedReport struct {
	PostsCreated       int
	PostsSkipped       int
	CaseStudiesCreated int
	CaseStudiesSkipped int
}

// run inserts every fixture whose slug is not taken yet. Existing records are left
// untouched, so running it twice is a no-op.
func (s *seeder) run(ctx context.Context, f fixtureFile) (seedReport, error) {
	var report seedReport

	ids := make(map[string]string, len(f.Posts))
	created := make([]postFixture, 0, len(f.Posts))
	for _, fx := range f.Posts {
		fx.Slug = fixtureSlug(fx.Slug, fx.Title)
		if existing, err := s.postRepo.GetBySlug(ctx, fx.Slug, false); err == nil {
			ids[fx.Slug] = existing.ID
			report.PostsSkipped++
			s.log.Info("seed post: exists", slog.String("slug", fx.Slug))
			continue
		} else if !errors.Is(err, posts.ErrNotFound) {
			return report, fmt.Errorf("lookup post %s: %w", fx.Slug, err)
		}

		req, err := fx.request()
		if err != nil {
			return report, err
		}
		item, err := s.posts.Create(ctx, req)
		if err != nil {
			return report, fmt.Errorf("create post %s: %w", fx.Slug, err)
		}
		ids[fx.Slug] = item.ID
		created = append(created, fx)
		report.PostsCreated++
		s.log.Info("seed post: created", slog.String("slug", fx.Slug), slog.String("post_id", item.ID))
	}

	// related slugs are resolved once every post in the file has an id
	for _, fx := range created {
		if len(fx.Related) == 0 {
			continue
		}
		req, err := fx.request()
		if err != nil {
			return report, err
		}
		for _, relatedSlug := range fx.Related {
			relatedSlug = strings.ToLower(strings.TrimSpace(relatedSlug))
			if relatedSlug == fx.Slug {
				s.log.Warn("seed post: related slug is the post itself", slog.String("slug", fx.Slug))
				continue
			}
			id, ok := ids[relatedSlug]
			if !ok {
				s.log.Warn("seed post: unknown related slug", slog.String("slug", fx.Slug), slog.String("related", relatedSlug))
				continue
			}
			req.RelatedArticles = append(req.RelatedArticles, id)
		}
		if _, err := s.posts.Update(ctx, ids[fx.Slug], req); err != nil {
			return report, fmt.Errorf("relate post %s: %w", fx.Slug, err)
		}
	}

	for _, fx := range f.CaseStudies {
		fx.Slug = fixtureSlug(fx.Slug, fx.Title)
		if _, err := s.casesRepo.GetBySlug(ctx, fx.Slug, false); err == nil {
			report.CaseStudiesSkipped++
			s.log.Info("seed case study: exists", slog.String("slug", fx.Slug))
			continue
		} else if !errors.Is(err, casestudies.ErrNotFound) {
			return report, fmt.Errorf("lookup case study %s: %w", fx.Slug, err)
		}

		item, err := s.cases.Create(ctx, fx.request())
		if err != nil {
			return report, fmt.Errorf("create case study %s: %w", fx.Slug, err)
		}
		report.CaseStudiesCreated++
		s.log.Info("seed case study: created", slog.String("slug", fx.Slug), slog.String("case_study_id", item.ID))
	}

	return report, nil
}

func fixtureSlug(given, title string) string {
	if v := strings.ToLower(strings.TrimSpace(given)); v != "" {
		return v
	}
	return slug.Make(title)
}

func (fx postFixture) request() (posts.UpsertRequest, error) {
	content, err := json.Marshal(fx.Content)
	if err != nil {
		return posts.UpsertRequest{}, fmt.Errorf("post %s content: %w", fx.Slug, err)
	}
	return posts.UpsertRequest{
		Slug:            fx.Slug,
		Title:           fx.Title,
		Excerpt:         fx.Excerpt,
		CoverImage:      fx.CoverImage,
		Content:         posts.Document(content),
		IsActive:        fx.Active,
		MetaTitle:       fx.MetaTitle,
		MetaDescription: fx.MetaDescription,
		MetaKeywords:    fx.MetaKeywords,
	}, nil
}

func (fx caseStudyFixture) request() casestudies.UpsertRequest {
	return casestudies.UpsertRequest{
		Slug:         fx.Slug,
		Title:        fx.Title,
		Subtitle:     fx.Subtitle,
		Client:       fx.Client,
		Industry:     fx.Industry,
		Location:     fx.Location,
		Overview:     fx.Overview,
		Services:     fx.Services,
		ImageURL:     fx.ImageURL,
		Stats:        fx.Stats,
		Gallery:      fx.Gallery,
		Technologies: fx.Technologies,
		IsActive:     fx.Active,
	}
}
