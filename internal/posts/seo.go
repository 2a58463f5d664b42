package posts

import "strings"

type SEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// ResolveSEO computes the effective metadata at read time; overrides win when set,
// otherwise title and excerpt are used.
func ResolveSEO(p Post) SEO {
	seo := SEO{
		Title:       p.Title,
		Description: p.Excerpt,
		Keywords:    SplitKeywords(p.MetaKeywords),
	}
	if strings.TrimSpace(p.MetaTitle) != "" {
		seo.Title = p.MetaTitle
	}
	if strings.TrimSpace(p.MetaDescription) != "" {
		seo.Description = p.MetaDescription
	}
	return seo
}

func SplitKeywords(raw string) []string {
	keywords := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
