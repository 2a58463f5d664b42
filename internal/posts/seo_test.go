package posts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSEOFallbacks(t *testing.T) {
	seo := ResolveSEO(Post{Title: "Title", Excerpt: "Excerpt", MetaTitle: "   "})
	assert.Equal(t, "Title", seo.Title)
	assert.Equal(t, "Excerpt", seo.Description)
	assert.Equal(t, []string{}, seo.Keywords)
}

func TestResolveSEOOverrides(t *testing.T) {
	seo := ResolveSEO(Post{
		Title:           "Title",
		Excerpt:         "Excerpt",
		MetaTitle:       "Meta title",
		MetaDescription: "Meta description",
		MetaKeywords:    "go, backend",
	})
	assert.Equal(t, "Meta title", seo.Title)
	assert.Equal(t, "Meta description", seo.Description)
	assert.Equal(t, []string{"go", "backend"}, seo.Keywords)
}

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitKeywords("a, b ,c"))
	assert.Equal(t, []string{"a", "c"}, SplitKeywords(" a,, ,c,"))
	assert.Equal(t, []string{}, SplitKeywords(""))
}
