package posts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDocumentStoredVerbatim(t *testing.T) {
	raw := `{"blocks":[{"type":"quote","text":"ship it"}],"version":2}`
	in := Post{ID: "p1", Slug: "a", Content: Document(raw), RelatedArticles: []string{}}

	data, err := bson.Marshal(in)
	require.NoError(t, err)

	var stored bson.M
	require.NoError(t, bson.Unmarshal(data, &stored))
	assert.Equal(t, raw, stored["content"])

	var out Post
	require.NoError(t, bson.Unmarshal(data, &out))
	assert.Equal(t, raw, string(out.Content))

	encoded, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"content":{"blocks":[{"type":"quote","text":"ship it"}],"version":2}`)
}

func TestParseSort(t *testing.T) {
	for raw, want := range map[string]Sort{"": SortNewest, "newest": SortNewest, "title": SortTitle, "published": SortPublished} {
		got, ok := ParseSort(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got)
	}
	_, ok := ParseSort("oldest")
	assert.False(t, ok)
}
