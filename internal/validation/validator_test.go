package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Slug    string          `json:"slug" validate:"required,slug"`
	Content json.RawMessage `json:"content" validate:"document"`
}

func TestSlugTag(t *testing.T) {
	v := New()

	cases := map[string]bool{
		"intro":          true,
		"hello-world-2":  true,
		"Hello":          false,
		"double--dash":   false,
		"-leading":       false,
		"trailing-":      false,
		"with space":     false,
		"accented-café": false,
	}
	for slug, ok := range cases {
		err := v.Struct(sample{Slug: slug, Content: json.RawMessage(`{"blocks":[]}`)})
		if ok {
			assert.NoError(t, err, slug)
		} else {
			assert.Error(t, err, slug)
		}
	}
}

func TestDocumentTag(t *testing.T) {
	v := New()

	for _, raw := range []string{"", "null", "{}", "[]", `""`, "  "} {
		err := v.Struct(sample{Slug: "ok", Content: json.RawMessage(raw)})
		require.Error(t, err, raw)
		details := v.ValidationErrors(err)
		require.Len(t, details, 1)
		assert.Equal(t, "content", details[0].Field())
		assert.Equal(t, "document", details[0].Tag())
	}

	assert.NoError(t, v.Struct(sample{Slug: "ok", Content: json.RawMessage(`{"type":"doc"}`)}))
}
