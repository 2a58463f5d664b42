package posts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionToggle(t *testing.T) {
	sel := NewSelection("a", "b", "a", "")
	assert.Equal(t, []string{"a", "b"}, sel.IDs())

	assert.True(t, sel.Toggle("c"))
	assert.False(t, sel.Toggle("a"))
	assert.Equal(t, []string{"b", "c"}, sel.IDs())
	assert.False(t, sel.Has("a"))
	assert.Equal(t, 2, sel.Len())

	ids := sel.IDs()
	ids[0] = "mutated"
	assert.Equal(t, []string{"b", "c"}, sel.IDs())
}

func TestSelectionZeroValue(t *testing.T) {
	var sel Selection
	assert.False(t, sel.Has("a"))
	assert.True(t, sel.Toggle("a"))
	assert.Equal(t, []string{"a"}, sel.IDs())
}

func TestFilterBySearch(t *testing.T) {
	candidates := []Summary{
		{ID: "1", Title: "Scaling Go services", Slug: "scaling-go"},
		{ID: "2", Title: "Design systems", Slug: "design"},
		{ID: "3", Title: "GOlang tips", Slug: "tips"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty query keeps all", query: "  ", want: []string{"1", "2", "3"}},
		{name: "case insensitive", query: "go", want: []string{"1", "3"}},
		{name: "no match", query: "rust", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]string, 0)
			for _, c := range FilterBySearch(candidates, tt.query) {
				got = append(got, c.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPruneSelection(t *testing.T) {
	candidates := []Summary{{ID: "1"}, {ID: "3"}}
	assert.Equal(t, []string{"3", "1"}, PruneSelection([]string{"3", "2", "1", "3"}, candidates))
	assert.Equal(t, []string{}, PruneSelection(nil, candidates))
}
