package posts

import "strings"

// Selection is the ordered set of related-article ids picked in the admin editor.
// The zero value is an empty selection.
type Selection struct {
	ids   []string
	index map[string]struct{}
}

// NewSelection builds a selection from ids, keeping the first occurrence of each
// and skipping blanks.
func NewSelection(ids ...string) *Selection {
	s := &Selection{}
	for _, id := range ids {
		if id == "" || s.Has(id) {
			continue
		}
		s.add(id)
	}
	return s
}

// Toggle adds id when absent and removes it when present. It reports whether id is
// selected afterwards.
func (s *Selection) Toggle(id string) bool {
	if s.Has(id) {
		s.remove(id)
		return false
	}
	s.add(id)
	return true
}

func (s *Selection) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns a copy in selection order.
func (s *Selection) IDs() []string {
	return append(make([]string, 0, len(s.ids)), s.ids...)
}

func (s *Selection) add(id string) {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *Selection) remove(id string) {
	delete(s.index, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// FilterBySearch keeps candidates whose title contains query, ignoring case. An
// empty query keeps everything.
func FilterBySearch(candidates []Summary, query string) []Summary {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Summary, 0, len(candidates))
	for _, c := range candidates {
		if q == "" || strings.Contains(strings.ToLower(c.Title), q) {
			out = append(out, c)
		}
	}
	return out
}

// PruneSelection drops selected ids that are no longer among the candidates, e.g.
// posts deleted since the selection was made. Order is preserved.
func PruneSelection(selected []string, candidates []Summary) []string {
	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}
	out := make([]string, 0, len(selected))
	for _, id := range NewSelection(selected...).IDs() {
		if _, ok := known[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
