package casestudies

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleList() []CaseStudy {
	return []CaseStudy{
		{ID: "1", Title: "Clinic booking", Client: "MediCare", Industry: "Health", Overview: "Patient portal"},
		{ID: "2", Title: "Store revamp", Subtitle: "Walk-in CLINIC kiosks", Client: "ShopCo", Industry: "Retail"},
		{ID: "3", Title: "Loyalty app", Client: "ShopCo", Industry: "Retail", Overview: "Points and rewards"},
		{ID: "4", Title: "Lab results", Client: "Northside Clinic", Industry: "Health"},
		{ID: "5", Title: "Internal tool", Industry: ""},
	}
}

func ids(list []CaseStudy) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		industry string
		query    string
		want     []string
	}{
		{name: "all without query", industry: AllIndustries, want: []string{"1", "2", "3", "4", "5"}},
		{name: "empty industry behaves like all", industry: "", want: []string{"1", "2", "3", "4", "5"}},
		{name: "query across industries", industry: AllIndustries, query: "clinic", want: []string{"1", "2", "4"}},
		{name: "industry only", industry: "Retail", want: []string{"2", "3"}},
		{name: "industry and query", industry: "Retail", query: "Clinic", want: []string{"2"}},
		{name: "overview match", industry: AllIndustries, query: "REWARDS", want: []string{"3"}},
		{name: "industry match is exact", industry: "retail", want: []string{}},
		{name: "no match", industry: "Health", query: "loyalty", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sampleList(), tt.industry, tt.query)))
		})
	}
}

func TestIndustries(t *testing.T) {
	assert.Equal(t, []string{"All", "Health", "Retail"}, Industries(sampleList()))
	assert.Equal(t, []string{"All"}, Industries(nil))
}
