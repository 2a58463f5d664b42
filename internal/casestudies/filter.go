package casestudies

import (
	"sort"
	"strings"
)

// AllIndustries is the industry facet that matches every case study.
const AllIndustries = "All"

// Filter keeps case studies in industry whose title, subtitle, client or overview
// contains query, ignoring case. An empty industry behaves like AllIndustries and an
// empty query matches everything.
func Filter(list []CaseStudy, industry, query string) []CaseStudy {
	industry = strings.TrimSpace(industry)
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]CaseStudy, 0, len(list))
	for _, item := range list {
		if industry != "" && industry != AllIndustries && item.Industry != industry {
			continue
		}
		if q != "" && !matchesQuery(item, q) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesQuery(item CaseStudy, q string) bool {
	for _, field := range []string{item.Title, item.Subtitle, item.Client, item.Overview} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Industries returns the selectable industry facets: AllIndustries followed by the
// sorted distinct industries of list.
func Industries(list []CaseStudy) []string {
	seen := make(map[string]struct{}, len(list))
	values := make([]string, 0, len(list))
	for _, item := range list {
		if item.Industry == "" {
			continue
		}
		if _, ok := seen[item.Industry]; ok {
			continue
		}
		seen[item.Industry] = struct{}{}
		values = append(values, item.Industry)
	}
	sort.Strings(values)
	return append([]string{AllIndustries}, values...)
}
