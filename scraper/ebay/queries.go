package ebay

import (
	"strings"

	"flea-scout/models"
	"flea-scout/utils"
)

// maxQueries caps how many search strings one scout request may issue.
const maxQueries = 3

// BuildQueries derives up to maxQueries search strings from the item guess
// and the user's hint. Fields reported as "unknown" are skipped, every
// candidate is trimmed and whitespace-collapsed, and duplicates are dropped
// case-insensitively while preserving first-seen order.
func BuildQueries(item models.ItemGuess, hint string) []string {
	brand := known(item.Brand)
	model := known(item.Model)

	var candidates []string
	if brand != "" && model != "" {
		candidates = append(candidates, brand+" "+model)
	}
	candidates = append(candidates,
		joinKnown(item.Brand, item.Name, item.Model),
		joinKnown(item.Name),
		normaliseText(hint),
	)

	seen := utils.NewStringSet()
	queries := make([]string, 0, maxQueries)
	for _, q := range candidates {
		if q == "" || !seen.Add(strings.ToLower(q)) {
			continue
		}
		queries = append(queries, q)
		if len(queries) == maxQueries {
			break
		}
	}
	return queries
}

// known collapses whitespace and discards the vision step's "unknown"
// placeholder.
func known(s string) string {
	s = normaliseText(s)
	if strings.EqualFold(s, "unknown") {
		return ""
	}
	return s
}

// joinKnown joins the usable parts with single spaces.
func joinKnown(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = known(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
