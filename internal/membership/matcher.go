// internal/membership/matcher.go
package membership

import (
	"strings"

	"entity-mcp/internal/models"
)

// Match returns the partners referenced by any of the places, in the order
// they are discovered while scanning places left to right. A partner is
// selected at most once.
//
// The name rule ignores case and spaces; the location rule compares the raw
// strings and is case-sensitive.
func Match(places []string, partners []models.Partner) []models.Partner {
	matched := make([]models.Partner, 0)
	seen := make(map[string]struct{}, len(partners))

	for _, place := range places {
		normalizedPlace := normalize(place)

		for i := range partners {
			p := &partners[i]
			if _, ok := seen[p.ID]; ok {
				continue
			}

			if nameMatches(normalizedPlace, p.Name) || anyLocationMatches(place, p.Locations) {
				seen[p.ID] = struct{}{}
				matched = append(matched, *p)
			}
		}
	}

	return matched
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

func nameMatches(normalizedPlace, name string) bool {
	n := normalize(name)
	return strings.Contains(n, normalizedPlace) || strings.Contains(normalizedPlace, n)
}

func anyLocationMatches(place string, locations []models.Location) bool {
	for _, loc := range locations {
		if locationMatches(place, loc) {
			return true
		}
	}
	return false
}

// locationMatches: the place occurs in the landmark, or the landmark's first
// token occurs in the place.
func locationMatches(place string, loc models.Location) bool {
	return strings.Contains(loc.Near, place) || strings.Contains(place, firstToken(loc.Near))
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
