// Package engine is the untrusted-response pipeline: validation,
// sanitization, and effect application. Validation and sanitization are
// read-only with respect to game state; the applicator is its sole writer.
package engine

import (
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/state"
)

// Slug normalizes free text to a snake_case identifier: lowercase,
// runs of non-alphanumerics collapsed to a single underscore, trimmed.
func Slug(s string) string {
	var out strings.Builder
	prevUnderscore := true // trims leading separators
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			out.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			out.WriteRune('_')
			prevUnderscore = true
		}
	}
	return strings.TrimRight(out.String(), "_")
}

// ResolveLocation maps a candidate (an ID, a display name, or free text
// close to either) to a canonical location ID. Matching is exact ID
// first, then case-insensitive name, then slug against names and IDs.
func ResolveLocation(candidate string, gs *state.GameState) (string, bool) {
	if candidate == "" {
		return "", false
	}
	if _, ok := gs.Locations[candidate]; ok {
		return candidate, true
	}

	normalized := strings.ToLower(strings.TrimSpace(candidate))
	slug := Slug(candidate)
	for id, loc := range gs.Locations {
		if strings.ToLower(strings.TrimSpace(loc.Name)) == normalized {
			return id, true
		}
		if Slug(loc.Name) == slug || Slug(id) == slug {
			return id, true
		}
	}
	return "", false
}

// ResolveNPC maps a candidate to a canonical NPC ID using the same
// scheme as ResolveLocation.
func ResolveNPC(candidate string, gs *state.GameState) (string, bool) {
	if candidate == "" {
		return "", false
	}
	if _, ok := gs.NPCs[candidate]; ok {
		return candidate, true
	}

	normalized := strings.ToLower(strings.TrimSpace(candidate))
	slug := Slug(candidate)
	for id, npc := range gs.NPCs {
		if strings.ToLower(strings.TrimSpace(npc.Name)) == normalized {
			return id, true
		}
		if Slug(npc.Name) == slug || Slug(id) == slug {
			return id, true
		}
	}
	return "", false
}
