package gedcom

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// isHaraka matches Arabic short-vowel and related marks (U+064B..U+065F)
// and the superscript alef (U+0670).
func isHaraka(r rune) bool {
	return (r >= 0x064B && r <= 0x065F) || r == 0x0670
}

// NormalizeSearch lower-cases s and strips Arabic diacritics. Letters that
// carry hamza or madda are left intact.
func NormalizeSearch(s string) string {
	t := transform.Chain(runes.Remove(runes.Predicate(isHaraka)), cases.Lower(language.Und))
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(strings.Map(func(r rune) rune {
			if isHaraka(r) {
				return -1
			}
			return r
		}, s))
	}
	return out
}

// MatchesSearch reports whether every whitespace-separated token of query
// occurs in text, ignoring case and Arabic diacritics. A blank query
// matches everything.
func MatchesSearch(text, query string) bool {
	tokens := strings.FieldsFunc(query, unicode.IsSpace)
	if len(tokens) == 0 {
		return true
	}
	normalized := NormalizeSearch(text)
	for _, tok := range tokens {
		if !strings.Contains(normalized, NormalizeSearch(tok)) {
			return false
		}
	}
	return true
}

// SearchResult is one match returned by Data.Search.
type SearchResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Dates string `json:"dates,omitempty"`
}

// Search returns the displayable individuals whose display name matches
// query, ordered by name. A blank query returns nothing. limit <= 0 means
// no limit.
func (d *Data) Search(query string, limit int) []SearchResult {
	out := []SearchResult{}
	if strings.TrimSpace(query) == "" {
		return out
	}
	for _, p := range d.FindRootAncestors(true) {
		name := DisplayName(p)
		if !MatchesSearch(name, query) {
			continue
		}
		out = append(out, SearchResult{ID: p.ID, Name: name, Dates: Lifespan(p)})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
