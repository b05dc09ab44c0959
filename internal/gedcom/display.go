package gedcom

import "strings"

// DefaultNasabDepth is the number of generations DisplayNameWithNasab
// includes when callers have no preference: the person and their father.
const DefaultNasabDepth = 2

const (
	unknownName = "Unknown"
	connectorM  = "بن"
	connectorF  = "بنت"
)

// DisplayName returns the label used for p in lists and search.
func DisplayName(p *Individual) string {
	if p == nil {
		return unknownName
	}
	if wordCount(p.Name) > 1 {
		return p.Name
	}
	switch {
	case p.GivenName != "" && p.Surname != "":
		return p.GivenName + " " + p.Surname
	case p.GivenName != "":
		return p.GivenName
	case p.Name != "":
		return p.Name
	case p.Surname != "":
		return p.Surname
	}
	return unknownName
}

func wordCount(s string) int {
	n := 0
	for _, w := range strings.Split(s, " ") {
		if w != "" {
			n++
		}
	}
	return n
}

// DisplayNameWithNasab builds a patronymic name: the given name of p, then
// "بن"/"بنت" and each father's given name, then a single surname.
//
// depth counts generations including p. 1 returns DisplayName(p) and 0
// climbs until the chain ends or repeats.
func DisplayNameWithNasab(d *Data, p *Individual, depth int) string {
	if p == nil {
		return unknownName
	}
	if depth == 1 {
		return DisplayName(p)
	}

	parts := []string{firstNonEmpty(p.GivenName, p.Name, unknownName)}
	visited := map[string]bool{p.ID: true}
	current, last := p, p

	for generations := 1; depth == 0 || generations < depth; generations++ {
		father := d.Father(current)
		if father == nil || visited[father.ID] {
			break
		}
		visited[father.ID] = true

		connector := connectorM
		if current.Sex == SexFemale {
			connector = connectorF
		}
		parts = append(parts, connector, firstNonEmpty(father.GivenName, father.Name, unknownName))
		current, last = father, father
	}

	if surname := firstNonEmpty(last.Surname, p.Surname); surname != "" {
		parts = append(parts, surname)
	}
	return strings.Join(parts, " ")
}

// Label is the root-selector text for p: its nasab name at
// DefaultNasabDepth and, when known, the birth date in parentheses.
func Label(d *Data, p *Individual) string {
	text := DisplayNameWithNasab(d, p, DefaultNasabDepth)
	if p != nil && p.Birth.Known() {
		text += " (" + p.Birth.String() + ")"
	}
	return text
}

// Lifespan formats "birth - death" for search results, with "?" standing in
// for an unknown birth. It is "" when neither date is known.
func Lifespan(p *Individual) string {
	if p == nil || (!p.Birth.Known() && !p.Death.Known()) {
		return ""
	}
	return firstNonEmpty(p.Birth.String(), "?") + " - " + p.Death.String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
