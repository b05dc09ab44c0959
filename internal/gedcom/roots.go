package gedcom

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RootStrategy selects which individuals are offered as root candidates.
type RootStrategy string

const (
	// RootsAll offers every individual.
	RootsAll RootStrategy = "all"
	// RootsDescendants offers the initial root and its descendants.
	RootsDescendants RootStrategy = "descendants"
)

// ParseRootStrategy parses s, defaulting to RootsDescendants when s is empty.
func ParseRootStrategy(s string) (RootStrategy, error) {
	switch RootStrategy(s) {
	case "", RootsDescendants:
		return RootsDescendants, nil
	case RootsAll:
		return RootsAll, nil
	}
	return "", fmt.Errorf("gedcom: unknown root strategy %q", s)
}

// SortByName orders people by display name using the Unicode root
// collation, breaking ties by id.
func SortByName(people []*Individual) {
	col := collate.New(language.Und)
	names := make(map[string]string, len(people))
	for _, p := range people {
		names[p.ID] = DisplayName(p)
	}
	sort.SliceStable(people, func(i, j int) bool {
		a, b := people[i], people[j]
		if c := col.CompareString(names[a.ID], names[b.ID]); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

// FindRootAncestors returns every individual, optionally without the
// private ones, sorted by display name.
func (d *Data) FindRootAncestors(excludePrivate bool) []*Individual {
	out := make([]*Individual, 0, len(d.Individuals))
	for _, p := range d.Individuals {
		if excludePrivate && p.IsPrivate {
			continue
		}
		out = append(out, p)
	}
	SortByName(out)
	return out
}

// RootAncestors projects FindRootAncestors into root-selector candidates.
// With RootsDescendants only initialRoot and its descendants are kept; an
// empty initialRoot keeps everyone.
func (d *Data) RootAncestors(strategy RootStrategy, initialRoot string, excludePrivate bool) []RootAncestor {
	var scope Set
	if strategy == RootsDescendants && initialRoot != "" {
		scope = d.Descendants(initialRoot)
		scope.add(initialRoot)
	}

	people := d.FindRootAncestors(excludePrivate)
	out := make([]RootAncestor, 0, len(people))
	for _, p := range people {
		if scope != nil && !scope.Has(p.ID) {
			continue
		}
		out = append(out, RootAncestor{ID: p.ID, Text: Label(d, p)})
	}
	return out
}

// DefaultRoot picks the individual a tree should start from. Among the
// individuals without a parent family it returns the one with the most
// descendants, the earliest parsed one winning a tie. With no such
// individual it returns the alphabetically first one. ok is false only when
// d has no individuals.
func (d *Data) DefaultRoot() (root *Individual, ok bool) {
	var trueRoots []*Individual
	for _, id := range d.ParseOrder() {
		if p := d.Individuals[id]; !p.HasFamilyAsChild() {
			trueRoots = append(trueRoots, p)
		}
	}

	switch len(trueRoots) {
	case 0:
		all := d.FindRootAncestors(false)
		if len(all) == 0 {
			return nil, false
		}
		return all[0], true
	case 1:
		return trueRoots[0], true
	}

	counts := CalculateDescendantCounts(d, BuildChildrenGraph(d))
	best := -1
	for _, p := range trueRoots {
		if c := counts[p.ID]; c > best {
			best = c
			root = p
		}
	}
	return root, true
}

// ResolveRoot returns the individual with preferredID when it exists, and
// DefaultRoot otherwise. forced reports whether preferredID was used.
func (d *Data) ResolveRoot(preferredID string) (root *Individual, forced bool, ok bool) {
	if p := d.Individual(preferredID); p != nil {
		return p, true, true
	}
	root, ok = d.DefaultRoot()
	return root, false, ok
}
