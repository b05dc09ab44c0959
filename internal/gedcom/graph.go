package gedcom

// Ancestors returns every ancestor of id reachable through FAMC links,
// collecting both parents of each generation. id itself is never included.
func (d *Data) Ancestors(id string) Set {
	out := make(Set)
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		p := d.Individual(cur)
		if !p.HasFamilyAsChild() {
			continue
		}
		fam := d.Family(p.FamilyAsChild)
		if fam == nil {
			continue
		}
		for _, parent := range fam.Parents() {
			if parent == id || out.Has(parent) || d.Individual(parent) == nil {
				continue
			}
			out.add(parent)
			stack = append(stack, parent)
		}
	}
	return out
}

// Descendants returns every descendant of id reachable through FAMS links
// and family children. id itself is never included, even on cyclic data.
// Children missing from d are skipped.
func (d *Data) Descendants(id string) Set {
	out := make(Set)
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		p := d.Individual(cur)
		if p == nil {
			continue
		}
		for _, famID := range p.FamiliesAsSpouse {
			fam := d.Family(famID)
			if fam == nil {
				continue
			}
			for _, child := range fam.Children {
				if child == id || out.Has(child) || d.Individual(child) == nil {
					continue
				}
				out.add(child)
				stack = append(stack, child)
			}
		}
	}
	return out
}

// TreeVisible returns the individuals shown in a tree rooted at rootID: the
// root, its descendants, and the spouse from every spouse family of each of
// them. With excludePrivate, private individuals are removed and a private
// root yields an empty set.
func (d *Data) TreeVisible(rootID string, excludePrivate bool) Set {
	visible := make(Set)
	root := d.Individual(rootID)
	if excludePrivate && root != nil && root.IsPrivate {
		return visible
	}

	visible.add(rootID)
	for id := range d.Descendants(rootID) {
		visible.add(id)
	}

	// Spouses found here are not expanded further: a spouse's other
	// spouses stay hidden unless they are descendants themselves.
	members := visible.Sorted()
	for _, id := range members {
		p := d.Individual(id)
		if p == nil {
			continue
		}
		for _, famID := range p.FamiliesAsSpouse {
			fam := d.Family(famID)
			if fam == nil {
				continue
			}
			if spouse := fam.Spouse(id); d.Individual(spouse) != nil {
				visible.add(spouse)
			}
		}
	}

	if excludePrivate {
		return d.FilterOutPrivate(visible)
	}
	return visible
}

// FilterOutPrivate returns the members of ids that exist and are not private.
func (d *Data) FilterOutPrivate(ids Set) Set {
	out := make(Set, len(ids))
	for id := range ids {
		if IsDisplayable(d.Individual(id)) {
			out.add(id)
		}
	}
	return out
}

// IsDisplayable reports whether p exists and is not private.
func IsDisplayable(p *Individual) bool {
	return p != nil && !p.IsPrivate
}

// Lineage holds the highlight sets for one individual.
type Lineage struct {
	Ancestors   Set
	Descendants Set
}

// Lineage returns the ancestors and descendants of id.
func (d *Data) Lineage(id string) Lineage {
	return Lineage{Ancestors: d.Ancestors(id), Descendants: d.Descendants(id)}
}

// BuildChildrenGraph maps every individual to the distinct children of all
// families in which they are a parent. Individuals without children map to
// an empty slice.
func BuildChildrenGraph(d *Data) map[string][]string {
	childrenOf := make(map[string][]string, len(d.Individuals))
	for id := range d.Individuals {
		childrenOf[id] = []string{}
	}

	seen := make(map[string]Set)
	for _, famID := range d.FamilyIDs() {
		fam := d.Families[famID]
		for _, parent := range fam.Parents() {
			if seen[parent] == nil {
				seen[parent] = make(Set)
			}
			for _, child := range fam.Children {
				if seen[parent].Has(child) {
					continue
				}
				seen[parent].add(child)
				childrenOf[parent] = append(childrenOf[parent], child)
			}
		}
	}
	return childrenOf
}

// CalculateDescendantCounts computes, for every individual, how many
// descendants it has by propagating counts from leaves to roots in
// topological order.
//
// A descendant reachable along two lines is credited once per line.
// Individuals on a cycle never become ready and keep a partial count.
// Children missing from d are ignored.
func CalculateDescendantCounts(d *Data, childrenOf map[string][]string) map[string]int {
	ids := d.ParseOrder()
	counts := make(map[string]int, len(ids))
	outDegree := make(map[string]int, len(ids))
	parentsOf := make(map[string][]string)

	for _, id := range ids {
		counts[id] = 0
		for _, child := range childrenOf[id] {
			if d.Individuals[child] == nil {
				continue
			}
			outDegree[id]++
			parentsOf[child] = append(parentsOf[child], id)
		}
	}

	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if outDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	for head := 0; head < len(queue); head++ {
		node := queue[head]
		for _, parent := range parentsOf[node] {
			counts[parent] += 1 + counts[node]
			outDegree[parent]--
			if outDegree[parent] == 0 {
				queue = append(queue, parent)
			}
		}
	}
	return counts
}

// Stats counts all records in d.
func (d *Data) Stats() Stats {
	return Stats{Individuals: len(d.Individuals), Families: len(d.Families)}
}

// ScopedStats counts rootID with its descendants, and the families with at
// least one parent among them.
func (d *Data) ScopedStats(rootID string) Stats {
	scope := d.Descendants(rootID)
	scope.add(rootID)

	families := 0
	for _, fam := range d.Families {
		if (fam.Husband != "" && scope.Has(fam.Husband)) || (fam.Wife != "" && scope.Has(fam.Wife)) {
			families++
		}
	}
	return Stats{Individuals: len(scope), Families: families}
}
