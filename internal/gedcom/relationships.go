package gedcom

// Relationships lists the displayable relatives of one individual.
type Relationships struct {
	Parents  []*Individual
	Siblings []*Individual
	Spouses  []*Individual
	Children []*Individual
}

// Relationships returns the parents, siblings, spouses and children of id.
// Private and missing relatives are left out. An unknown id yields four
// empty lists.
func (d *Data) Relationships(id string) Relationships {
	rel := Relationships{
		Parents:  []*Individual{},
		Siblings: []*Individual{},
		Spouses:  []*Individual{},
		Children: []*Individual{},
	}
	p := d.Individual(id)
	if p == nil {
		return rel
	}

	if fam := d.Family(p.FamilyAsChild); fam != nil {
		for _, parent := range fam.Parents() {
			if q := d.Individual(parent); IsDisplayable(q) {
				rel.Parents = append(rel.Parents, q)
			}
		}
		// duplicate CHIL lines are listed once per line
		for _, child := range fam.Children {
			if child == id {
				continue
			}
			if q := d.Individual(child); IsDisplayable(q) {
				rel.Siblings = append(rel.Siblings, q)
			}
		}
	}

	spouses := make(Set)
	children := make(Set)
	for _, famID := range p.FamiliesAsSpouse {
		fam := d.Family(famID)
		if fam == nil {
			continue
		}
		if sp := d.Individual(fam.Spouse(id)); IsDisplayable(sp) && !spouses.Has(sp.ID) {
			spouses.add(sp.ID)
			rel.Spouses = append(rel.Spouses, sp)
		}
		for _, child := range fam.Children {
			if q := d.Individual(child); IsDisplayable(q) && !children.Has(child) {
				children.add(child)
				rel.Children = append(rel.Children, q)
			}
		}
	}
	return rel
}
