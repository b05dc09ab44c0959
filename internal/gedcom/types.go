// Package gedcom parses a subset of the GEDCOM interchange format into an
// immutable graph of individuals and families, and derives the traversal
// views used by the tree service.
package gedcom

import "sort"

// Sex of an individual as recorded by the SEX tag.
type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexUnknown Sex = "U"
)

func parseSex(v string) Sex {
	switch v {
	case "M":
		return SexMale
	case "F":
		return SexFemale
	default:
		return SexUnknown
	}
}

// Date is a normalized date string. The zero value means the date is unknown.
type Date string

// Known reports whether a date was recorded.
func (d Date) Known() bool { return d != "" }

func (d Date) String() string { return string(d) }

// Individual is a single INDI record.
type Individual struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	GivenName        string   `json:"given_name,omitempty"`
	Surname          string   `json:"surname,omitempty"`
	Sex              Sex      `json:"sex"`
	Birth            Date     `json:"birth,omitempty"`
	Death            Date     `json:"death,omitempty"`
	IsDeceased       bool     `json:"is_deceased"`
	IsPrivate        bool     `json:"is_private"`
	FamiliesAsSpouse []string `json:"families_as_spouse"`
	FamilyAsChild    string   `json:"family_as_child,omitempty"`
}

// HasFamilyAsChild reports whether the individual is linked to a parent family.
func (p *Individual) HasFamilyAsChild() bool { return p != nil && p.FamilyAsChild != "" }

// Family is a single FAM record. Husband and Wife are empty when absent.
type Family struct {
	ID       string   `json:"id"`
	Husband  string   `json:"husband,omitempty"`
	Wife     string   `json:"wife,omitempty"`
	Children []string `json:"children"`
}

// Parents returns the present parent ids, husband first.
func (f *Family) Parents() []string {
	out := make([]string, 0, 2)
	if f.Husband != "" {
		out = append(out, f.Husband)
	}
	if f.Wife != "" {
		out = append(out, f.Wife)
	}
	return out
}

// Spouse returns the partner of id in f: the wife when id is the husband,
// otherwise the husband. It is "" when that slot is empty.
func (f *Family) Spouse(id string) string {
	if f.Husband == id {
		return f.Wife
	}
	return f.Husband
}

// Data holds every record of one parsed source. It is never mutated after
// Parse returns.
type Data struct {
	Individuals map[string]*Individual `json:"individuals"`
	Families    map[string]*Family     `json:"families"`

	// order holds individual ids in the order their INDI records first
	// appeared.
	order []string
}

func newData() *Data {
	return &Data{
		Individuals: make(map[string]*Individual),
		Families:    make(map[string]*Family),
	}
}

// Individual returns the individual with id, or nil.
func (d *Data) Individual(id string) *Individual {
	if id == "" {
		return nil
	}
	return d.Individuals[id]
}

// Family returns the family with id, or nil.
func (d *Data) Family(id string) *Family {
	if id == "" {
		return nil
	}
	return d.Families[id]
}

// IndividualIDs returns all individual ids in sorted order.
func (d *Data) IndividualIDs() []string {
	ids := make([]string, 0, len(d.Individuals))
	for id := range d.Individuals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ParseOrder returns all individual ids in the order they were parsed. A
// redefined id keeps the position of its first record.
func (d *Data) ParseOrder() []string {
	if len(d.order) != len(d.Individuals) {
		return d.IndividualIDs()
	}
	return append([]string(nil), d.order...)
}

// FamilyIDs returns all family ids in sorted order.
func (d *Data) FamilyIDs() []string {
	ids := make([]string, 0, len(d.Families))
	for id := range d.Families {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Father resolves p's father through FAMC and HUSB.
func (d *Data) Father(p *Individual) *Individual {
	if !p.HasFamilyAsChild() {
		return nil
	}
	fam := d.Family(p.FamilyAsChild)
	if fam == nil {
		return nil
	}
	return d.Individual(fam.Husband)
}

// RootAncestor is a root-selection candidate.
type RootAncestor struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Stats summarizes a data set or a root-scoped portion of it.
type Stats struct {
	Individuals int `json:"individuals"`
	Families    int `json:"families"`
}

// Set is an unordered collection of individual ids.
type Set map[string]struct{}

// Has reports whether id is in s.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) add(id string) { s[id] = struct{}{} }

// Sorted returns the members of s in sorted order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
