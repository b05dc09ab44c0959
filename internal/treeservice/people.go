package treeservice

import (
	"context"
	"fmt"

	"github.com/starford/shajara/internal/apperr"
	"github.com/starford/shajara/internal/gedcom"
	"github.com/starford/shajara/internal/models"
)

// PersonRef is a relative as shown next to a person.
type PersonRef struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Birth      string     `json:"birth,omitempty"`
	Death      string     `json:"death,omitempty"`
	Sex        gedcom.Sex `json:"sex"`
	IsDeceased bool       `json:"is_deceased"`
	InTree     bool       `json:"in_tree"`
}

// PersonDetail is one individual with their relatives.
type PersonDetail struct {
	PersonRef
	Nasab    string      `json:"nasab"`
	Dates    string      `json:"dates,omitempty"`
	Parents  []PersonRef `json:"parents"`
	Siblings []PersonRef `json:"siblings"`
	Spouses  []PersonRef `json:"spouses"`
	Children []PersonRef `json:"children"`
}

// LineageView lists the ancestor and descendant ids of one individual.
type LineageView struct {
	ID          string   `json:"id"`
	Ancestors   []string `json:"ancestors"`
	Descendants []string `json:"descendants"`
}

// SearchHit is one search result inside a family.
type SearchHit struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Nasab  string `json:"nasab"`
	Dates  string `json:"dates,omitempty"`
	InTree bool   `json:"in_tree"`
}

// visible returns the ids shown under the family root.
func (s *Service) visible(v familyView) gedcom.Set {
	p, _, err := v.root()
	if err != nil {
		return gedcom.Set{}
	}
	return v.data().TreeVisible(p.ID, s.opts.ExcludePrivate)
}

// person looks up id, hiding private individuals when configured to.
func (s *Service) person(v familyView, id string) (*gedcom.Individual, error) {
	p := v.data().Individual(id)
	if p == nil || (s.opts.ExcludePrivate && !gedcom.IsDisplayable(p)) {
		return nil, fmt.Errorf("treeservice: individual %s: %w", id, apperr.ErrNotFound)
	}
	return p, nil
}

func refOf(p *gedcom.Individual, inTree gedcom.Set) PersonRef {
	return PersonRef{
		ID:         p.ID,
		Name:       gedcom.DisplayName(p),
		Birth:      p.Birth.String(),
		Death:      p.Death.String(),
		Sex:        p.Sex,
		IsDeceased: p.IsDeceased,
		InTree:     inTree.Has(p.ID),
	}
}

func refsOf(people []*gedcom.Individual, inTree gedcom.Set) []PersonRef {
	out := make([]PersonRef, len(people))
	for i, p := range people {
		out[i] = refOf(p, inTree)
	}
	return out
}

// Person returns an individual with their parents, siblings, spouses and
// children. Each relative is flagged with whether the family tree shows it.
func (s *Service) Person(_ context.Context, slug, id string) (*PersonDetail, error) {
	v, err := s.family(slug)
	if err != nil {
		return nil, err
	}
	p, err := s.person(v, id)
	if err != nil {
		return nil, err
	}
	d := v.data()
	inTree := s.visible(v)
	rel := d.Relationships(p.ID)
	return &PersonDetail{
		PersonRef: refOf(p, inTree),
		Nasab:     gedcom.DisplayNameWithNasab(d, p, gedcom.DefaultNasabDepth),
		Dates:     gedcom.Lifespan(p),
		Parents:   refsOf(rel.Parents, inTree),
		Siblings:  refsOf(rel.Siblings, inTree),
		Spouses:   refsOf(rel.Spouses, inTree),
		Children:  refsOf(rel.Children, inTree),
	}, nil
}

// Lineage returns the ancestors and descendants of an individual.
func (s *Service) Lineage(_ context.Context, slug, id string) (*LineageView, error) {
	v, err := s.family(slug)
	if err != nil {
		return nil, err
	}
	p, err := s.person(v, id)
	if err != nil {
		return nil, err
	}
	d := v.data()
	l := d.Lineage(p.ID)
	if s.opts.ExcludePrivate {
		l.Ancestors = d.FilterOutPrivate(l.Ancestors)
		l.Descendants = d.FilterOutPrivate(l.Descendants)
	}
	return &LineageView{ID: p.ID, Ancestors: l.Ancestors.Sorted(), Descendants: l.Descendants.Sorted()}, nil
}

// Search finds people of a family by name. Private individuals are never
// returned and a blank query returns nothing.
func (s *Service) Search(ctx context.Context, slug, query string, limit int) ([]SearchHit, error) {
	v, err := s.family(slug)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	d := v.data()
	inTree := s.visible(v)

	if s.db == nil {
		out := []SearchHit{}
		for _, r := range d.Search(query, limit) {
			p := d.Individuals[r.ID]
			out = append(out, SearchHit{
				ID:     r.ID,
				Name:   r.Name,
				Nasab:  gedcom.DisplayNameWithNasab(d, p, gedcom.DefaultNasabDepth),
				Dates:  r.Dates,
				InTree: inTree.Has(r.ID),
			})
		}
		return out, nil
	}

	rows, err := s.db.Search(ctx, v.Source, query, limit)
	if err != nil {
		return nil, fmt.Errorf("treeservice: search: %w", err)
	}
	out := make([]SearchHit, 0, len(rows))
	for _, r := range rows {
		p := d.Individual(r.ID)
		if !gedcom.IsDisplayable(p) || !gedcom.MatchesSearch(r.Name, query) {
			continue
		}
		out = append(out, SearchHit{
			ID:     r.ID,
			Name:   r.Name,
			Nasab:  r.Nasab,
			Dates:  gedcom.Lifespan(p),
			InTree: inTree.Has(r.ID),
		})
	}
	return out, nil
}

// SearchAll searches every indexed source.
func (s *Service) SearchAll(ctx context.Context, query string, limit int) ([]models.PersonSummary, error) {
	if s.db == nil {
		return nil, fmt.Errorf("treeservice: search all: index disabled: %w", apperr.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	rows, err := s.db.Search(ctx, "", query, limit)
	if err != nil {
		return nil, fmt.Errorf("treeservice: search all: %w", err)
	}
	return nonNilSlice(rows), nil
}
