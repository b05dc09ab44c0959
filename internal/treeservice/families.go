package treeservice

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/starford/shajara/internal/apperr"
	"github.com/starford/shajara/internal/gedcom"
)

// FamilyInfo is a family as listed to clients.
type FamilyInfo struct {
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name"`
	Source      string `json:"source"`
	RootID      string `json:"root_id,omitempty"`
	Loaded      bool   `json:"loaded"`
}

// RootInfo is the individual a family tree starts from.
type RootInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Label  string `json:"label"`
	Forced bool   `json:"forced"`
}

// FamilyDetail describes a loaded family.
type FamilyDetail struct {
	FamilyInfo
	Root       RootInfo     `json:"root"`
	Stats      gedcom.Stats `json:"stats"`
	Total      gedcom.Stats `json:"total"`
	Checksum   string       `json:"checksum"`
	Generation string       `json:"generation"`
}

// familyView binds a family to the snapshot it reads from.
type familyView struct {
	Family
	snap *snapshot
}

func (v familyView) data() *gedcom.Data { return v.snap.data }

// SlugFor derives a family slug from a source path: the lower-cased base
// name without its extension.
func SlugFor(source string) string {
	base := path.Base(source)
	return strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
}

// families returns the configured families, or one family per loaded
// source when none are configured.
func (s *Service) families() []Family {
	if len(s.opts.Families) > 0 {
		return s.opts.Families
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Family, 0, len(s.sources))
	for p, st := range s.sources {
		if st.snap == nil {
			continue
		}
		out = append(out, Family{Slug: SlugFor(p), DisplayName: SlugFor(p), Source: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// Families lists every family with its load state.
func (s *Service) Families(_ context.Context) []FamilyInfo {
	fams := s.families()
	out := make([]FamilyInfo, 0, len(fams))
	for _, f := range fams {
		_, err := s.snapshot(f.Source)
		out = append(out, FamilyInfo{
			Slug:        f.Slug,
			DisplayName: f.DisplayName,
			Source:      f.Source,
			RootID:      f.RootID,
			Loaded:      err == nil,
		})
	}
	return out
}

func (s *Service) family(slug string) (familyView, error) {
	slug = strings.ToLower(slug)
	for _, f := range s.families() {
		if f.Slug != slug {
			continue
		}
		snap, err := s.snapshot(f.Source)
		if err != nil {
			return familyView{}, err
		}
		return familyView{Family: f, snap: snap}, nil
	}
	return familyView{}, fmt.Errorf("treeservice: family %q: %w", slug, apperr.ErrUnknownFamily)
}

// root resolves the family's configured root, falling back to the
// default root of its source.
func (v familyView) root() (*gedcom.Individual, bool, error) {
	p, forced, ok := v.data().ResolveRoot(v.RootID)
	if !ok {
		return nil, false, fmt.Errorf("treeservice: family %q: %w", v.Slug, apperr.ErrNoRoot)
	}
	return p, forced, nil
}

// pick returns the individual with id, or the family root when id is empty.
func (v familyView) pick(id string) (*gedcom.Individual, error) {
	if id == "" {
		p, _, err := v.root()
		return p, err
	}
	p := v.data().Individual(id)
	if p == nil {
		return nil, fmt.Errorf("treeservice: individual %s: %w", id, apperr.ErrNotFound)
	}
	return p, nil
}

func rootInfo(d *gedcom.Data, p *gedcom.Individual, forced bool) RootInfo {
	return RootInfo{ID: p.ID, Name: gedcom.DisplayName(p), Label: gedcom.Label(d, p), Forced: forced}
}

// Family returns the detail of one family.
func (s *Service) Family(_ context.Context, slug string) (*FamilyDetail, error) {
	v, err := s.family(slug)
	if err != nil {
		return nil, err
	}
	p, forced, err := v.root()
	if err != nil {
		return nil, err
	}
	d := v.data()
	return &FamilyDetail{
		FamilyInfo: FamilyInfo{
			Slug:        v.Slug,
			DisplayName: v.DisplayName,
			Source:      v.Source,
			RootID:      v.RootID,
			Loaded:      true,
		},
		Root:       rootInfo(d, p, forced),
		Stats:      d.ScopedStats(p.ID),
		Total:      d.Stats(),
		Checksum:   v.snap.meta.Checksum,
		Generation: v.snap.generation,
	}, nil
}

// DefaultRoot returns the root a family tree starts from.
func (s *Service) DefaultRoot(_ context.Context, slug string) (*RootInfo, error) {
	v, err := s.family(slug)
	if err != nil {
		return nil, err
	}
	p, forced, err := v.root()
	if err != nil {
		return nil, err
	}
	info := rootInfo(v.data(), p, forced)
	return &info, nil
}

// Roots lists root-selector candidates. With gedcom.RootsDescendants only
// the family root and its descendants are listed.
func (s *Service) Roots(_ context.Context, slug string, strategy gedcom.RootStrategy) ([]gedcom.RootAncestor, error) {
	v, err := s.family(slug)
	if err != nil {
		return nil, err
	}
	initial := ""
	if p, _, err := v.root(); err == nil {
		initial = p.ID
	}
	return v.data().RootAncestors(strategy, initial, s.opts.ExcludePrivate), nil
}
