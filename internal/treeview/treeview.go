// Package treeview turns a root individual into the positioned nodes and
// edges of a descendant tree.
package treeview

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/starford/shajara/internal/apperr"
	"github.com/starford/shajara/internal/gedcom"
	"github.com/starford/shajara/internal/layout"
)

// DefaultMaxDepth is the number of generations shown below the root.
const DefaultMaxDepth = 8

const (
	unknownBirthYear = 9999
	edgeBaseOffset   = 20
	edgeSpouseOffset = 15
	defaultHandle    = "default"
)

// SpouseColors distinguishes children by the spouse they descend through.
var SpouseColors = []string{
	"#6366f1", // indigo
	"#ec4899", // pink
	"#14b8a6", // teal
	"#f59e0b", // amber
	"#8b5cf6", // violet
	"#10b981", // emerald
}

var yearRe = regexp.MustCompile(`\d{4}`)

// Role marks a node or edge relative to a highlighted individual.
type Role string

const (
	RoleNone           Role = ""
	RoleSelected       Role = "selected"
	RoleAncestor       Role = "ancestor"
	RoleDescendant     Role = "descendant"
	RoleDimmed         Role = "dimmed"
	RoleAncestorEdge   Role = "ancestor-edge"
	RoleDescendantEdge Role = "descendant-edge"
)

// Options tunes Build.
type Options struct {
	// MaxDepth limits how many generations below the root are shown.
	// Zero or negative means DefaultMaxDepth.
	MaxDepth int
	// HighlightID, when set, marks its ancestors and descendants.
	HighlightID string
	Layout      layout.Config
}

// Spouse is a partner card drawn next to a node.
type Spouse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Dates     string     `json:"dates,omitempty"`
	Sex       gedcom.Sex `json:"sex"`
	Color     string     `json:"color"`
	Handle    string     `json:"handle"`
	Highlight Role       `json:"highlight,omitempty"`
}

// Node is a positioned person with their spouses.
type Node struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Dates      string     `json:"dates,omitempty"`
	Sex        gedcom.Sex `json:"sex"`
	IsDeceased bool       `json:"is_deceased"`
	IsRoot     bool       `json:"is_root"`
	Depth      int        `json:"depth"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Spouses    []Spouse   `json:"spouses"`
	Highlight  Role       `json:"highlight,omitempty"`
}

// Edge links a parent node to a child node.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"source_handle"`
	Color        string `json:"color"`
	Offset       int    `json:"offset"`
	Highlight    Role   `json:"highlight,omitempty"`
}

// View is the laid-out tree.
type View struct {
	RootID   string `json:"root_id"`
	MaxDepth int    `json:"max_depth"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
}

type queued struct {
	id    string
	depth int
}

type childRef struct {
	id          string
	spouseIndex int
	year        int
}

// Build walks the descendants of rootID breadth-first, down to
// opts.MaxDepth generations, and lays them out. Private individuals and
// everything below them are left out; a private root gives an empty view.
//
// A child reachable from several nodes gets a single edge, from the first
// node that reaches it.
func Build(d *gedcom.Data, rootID string, opts Options) (*View, error) {
	root := d.Individual(rootID)
	if root == nil {
		return nil, fmt.Errorf("treeview: root %s: %w", rootID, apperr.ErrNotFound)
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Layout == (layout.Config{}) {
		opts.Layout = layout.DefaultConfig()
	}

	view := &View{RootID: rootID, MaxDepth: opts.MaxDepth, Nodes: []Node{}, Edges: []Edge{}}
	if root.IsPrivate {
		return view, nil
	}

	hl := newHighlighter(d, opts.HighlightID)
	visited := make(gedcom.Set)
	claimed := gedcom.Set{rootID: {}}
	queue := []queued{{id: rootID}}

	for head := 0; head < len(queue); head++ {
		item := queue[head]
		if item.depth > opts.MaxDepth || visited.Has(item.id) {
			continue
		}
		p := d.Individual(item.id)
		if !gedcom.IsDisplayable(p) {
			continue
		}
		visited[item.id] = struct{}{}

		families := spouseFamilies(d, p)
		spouseIDs := distinctSpouses(d, p.ID, families)

		node := Node{
			ID:         p.ID,
			Name:       gedcom.DisplayName(p),
			Dates:      gedcom.Lifespan(p),
			Sex:        p.Sex,
			IsDeceased: p.IsDeceased,
			IsRoot:     item.depth == 0,
			Depth:      item.depth,
			Spouses:    make([]Spouse, 0, len(spouseIDs)),
			Highlight:  hl.role(p.ID),
		}
		for i, sid := range spouseIDs {
			sp := d.Individual(sid)
			node.Spouses = append(node.Spouses, Spouse{
				ID:        sid,
				Name:      gedcom.DisplayName(sp),
				Dates:     gedcom.Lifespan(sp),
				Sex:       sp.Sex,
				Color:     spouseColor(i),
				Handle:    spouseHandle(i),
				Highlight: hl.role(sid),
			})
		}
		view.Nodes = append(view.Nodes, node)

		for _, c := range orderedChildren(d, p.ID, families, spouseIDs) {
			if claimed.Has(c.id) || item.depth+1 > opts.MaxDepth {
				continue
			}
			claimed[c.id] = struct{}{}

			view.Edges = append(view.Edges, Edge{
				ID:           p.ID + "-" + c.id,
				Source:       p.ID,
				Target:       c.id,
				SourceHandle: spouseHandle(c.spouseIndex),
				Color:        spouseColor(max(0, c.spouseIndex)),
				Offset:       edgeBaseOffset + c.spouseIndex*edgeSpouseOffset,
				Highlight:    hl.edgeRole(p.ID, c.id),
			})
			queue = append(queue, queued{id: c.id, depth: item.depth + 1})
		}
	}

	if err := place(view, opts.Layout); err != nil {
		return nil, err
	}
	return view, nil
}

func place(view *View, cfg layout.Config) error {
	nodes := make([]layout.Node, len(view.Nodes))
	for i, n := range view.Nodes {
		nodes[i] = layout.Node{ID: n.ID, SpouseCount: len(n.Spouses)}
	}
	edges := make([]layout.Edge, len(view.Edges))
	for i, e := range view.Edges {
		edges[i] = layout.Edge{Source: e.Source, Target: e.Target}
	}

	res, err := layout.Compute(nodes, edges, cfg)
	if err != nil {
		return fmt.Errorf("treeview: layout: %w", err)
	}
	for i := range view.Nodes {
		box := res.Boxes[view.Nodes[i].ID]
		view.Nodes[i].X, view.Nodes[i].Y, view.Nodes[i].Width = box.X, box.Y, box.Width
	}
	return nil
}

func spouseFamilies(d *gedcom.Data, p *gedcom.Individual) []*gedcom.Family {
	out := make([]*gedcom.Family, 0, len(p.FamiliesAsSpouse))
	for _, fid := range p.FamiliesAsSpouse {
		if fam := d.Family(fid); fam != nil {
			out = append(out, fam)
		}
	}
	return out
}

func distinctSpouses(d *gedcom.Data, id string, families []*gedcom.Family) []string {
	var out []string
	seen := make(gedcom.Set)
	for _, fam := range families {
		sid := fam.Spouse(id)
		if sid == "" || seen.Has(sid) || !gedcom.IsDisplayable(d.Individual(sid)) {
			continue
		}
		seen[sid] = struct{}{}
		out = append(out, sid)
	}
	return out
}

// orderedChildren lists the displayable children of id across families,
// grouped by spouse and then by birth year.
func orderedChildren(d *gedcom.Data, id string, families []*gedcom.Family, spouseIDs []string) []childRef {
	index := make(map[string]int, len(spouseIDs))
	for i, sid := range spouseIDs {
		index[sid] = i
	}

	var out []childRef
	seen := make(gedcom.Set)
	for _, fam := range families {
		spouseIndex := -1
		if i, ok := index[fam.Spouse(id)]; ok {
			spouseIndex = i
		}
		for _, cid := range fam.Children {
			child := d.Individual(cid)
			if !gedcom.IsDisplayable(child) || seen.Has(cid) {
				continue
			}
			seen[cid] = struct{}{}
			out = append(out, childRef{id: cid, spouseIndex: spouseIndex, year: birthYear(child)})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].spouseIndex != out[j].spouseIndex {
			return out[i].spouseIndex < out[j].spouseIndex
		}
		return out[i].year < out[j].year
	})
	return out
}

// birthYear returns the first four-digit run of the birth date.
func birthYear(p *gedcom.Individual) int {
	m := yearRe.FindString(p.Birth.String())
	if m == "" {
		return unknownBirthYear
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return unknownBirthYear
	}
	return year
}

func spouseColor(i int) string {
	return SpouseColors[i%len(SpouseColors)]
}

func spouseHandle(i int) string {
	if i < 0 {
		return defaultHandle
	}
	return "spouse-" + strconv.Itoa(i)
}
