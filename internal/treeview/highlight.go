package treeview

import "github.com/starford/shajara/internal/gedcom"

type highlighter struct {
	id      string
	lineage gedcom.Lineage
}

func newHighlighter(d *gedcom.Data, id string) highlighter {
	if id == "" || d.Individual(id) == nil {
		return highlighter{}
	}
	return highlighter{id: id, lineage: d.Lineage(id)}
}

func (h highlighter) active() bool { return h.id != "" }

func (h highlighter) inLineage(id string) bool {
	return id == h.id || h.lineage.Ancestors.Has(id) || h.lineage.Descendants.Has(id)
}

func (h highlighter) role(id string) Role {
	switch {
	case !h.active():
		return RoleNone
	case id == h.id:
		return RoleSelected
	case h.lineage.Ancestors.Has(id):
		return RoleAncestor
	case h.lineage.Descendants.Has(id):
		return RoleDescendant
	}
	return RoleDimmed
}

func (h highlighter) edgeRole(parent, child string) Role {
	switch {
	case !h.active():
		return RoleNone
	case !h.inLineage(parent) || !h.inLineage(child):
		return RoleDimmed
	case h.lineage.Descendants.Has(child):
		return RoleDescendantEdge
	}
	return RoleAncestorEdge
}
