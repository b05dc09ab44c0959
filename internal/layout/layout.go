// Package layout computes collision-free coordinates for a rooted family
// tree. Each node is centered above the full width of its descendants and
// sibling subtrees never overlap horizontally.
package layout

import "errors"

// ErrNoRoot is returned when every node is the target of an edge.
var ErrNoRoot = errors.New("layout: no root node")

// Config holds the layout dimensions, in pixels.
type Config struct {
	NodeWidth     float64
	NodeHeight    float64
	SpouseWidth   float64
	HorizontalGap float64
	VerticalGap   float64
}

// DefaultConfig returns the dimensions used by the tree view.
func DefaultConfig() Config {
	return Config{
		NodeWidth:     140,
		NodeHeight:    60,
		SpouseWidth:   160,
		HorizontalGap: 30,
		VerticalGap:   80,
	}
}

// OwnWidth is the width of a node card carrying spouseCount spouse cards.
func (c Config) OwnWidth(spouseCount int) float64 {
	return c.NodeWidth + float64(spouseCount)*c.SpouseWidth
}

// Node is one box to place.
type Node struct {
	ID          string
	SpouseCount int
}

// Edge is a primary parent to child link.
type Edge struct {
	Source string
	Target string
}

// Box is the placed rectangle of a node. X and Y are its top-left corner.
type Box struct {
	X, Y         float64
	Width        float64
	SubtreeWidth float64
	Depth        int
}

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return b.X + b.Width/2 }

// Result maps node ids to their boxes. Nodes not reachable from Root are
// placed at the origin with depth 0.
type Result struct {
	Root  string
	Boxes map[string]Box
}

// Compute places nodes using edges as the parent to child relation.
//
// The root is the first node, in input order, that no edge targets. Edges
// that reference unknown nodes, point a node at itself, or give a node a
// second parent are ignored. Children keep the order of their edges.
func Compute(nodes []Node, edges []Edge, cfg Config) (*Result, error) {
	res := &Result{Boxes: make(map[string]Box, len(nodes))}
	if len(nodes) == 0 {
		return res, nil
	}

	own := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		if _, dup := own[n.ID]; !dup {
			own[n.ID] = cfg.OwnWidth(n.SpouseCount)
		}
	}

	childrenOf := make(map[string][]string)
	hasParent := make(map[string]bool)
	for _, e := range edges {
		_, srcOK := own[e.Source]
		_, dstOK := own[e.Target]
		if !srcOK || !dstOK || e.Source == e.Target || hasParent[e.Target] {
			continue
		}
		childrenOf[e.Source] = append(childrenOf[e.Source], e.Target)
		hasParent[e.Target] = true
	}

	for _, n := range nodes {
		if !hasParent[n.ID] {
			res.Root = n.ID
			break
		}
	}
	if res.Root == "" {
		for _, n := range nodes {
			res.Boxes[n.ID] = Box{Width: own[n.ID], SubtreeWidth: own[n.ID]}
		}
		return res, ErrNoRoot
	}

	// Breadth-first order puts every parent before its children, so the
	// reverse order is a valid post-order for the width pass.
	order := []string{res.Root}
	depth := map[string]int{res.Root: 0}
	for i := 0; i < len(order); i++ {
		id := order[i]
		for _, c := range childrenOf[id] {
			if _, seen := depth[c]; seen {
				continue
			}
			depth[c] = depth[id] + 1
			order = append(order, c)
		}
	}

	subtree := make(map[string]float64, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		subtree[id] = max(own[id], cfg.childrenWidth(childrenOf[id], subtree))
	}

	origin := map[string]float64{res.Root: 0}
	rowHeight := cfg.NodeHeight + cfg.VerticalGap
	for _, id := range order {
		x := origin[id]
		res.Boxes[id] = Box{
			X:            x + (subtree[id]-own[id])/2,
			Y:            float64(depth[id]) * rowHeight,
			Width:        own[id],
			SubtreeWidth: subtree[id],
			Depth:        depth[id],
		}

		children := childrenOf[id]
		childX := x + (subtree[id]-cfg.childrenWidth(children, subtree))/2
		for _, c := range children {
			origin[c] = childX
			childX += subtree[c] + cfg.HorizontalGap
		}
	}

	for _, n := range nodes {
		if _, placed := res.Boxes[n.ID]; !placed {
			res.Boxes[n.ID] = Box{Width: own[n.ID], SubtreeWidth: own[n.ID]}
		}
	}
	return res, nil
}

func (c Config) childrenWidth(children []string, subtree map[string]float64) float64 {
	if len(children) == 0 {
		return 0
	}
	total := c.HorizontalGap * float64(len(children)-1)
	for _, id := range children {
		total += subtree[id]
	}
	return total
}
