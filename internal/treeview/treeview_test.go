package treeview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/shajara/internal/apperr"
	"github.com/starford/shajara/internal/gedcom"
)

const treeGED = `0 @I1@ INDI
1 NAME Omar /Saeed/
1 SEX M
1 FAMS @F1@
1 FAMS @F3@
1 FAMS @F4@
0 @I2@ INDI
1 NAME Huda
1 SEX F
1 FAMS @F1@
0 @I3@ INDI
1 NAME Khaled /Saeed/
1 SEX M
1 BIRT
2 DATE 5 MAY 1935
1 FAMC @F1@
1 FAMS @F2@
0 @I4@ INDI
1 NAME Sami /Saeed/
1 BIRT
2 DATE 1930
1 FAMC @F1@
0 @I5@ INDI
1 NAME Salma
1 SEX F
1 FAMS @F2@
0 @I6@ INDI
1 NAME Bassel
1 FAMC @F2@
0 @I8@ INDI
1 NAME Mona
1 SEX F
1 FAMS @F3@
0 @I9@ INDI
1 NAME PRIVATE
1 FAMC @F1@
0 @I10@ INDI
1 NAME Rami
1 BIRT
2 DATE 1920
1 FAMC @F3@
0 @I11@ INDI
1 NAME Nour
1 FAMC @F4@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 CHIL @I4@
1 CHIL @I9@
0 @F2@ FAM
1 HUSB @I3@
1 WIFE @I5@
1 CHIL @I6@
0 @F3@ FAM
1 HUSB @I1@
1 WIFE @I8@
1 CHIL @I10@
0 @F4@ FAM
1 HUSB @I1@
1 CHIL @I11@
`

func nodeIDs(v *View) []string {
	out := make([]string, len(v.Nodes))
	for i, n := range v.Nodes {
		out[i] = n.ID
	}
	return out
}

func nodeByID(t *testing.T, v *View, id string) Node {
	t.Helper()
	for _, n := range v.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %s not in view", id)
	return Node{}
}

func TestBuildOrdersChildrenBySpouseThenBirth(t *testing.T) {
	d := gedcom.Parse(treeGED)

	v, err := Build(d, "@I1@", Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxDepth, v.MaxDepth)
	assert.Equal(t, []string{"@I1@", "@I11@", "@I4@", "@I3@", "@I10@", "@I6@"}, nodeIDs(v))

	require.Len(t, v.Edges, 5)
	want := []Edge{
		{ID: "@I1@-@I11@", Source: "@I1@", Target: "@I11@", SourceHandle: "default", Color: "#6366f1", Offset: 5},
		{ID: "@I1@-@I4@", Source: "@I1@", Target: "@I4@", SourceHandle: "spouse-0", Color: "#6366f1", Offset: 20},
		{ID: "@I1@-@I3@", Source: "@I1@", Target: "@I3@", SourceHandle: "spouse-0", Color: "#6366f1", Offset: 20},
		{ID: "@I1@-@I10@", Source: "@I1@", Target: "@I10@", SourceHandle: "spouse-1", Color: "#ec4899", Offset: 35},
		{ID: "@I3@-@I6@", Source: "@I3@", Target: "@I6@", SourceHandle: "spouse-0", Color: "#6366f1", Offset: 20},
	}
	assert.Equal(t, want, v.Edges)
}

func TestBuildSpouses(t *testing.T) {
	d := gedcom.Parse(treeGED)

	v, err := Build(d, "@I1@", Options{})
	require.NoError(t, err)

	root := nodeByID(t, v, "@I1@")
	assert.True(t, root.IsRoot)
	assert.Equal(t, "Omar Saeed", root.Name)
	require.Len(t, root.Spouses, 2)
	assert.Equal(t, Spouse{ID: "@I2@", Name: "Huda", Sex: gedcom.SexFemale, Color: "#6366f1", Handle: "spouse-0"}, root.Spouses[0])
	assert.Equal(t, "@I8@", root.Spouses[1].ID)
	assert.Equal(t, "#ec4899", root.Spouses[1].Color)

	khaled := nodeByID(t, v, "@I3@")
	assert.False(t, khaled.IsRoot)
	assert.Equal(t, 1, khaled.Depth)
	assert.Equal(t, "05/05/1935 - ", khaled.Dates)
}

func TestBuildPositions(t *testing.T) {
	d := gedcom.Parse(treeGED)

	v, err := Build(d, "@I1@", Options{})
	require.NoError(t, err)

	tests := map[string]struct{ x, y, w float64 }{
		"@I1@":  {175, 0, 460},
		"@I11@": {0, 140, 140},
		"@I4@":  {170, 140, 140},
		"@I3@":  {340, 140, 300},
		"@I10@": {670, 140, 140},
		"@I6@":  {420, 280, 140},
	}
	for id, want := range tests {
		n := nodeByID(t, v, id)
		assert.Equal(t, want.x, n.X, "%s x", id)
		assert.Equal(t, want.y, n.Y, "%s y", id)
		assert.Equal(t, want.w, n.Width, "%s width", id)
	}
}

func TestBuildMaxDepth(t *testing.T) {
	d := gedcom.Parse(treeGED)

	v, err := Build(d, "@I1@", Options{MaxDepth: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"@I1@", "@I11@", "@I4@", "@I3@", "@I10@"}, nodeIDs(v))
	for _, e := range v.Edges {
		assert.NotEqual(t, "@I6@", e.Target)
	}
}

func TestBuildSkipsPrivate(t *testing.T) {
	d := gedcom.Parse(treeGED)

	v, err := Build(d, "@I1@", Options{})
	require.NoError(t, err)
	assert.NotContains(t, nodeIDs(v), "@I9@")

	v, err = Build(d, "@I9@", Options{})
	require.NoError(t, err)
	assert.Empty(t, v.Nodes)
	assert.Empty(t, v.Edges)
}

func TestBuildUnknownRoot(t *testing.T) {
	_, err := Build(gedcom.Parse(treeGED), "@nope@", Options{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBuildSingleEdgePerChild(t *testing.T) {
	// I4 lists I6 as a child of its own family too; the first node in
	// breadth-first order that reaches I6 owns the edge.
	d := gedcom.Parse(treeGED + `0 @I4@ INDI
1 NAME Sami /Saeed/
1 BIRT
2 DATE 1930
1 FAMC @F1@
1 FAMS @F5@
0 @F5@ FAM
1 HUSB @I4@
1 CHIL @I6@
`)

	v, err := Build(d, "@I1@", Options{})
	require.NoError(t, err)

	var sources []string
	for _, e := range v.Edges {
		if e.Target == "@I6@" {
			sources = append(sources, e.Source)
		}
	}
	assert.Equal(t, []string{"@I4@"}, sources)
	assert.Len(t, v.Nodes, 6)
}

func TestBuildHighlight(t *testing.T) {
	d := gedcom.Parse(treeGED)

	v, err := Build(d, "@I1@", Options{HighlightID: "@I3@"})
	require.NoError(t, err)

	root := nodeByID(t, v, "@I1@")
	assert.Equal(t, RoleAncestor, root.Highlight)
	assert.Equal(t, RoleAncestor, root.Spouses[0].Highlight)
	assert.Equal(t, RoleDimmed, root.Spouses[1].Highlight)
	assert.Equal(t, RoleSelected, nodeByID(t, v, "@I3@").Highlight)
	assert.Equal(t, RoleDescendant, nodeByID(t, v, "@I6@").Highlight)
	assert.Equal(t, RoleDimmed, nodeByID(t, v, "@I4@").Highlight)

	roles := make(map[string]Role)
	for _, e := range v.Edges {
		roles[e.ID] = e.Highlight
	}
	assert.Equal(t, RoleAncestorEdge, roles["@I1@-@I3@"])
	assert.Equal(t, RoleDescendantEdge, roles["@I3@-@I6@"])
	assert.Equal(t, RoleDimmed, roles["@I1@-@I4@"])
}

func TestBuildWithoutHighlight(t *testing.T) {
	v, err := Build(gedcom.Parse(treeGED), "@I1@", Options{})
	require.NoError(t, err)
	for _, n := range v.Nodes {
		assert.Equal(t, RoleNone, n.Highlight)
	}
}
