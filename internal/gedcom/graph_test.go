package gedcom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cycleGED = `0 @I1@ INDI
1 NAME Ahmad
1 FAMC @F2@
1 FAMS @F1@
0 @I2@ INDI
1 NAME Mohammad
1 FAMC @F1@
1 FAMS @F2@
0 @F1@ FAM
1 HUSB @I1@
1 CHIL @I2@
0 @F2@ FAM
1 HUSB @I2@
1 CHIL @I1@
`

func TestAncestors(t *testing.T) {
	d := familyData(t)

	assert.Equal(t, []string{"@I1@", "@I2@", "@I3@", "@I5@"}, d.Ancestors("@I6@").Sorted())
	assert.Equal(t, []string{"@I1@", "@I2@"}, d.Ancestors("@I3@").Sorted())
	assert.Empty(t, d.Ancestors("@I1@"))
	assert.Empty(t, d.Ancestors("@missing@"))
}

func TestDescendants(t *testing.T) {
	d := familyData(t)

	assert.Equal(t, []string{"@I3@", "@I4@", "@I6@"}, d.Descendants("@I1@").Sorted())
	assert.Equal(t, []string{"@I6@"}, d.Descendants("@I5@").Sorted())
	assert.Empty(t, d.Descendants("@I6@"))
	assert.Empty(t, d.Descendants("@missing@"))
}

func TestClosuresExcludeSubjectOnCycles(t *testing.T) {
	d := Parse(cycleGED)

	for _, id := range []string{"@I1@", "@I2@"} {
		assert.False(t, d.Ancestors(id).Has(id), "ancestors of %s", id)
		assert.False(t, d.Descendants(id).Has(id), "descendants of %s", id)
	}
	assert.Equal(t, []string{"@I2@"}, d.Descendants("@I1@").Sorted())
	assert.Equal(t, []string{"@I2@"}, d.Ancestors("@I1@").Sorted())
}

func TestDescendantsMonotonic(t *testing.T) {
	d := familyData(t)

	for _, id := range d.IndividualIDs() {
		desc := d.Descendants(id)
		for c := range desc {
			for cc := range d.Descendants(c) {
				if cc == id {
					continue
				}
				assert.True(t, desc.Has(cc), "%s reaches %s through %s", id, cc, c)
			}
		}
	}
}

func TestTreeVisible(t *testing.T) {
	d := familyData(t)

	assert.Equal(t,
		[]string{"@I1@", "@I2@", "@I3@", "@I4@", "@I5@", "@I6@"},
		d.TreeVisible("@I1@", false).Sorted())
	assert.Equal(t,
		[]string{"@I1@", "@I2@", "@I3@", "@I5@", "@I6@"},
		d.TreeVisible("@I1@", true).Sorted())
	assert.Equal(t, []string{"@I3@", "@I5@", "@I6@"}, d.TreeVisible("@I3@", true).Sorted())
}

func TestTreeVisibleExcludesEveryPrivate(t *testing.T) {
	d := familyData(t)

	for _, id := range d.IndividualIDs() {
		for v := range d.TreeVisible(id, true) {
			assert.False(t, d.Individual(v).IsPrivate, "root %s shows private %s", id, v)
		}
	}
	assert.Empty(t, d.TreeVisible("@I4@", true))
	assert.Equal(t, []string{"@I4@"}, d.TreeVisible("@I4@", false).Sorted())
}

func TestTreeVisibleSkipsMissingSpouse(t *testing.T) {
	d := Parse(`0 @I1@ INDI
1 NAME Ahmad
1 FAMS @F1@
1 FAMS @F9@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I404@
`)
	assert.Equal(t, []string{"@I1@"}, d.TreeVisible("@I1@", false).Sorted())
}

func TestFilterOutPrivate(t *testing.T) {
	d := familyData(t)

	in := Set{"@I1@": {}, "@I4@": {}, "@missing@": {}}
	assert.Equal(t, []string{"@I1@"}, d.FilterOutPrivate(in).Sorted())
	assert.True(t, IsDisplayable(d.Individual("@I1@")))
	assert.False(t, IsDisplayable(d.Individual("@I4@")))
	assert.False(t, IsDisplayable(nil))
}

func TestBuildChildrenGraph(t *testing.T) {
	d := Parse(`0 @I1@ INDI
0 @I2@ INDI
0 @I3@ INDI
0 @I4@ INDI
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 CHIL @I3@
0 @F2@ FAM
1 HUSB @I1@
1 CHIL @I4@
1 CHIL @I3@
`)
	g := BuildChildrenGraph(d)

	require.Len(t, g, 4)
	assert.Equal(t, []string{"@I3@", "@I4@"}, g["@I1@"])
	assert.Equal(t, []string{"@I3@"}, g["@I2@"])
	assert.Equal(t, []string{}, g["@I3@"])
	assert.Equal(t, []string{}, g["@I4@"])
}

func TestCalculateDescendantCountsMatchesClosureOnTrees(t *testing.T) {
	d := familyData(t)
	counts := CalculateDescendantCounts(d, BuildChildrenGraph(d))

	for _, id := range d.IndividualIDs() {
		assert.Equal(t, len(d.Descendants(id)), counts[id], id)
	}
	assert.Equal(t, 3, counts["@I1@"])
	assert.Equal(t, 0, counts["@I7@"])

	t.Run("dangling child", func(t *testing.T) {
		d := Parse(danglingChildGED)
		counts := CalculateDescendantCounts(d, BuildChildrenGraph(d))
		for _, id := range d.IndividualIDs() {
			assert.Equal(t, len(d.Descendants(id)), counts[id], id)
		}
	})
}

const danglingChildGED = `0 @I1@ INDI
1 FAMS @F1@
0 @I2@ INDI
1 FAMC @F1@
0 @F1@ FAM
1 HUSB @I1@
1 CHIL @I2@
1 CHIL @GHOST@
`

func TestClosuresSkipDanglingChildren(t *testing.T) {
	d := Parse(danglingChildGED)

	assert.Equal(t, []string{"@I2@"}, d.Descendants("@I1@").Sorted())
	assert.Equal(t, []string{"@I1@", "@I2@"}, d.TreeVisible("@I1@", false).Sorted())
	assert.Equal(t, Stats{Individuals: 2, Families: 1}, d.ScopedStats("@I1@"))
	assert.Empty(t, d.Ancestors("@GHOST@"))
}

func TestCalculateDescendantCountsCreditsEachPath(t *testing.T) {
	// I2 and I3 are siblings who share the child I4.
	d := Parse(`0 @I1@ INDI
1 FAMS @F1@
0 @I2@ INDI
1 FAMC @F1@
1 FAMS @F2@
0 @I3@ INDI
1 FAMC @F1@
1 FAMS @F2@
0 @I4@ INDI
1 FAMC @F2@
0 @F1@ FAM
1 HUSB @I1@
1 CHIL @I2@
1 CHIL @I3@
0 @F2@ FAM
1 HUSB @I2@
1 WIFE @I3@
1 CHIL @I4@
`)
	counts := CalculateDescendantCounts(d, BuildChildrenGraph(d))

	assert.Len(t, d.Descendants("@I1@"), 3)
	assert.Equal(t, 4, counts["@I1@"])
}

func TestCalculateDescendantCountsTerminatesOnCycle(t *testing.T) {
	d := Parse(cycleGED)
	counts := CalculateDescendantCounts(d, BuildChildrenGraph(d))
	assert.Equal(t, 0, counts["@I1@"])
	assert.Equal(t, 0, counts["@I2@"])
}

func TestCalculateDescendantCountsIgnoresDanglingChildren(t *testing.T) {
	d := Parse(danglingChildGED)
	counts := CalculateDescendantCounts(d, BuildChildrenGraph(d))
	assert.Equal(t, 1, counts["@I1@"])
}

func TestStats(t *testing.T) {
	d := familyData(t)

	assert.Equal(t, Stats{Individuals: 7, Families: 2}, d.Stats())
	assert.Equal(t, Stats{Individuals: 4, Families: 2}, d.ScopedStats("@I1@"))
	assert.Equal(t, Stats{Individuals: 2, Families: 1}, d.ScopedStats("@I3@"))
	assert.Equal(t, Stats{Individuals: 1, Families: 0}, d.ScopedStats("@I7@"))
}

func TestLineage(t *testing.T) {
	d := familyData(t)

	l := d.Lineage("@I3@")
	assert.Equal(t, []string{"@I1@", "@I2@"}, l.Ancestors.Sorted())
	assert.Equal(t, []string{"@I6@"}, l.Descendants.Sorted())
}
