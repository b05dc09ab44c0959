package gedcom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// familyGED is a three-generation family:
//
//	I1 + I2
//	├── I3 + I5
//	│   └── I6
//	└── I4 (private)
//
// I7 is unrelated.
const familyGED = `0 HEAD
1 CHAR UTF-8
0 @I1@ INDI
1 NAME Omar /Saeed/
1 SEX M
1 BIRT
2 DATE 3 MAR 1900
1 DEAT
2 DATE 1970
1 FAMS @F1@
0 @I2@ INDI
1 NAME Huda /Hamdi/
1 SEX F
1 FAMS @F1@
0 @I3@ INDI
1 NAME Khaled /Saeed/
1 SEX M
1 BIRT
2 DATE 1930
1 FAMC @F1@
1 FAMS @F2@
0 @I4@ INDI
1 NAME PRIVATE
1 FAMC @F1@
0 @I5@ INDI
1 NAME Salma
1 SEX F
1 FAMS @F2@
0 @I6@ INDI
1 NAME Bassel
1 SEX M
1 FAMC @F2@
0 @I7@ INDI
1 NAME Zaid /Other/
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 CHIL @I4@
0 @F2@ FAM
1 HUSB @I3@
1 WIFE @I5@
1 CHIL @I6@
0 TRLR
`

func familyData(t *testing.T) *Data {
	t.Helper()
	d := Parse(familyGED)
	require.Len(t, d.Individuals, 7)
	require.Len(t, d.Families, 2)
	return d
}

func ids(people []*Individual) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.ID
	}
	return out
}
