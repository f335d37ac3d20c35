package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemFP-Engine/internal/domain/graph"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

func mustGraph(t *testing.T, spec chem.GraphSpec) *graph.Graph {
	t.Helper()
	g, err := graph.New(spec)
	require.NoError(t, err)
	return g
}

func ethaneSpec() chem.GraphSpec {
	return chem.GraphSpec{
		Name: "ethane",
		Atoms: []chem.AtomSpec{
			{Element: "C", ImplicitHydrogens: 3},
			{Element: "C", ImplicitHydrogens: 3},
		},
		Bonds: []chem.BondSpec{{A: 0, B: 1, Order: chem.BondSingle}},
	}
}

func ethanolSpec() chem.GraphSpec {
	return chem.GraphSpec{
		Name: "ethanol",
		Atoms: []chem.AtomSpec{
			{Element: "C", ImplicitHydrogens: 3},
			{Element: "C", ImplicitHydrogens: 2},
			{Element: "O", ImplicitHydrogens: 1},
		},
		Bonds: []chem.BondSpec{
			{A: 0, B: 1, Order: chem.BondSingle},
			{A: 1, B: 2, Order: chem.BondSingle},
		},
	}
}

func benzeneSpec() chem.GraphSpec {
	atoms := make([]chem.AtomSpec, 6)
	bonds := make([]chem.BondSpec, 6)
	for i := 0; i < 6; i++ {
		atoms[i] = chem.AtomSpec{Element: "C", Aromatic: true, ImplicitHydrogens: 1}
		bonds[i] = chem.BondSpec{A: i, B: (i + 1) % 6, Order: chem.BondAromatic}
	}
	return chem.GraphSpec{Name: "benzene", Atoms: atoms, Bonds: bonds}
}

func aceticAcidSpec() chem.GraphSpec {
	return chem.GraphSpec{
		Name: "acetic acid",
		Atoms: []chem.AtomSpec{
			{Element: "C", ImplicitHydrogens: 3},
			{Element: "C"},
			{Element: "O"},
			{Element: "O", ImplicitHydrogens: 1},
		},
		Bonds: []chem.BondSpec{
			{A: 0, B: 1, Order: chem.BondSingle},
			{A: 1, B: 2, Order: chem.BondDouble},
			{A: 1, B: 3, Order: chem.BondSingle},
		},
	}
}

// permuteSpec relabels atoms so that old index i becomes perm[i], remapping
// bonds accordingly.  Same molecule, different declaration order.
func permuteSpec(spec chem.GraphSpec, perm []int) chem.GraphSpec {
	out := chem.GraphSpec{
		Name:  spec.Name,
		Atoms: make([]chem.AtomSpec, len(spec.Atoms)),
		Bonds: make([]chem.BondSpec, len(spec.Bonds)),
	}
	for i, a := range spec.Atoms {
		out.Atoms[perm[i]] = a
	}
	for i, b := range spec.Bonds {
		out.Bonds[i] = chem.BondSpec{A: perm[b.A], B: perm[b.B], Order: b.Order}
	}
	return out
}
