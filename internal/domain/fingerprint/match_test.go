package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

func cyclohexaneSpec() chem.GraphSpec {
	atoms := make([]chem.AtomSpec, 6)
	bonds := make([]chem.BondSpec, 6)
	for i := 0; i < 6; i++ {
		atoms[i] = chem.AtomSpec{Element: "C", ImplicitHydrogens: 2}
		bonds[i] = chem.BondSpec{A: i, B: (i + 1) % 6, Order: chem.BondSingle}
	}
	return chem.GraphSpec{Name: "cyclohexane", Atoms: atoms, Bonds: bonds}
}

func TestFragmentPattern_Matches(t *testing.T) {
	tests := []struct {
		name string
		pat  fragmentPattern
		spec chem.GraphSpec
		want bool
	}{
		{"carbonyl in acetic acid", patCarbonyl, aceticAcidSpec(), true},
		{"carbonyl in ethanol", patCarbonyl, ethanolSpec(), false},
		{"hydroxyl in ethanol", patHydroxyl, ethanolSpec(), true},
		{"carboxylic acid in acetic acid", patCarboxylicAcid, aceticAcidSpec(), true},
		{"carboxylic acid in ethanol", patCarboxylicAcid, ethanolSpec(), false},
		{"benzene ring in benzene", patBenzeneRing, benzeneSpec(), true},
		{"benzene ring in cyclohexane", patBenzeneRing, cyclohexaneSpec(), false},
		{"methyl in ethane", patMethyl, ethaneSpec(), true},
		{"methyl in benzene", patMethyl, benzeneSpec(), false},
		// Ethanol's oxygen has only one carbon neighbor; the injective
		// mapping must not reuse it for both ether branches.
		{"ether in ethanol", patEther, ethanolSpec(), false},
		{"alkene in ethane", patAlkeneCC, ethaneSpec(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pat.matches(mustGraph(t, tt.spec)))
		})
	}
}

func TestFragmentPattern_EtherInDiethylEther(t *testing.T) {
	spec := chem.GraphSpec{
		Name: "diethyl ether",
		Atoms: []chem.AtomSpec{
			{Element: "C", ImplicitHydrogens: 3},
			{Element: "C", ImplicitHydrogens: 2},
			{Element: "O"},
			{Element: "C", ImplicitHydrogens: 2},
			{Element: "C", ImplicitHydrogens: 3},
		},
		Bonds: []chem.BondSpec{
			{A: 0, B: 1, Order: chem.BondSingle},
			{A: 1, B: 2, Order: chem.BondSingle},
			{A: 2, B: 3, Order: chem.BondSingle},
			{A: 3, B: 4, Order: chem.BondSingle},
		},
	}

	assert.True(t, patEther.matches(mustGraph(t, spec)))
	assert.False(t, patHydroxyl.matches(mustGraph(t, spec)))
}

func TestTriState(t *testing.T) {
	assert.True(t, anyValue.accepts(true))
	assert.True(t, anyValue.accepts(false))
	assert.True(t, mustBeTrue.accepts(true))
	assert.False(t, mustBeTrue.accepts(false))
	assert.True(t, mustBeFalse.accepts(false))
	assert.False(t, mustBeFalse.accepts(true))
}
