package fingerprint

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemFP-Engine/pkg/errors"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

func distinctIdentifiers(features []Feature) map[uint64]bool {
	ids := make(map[uint64]bool, len(features))
	for _, f := range features {
		ids[f.Identifier] = true
	}
	return ids
}

func TestCircularFeatures_RadiusZero(t *testing.T) {
	g := mustGraph(t, ethanolSpec())

	features, err := CircularFeatures(g, 0)
	require.NoError(t, err)

	// One feature per atom, and all three environments (CH3, CH2, OH) are
	// chemically distinct.
	assert.Len(t, features, 3)
	assert.Len(t, distinctIdentifiers(features), 3)
	for _, f := range features {
		assert.Equal(t, 0, f.Radius)
	}
}

func TestCircularFeatures_Ethane(t *testing.T) {
	g := mustGraph(t, ethaneSpec())

	features, err := CircularFeatures(g, 1)
	require.NoError(t, err)

	// Both carbons share one radius-0 environment and one radius-1
	// environment, so the expansion yields exactly two distinct identifiers.
	assert.Len(t, distinctIdentifiers(features), 2)

	rec, err := ComputeCircular(g, 1, 1024)
	require.NoError(t, err)
	assert.Greater(t, rec.Vector.PopCount(), 0)
}

func TestCircularFeatures_BadRadius(t *testing.T) {
	g := mustGraph(t, ethaneSpec())

	for _, r := range []int{-1, MaxRadius + 1} {
		_, err := CircularFeatures(g, r)
		assert.True(t, errors.IsCode(err, errors.CodeFingerprintParams), "radius %d", r)
	}

	_, err := CircularFeatures(nil, 2)
	assert.True(t, errors.IsMalformedGraph(err))
}

func TestComputeCircular_Deterministic(t *testing.T) {
	g := mustGraph(t, aceticAcidSpec())

	a, err := ComputeCircular(g, 2, 1024)
	require.NoError(t, err)
	b, err := ComputeCircular(g, 2, 1024)
	require.NoError(t, err)

	assert.True(t, a.Vector.Equal(b.Vector))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestComputeCircular_PermutationInvariant(t *testing.T) {
	tests := []struct {
		spec chem.GraphSpec
		perm []int
	}{
		{ethanolSpec(), []int{2, 0, 1}},
		{aceticAcidSpec(), []int{3, 1, 0, 2}},
		{benzeneSpec(), []int{5, 3, 1, 0, 4, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.spec.Name, func(t *testing.T) {
			g1 := mustGraph(t, tt.spec)
			g2 := mustGraph(t, permuteSpec(tt.spec, tt.perm))

			a, err := ComputeCircular(g1, 2, 1024)
			require.NoError(t, err)
			b, err := ComputeCircular(g2, 2, 1024)
			require.NoError(t, err)

			assert.True(t, a.Vector.Equal(b.Vector))
		})
	}
}

func TestCircularFeatures_RadiusMonotonic(t *testing.T) {
	g := mustGraph(t, aceticAcidSpec())

	var prev map[uint64]bool
	for r := 0; r <= 3; r++ {
		features, err := CircularFeatures(g, r)
		require.NoError(t, err)
		ids := distinctIdentifiers(features)
		for id := range prev {
			assert.True(t, ids[id], "radius %d lost an identifier from radius %d", r, r-1)
		}
		prev = ids
	}
}

func TestComputeCircular_RadiusMonotonicBits(t *testing.T) {
	g := mustGraph(t, benzeneSpec())

	small, err := ComputeCircular(g, 1, 512)
	require.NoError(t, err)
	large, err := ComputeCircular(g, 3, 512)
	require.NoError(t, err)

	// Every feature at radius 1 survives into radius 3, so OR-folding makes
	// the radius-1 bits a subset of the radius-3 bits.
	for i := 0; i < 512; i++ {
		if small.Vector.Get(i) {
			assert.True(t, large.Vector.Get(i), "bit %d", i)
		}
	}
}

func TestComputeCircular_BondOrderSensitive(t *testing.T) {
	single := mustGraph(t, ethaneSpec())
	double := mustGraph(t, chem.GraphSpec{
		Name: "ethene",
		Atoms: []chem.AtomSpec{
			{Element: "C", ImplicitHydrogens: 2},
			{Element: "C", ImplicitHydrogens: 2},
		},
		Bonds: []chem.BondSpec{{A: 0, B: 1, Order: chem.BondDouble}},
	})

	a, err := ComputeCircular(single, 1, 1024)
	require.NoError(t, err)
	b, err := ComputeCircular(double, 1, 1024)
	require.NoError(t, err)

	assert.False(t, a.Vector.Equal(b.Vector))
}

func TestComputeCircular_DisconnectedIdenticalAtoms(t *testing.T) {
	one := mustGraph(t, chem.GraphSpec{
		Name:  "methane",
		Atoms: []chem.AtomSpec{{Element: "C", ImplicitHydrogens: 4}},
	})
	two := mustGraph(t, chem.GraphSpec{
		Name: "two methanes",
		Atoms: []chem.AtomSpec{
			{Element: "C", ImplicitHydrogens: 4},
			{Element: "C", ImplicitHydrogens: 4},
		},
	})

	a, err := ComputeCircular(one, 2, 256)
	require.NoError(t, err)
	b, err := ComputeCircular(two, 2, 256)
	require.NoError(t, err)

	// Duplicate environments collapse into the same identifier, so the two
	// graphs fold to identical vectors.
	assert.True(t, a.Vector.Equal(b.Vector))
	assert.Equal(t, 1, a.Vector.PopCount())
}

func TestComputeCircular_FoldBounds(t *testing.T) {
	g := mustGraph(t, benzeneSpec())

	for _, length := range []int{64, 166, 1024, 2048} {
		t.Run(fmt.Sprintf("len-%d", length), func(t *testing.T) {
			rec, err := ComputeCircular(g, 3, length)
			require.NoError(t, err)
			assert.Equal(t, length, rec.Vector.Len())
			assert.Greater(t, rec.Vector.PopCount(), 0)
			assert.LessOrEqual(t, rec.Vector.PopCount(), length)
		})
	}
}

func TestComputeCircular_RecordHeader(t *testing.T) {
	g := mustGraph(t, ethanolSpec())

	rec, err := ComputeCircular(g, 2, 1024)
	require.NoError(t, err)

	assert.Equal(t, chem.SchemeCircular, rec.Scheme)
	assert.Equal(t, 2, rec.Radius)
	assert.Equal(t, "", rec.KeySet)
	assert.Equal(t, "ethanol", rec.Molecule)
	assert.NotEmpty(t, rec.ID)
}
