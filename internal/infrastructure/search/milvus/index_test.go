package milvus

import (
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemFP-Engine/internal/config"
	"github.com/turtacn/ChemFP-Engine/internal/domain/fingerprint"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

func testIndex() *FingerprintIndex {
	cfg := config.MilvusConfig{
		CollectionPrefix: "chemfp",
		IndexNList:       128,
		SearchNProbe:     16,
		DefaultTopK:      10,
	}
	return NewFingerprintIndex(nil, cfg, nil, nil)
}

func TestFingerprintIndex_CollectionName(t *testing.T) {
	x := testIndex()

	assert.Equal(t, "chemfp_circular_r2_l1024", x.CollectionName(chem.SchemeCircular, 2, 1024))
	assert.Equal(t, "chemfp_keyed_r0_l166", x.CollectionName(chem.SchemeKeyed, 0, 166))

	// Distinct parameter sets must never collide on a collection.
	names := map[string]bool{}
	for _, radius := range []int{0, 1, 2, 3} {
		for _, length := range []int{166, 512, 1024} {
			names[x.CollectionName(chem.SchemeCircular, radius, length)] = true
		}
	}
	assert.Len(t, names, 12)
}

func TestVectorDim_ByteAligned(t *testing.T) {
	tests := []struct {
		length int
		dim    int
	}{
		{166, 168}, // keyed scheme rounds up to the byte boundary
		{512, 512},
		{1024, 1024},
		{1, 8},
		{8, 8},
		{2047, 2048},
	}
	for _, tt := range tests {
		dim := vectorDim(tt.length)
		assert.Equal(t, tt.dim, dim, "length %d", tt.length)
		assert.Zero(t, dim%8, "Milvus requires byte-aligned binary dims")
		assert.GreaterOrEqual(t, dim, tt.length)
	}
}

func TestVectorDim_MatchesPackedPayload(t *testing.T) {
	// The declared dimension and the packed byte payload have to agree, or
	// the server rejects every insert.
	for _, length := range []int{166, 512, 1024} {
		vec, err := fingerprint.NewBitVector(length)
		require.NoError(t, err)
		assert.Equal(t, vectorDim(length)/8, len(vec.Bytes()), "length %d", length)
	}
}

func TestConvertHits(t *testing.T) {
	results := []client.SearchResult{
		{
			ResultCount: 2,
			IDs:         entity.NewColumnVarChar(fieldID, []string{"fp-1", "fp-2"}),
			Fields: client.ResultSet{
				entity.NewColumnVarChar(fieldMolecule, []string{"ethanol", "benzene"}),
			},
			Scores: []float32{0.0, 0.75},
		},
	}

	hits := convertHits(results)
	require.Len(t, hits, 2)

	assert.Equal(t, "fp-1", hits[0].ID)
	assert.Equal(t, "ethanol", hits[0].Molecule)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)

	assert.Equal(t, "fp-2", hits[1].ID)
	assert.Equal(t, "benzene", hits[1].Molecule)
	assert.InDelta(t, 0.25, hits[1].Similarity, 1e-9)
}

func TestConvertHits_MissingMoleculeColumn(t *testing.T) {
	results := []client.SearchResult{
		{
			ResultCount: 1,
			IDs:         entity.NewColumnVarChar(fieldID, []string{"fp-9"}),
			Fields:      client.ResultSet{},
			Scores:      []float32{0.4},
		},
	}

	hits := convertHits(results)
	require.Len(t, hits, 1)
	assert.Equal(t, "fp-9", hits[0].ID)
	assert.Empty(t, hits[0].Molecule)
	assert.InDelta(t, 0.6, hits[0].Similarity, 1e-9)
}

func TestConvertHits_ClampsNegativeSimilarity(t *testing.T) {
	results := []client.SearchResult{
		{
			ResultCount: 1,
			IDs:         entity.NewColumnVarChar(fieldID, []string{"fp-3"}),
			Fields:      client.ResultSet{},
			Scores:      []float32{1.0001},
		},
	}

	hits := convertHits(results)
	require.Len(t, hits, 1)
	assert.Equal(t, 0.0, hits[0].Similarity)
}

func TestConvertHits_Empty(t *testing.T) {
	assert.Empty(t, convertHits(nil))
	assert.Empty(t, convertHits([]client.SearchResult{{ResultCount: 0}}))
}
