package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemFP-Engine/pkg/errors"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

func TestRecord_MarshalRoundTrip(t *testing.T) {
	circ := circularRecord(t, aceticAcidSpec(), 3, 1024)
	keyed, err := ComputeKeyed(mustGraph(t, aceticAcidSpec()))
	require.NoError(t, err)

	for _, rec := range []*Record{circ, keyed} {
		data, err := rec.MarshalBinary()
		require.NoError(t, err)

		got, err := UnmarshalRecord(data)
		require.NoError(t, err)
		assert.Equal(t, rec.Scheme, got.Scheme)
		assert.Equal(t, rec.Radius, got.Radius)
		assert.Equal(t, rec.KeySet, got.KeySet)
		assert.True(t, rec.Vector.Equal(got.Vector))
		// Identity and label are per computation, never carried on the wire;
		// readers relabel from their own graph.
		assert.NotEqual(t, rec.ID, got.ID)
		assert.Empty(t, got.Molecule)
	}
}

func TestRecord_MarshalHeader(t *testing.T) {
	rec := circularRecord(t, ethaneSpec(), 2, 256)

	data, err := rec.MarshalBinary()
	require.NoError(t, err)

	require.Len(t, data, 12+256/8)
	assert.Equal(t, "CFP1", string(data[0:4]))
	assert.Equal(t, byte(schemeByteCircular), data[4])
	assert.Equal(t, byte(2), data[5])
	assert.Equal(t, byte(0), data[6])
	assert.Equal(t, []byte{0, 0, 1, 0}, data[8:12])
}

func TestUnmarshalRecord_Invalid(t *testing.T) {
	valid, err := circularRecord(t, ethaneSpec(), 1, 64).MarshalBinary()
	require.NoError(t, err)

	corrupt := func(offset int, b byte) []byte {
		data := append([]byte(nil), valid...)
		data[offset] = b
		return data
	}

	tests := []struct {
		name string
		data []byte
		code errors.ErrorCode
	}{
		{"truncated header", valid[:8], errors.CodeFingerprintEncoding},
		{"bad magic", corrupt(0, 'X'), errors.CodeFingerprintEncoding},
		{"unknown scheme byte", corrupt(4, 9), errors.CodeFingerprintScheme},
		{"keyed with unknown key-set version", corrupt(4, schemeByteKeyed), errors.CodeFingerprintEncoding},
		{"payload shorter than length", valid[:len(valid)-1], errors.CodeFingerprintEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalRecord(tt.data)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestRecord_MarshalInvalid(t *testing.T) {
	_, err := (&Record{Scheme: chem.SchemeCircular}).MarshalBinary()
	assert.True(t, errors.IsCode(err, errors.CodeFingerprintEncoding))

	rec := circularRecord(t, ethaneSpec(), 1, 64)
	rec.Scheme = chem.FingerprintScheme("spectral")
	_, err = rec.MarshalBinary()
	assert.True(t, errors.IsCode(err, errors.CodeFingerprintScheme))
}

func TestRecord_DTORoundTrip(t *testing.T) {
	rec, err := ComputeKeyed(mustGraph(t, benzeneSpec()))
	require.NoError(t, err)

	dto := rec.ToDTO()
	assert.Equal(t, rec.ID, dto.ID)
	assert.Equal(t, "benzene", dto.Molecule)
	assert.Equal(t, KeyedLength, dto.Length)
	assert.Equal(t, rec.Vector.PopCount(), dto.NumOnBits)

	got, err := RecordFromDTO(dto)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.KeySet, got.KeySet)
	assert.True(t, rec.Vector.Equal(got.Vector))
}

func TestRecordFromDTO_Invalid(t *testing.T) {
	_, err := RecordFromDTO(chem.FingerprintDTO{Scheme: "spectral", Length: 64, Bits: make([]byte, 8)})
	assert.True(t, errors.IsCode(err, errors.CodeFingerprintScheme))

	_, err = RecordFromDTO(chem.FingerprintDTO{Scheme: chem.SchemeCircular, Length: 64, Bits: make([]byte, 4)})
	assert.Error(t, err)
}
