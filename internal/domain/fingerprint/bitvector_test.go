package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemFP-Engine/pkg/errors"
)

func TestNewBitVector(t *testing.T) {
	v, err := NewBitVector(166)
	require.NoError(t, err)
	assert.Equal(t, 166, v.Len())
	assert.Equal(t, 0, v.PopCount())
	assert.Len(t, v.Bytes(), 21)

	_, err = NewBitVector(0)
	assert.Error(t, err)
	_, err = NewBitVector(-8)
	assert.Error(t, err)
}

func TestBitVector_GetSet(t *testing.T) {
	v, err := NewBitVector(16)
	require.NoError(t, err)

	v.Set(0)
	v.Set(7)
	v.Set(15)
	assert.True(t, v.Get(0))
	assert.True(t, v.Get(7))
	assert.True(t, v.Get(15))
	assert.False(t, v.Get(1))
	assert.Equal(t, 3, v.PopCount())

	// Bit 0 is the MSB of byte 0; bit 15 the LSB of byte 1.
	assert.Equal(t, []byte{0x81, 0x01}, v.Bytes())

	// Out-of-range access is a no-op / false.
	v.Set(16)
	v.Set(-1)
	assert.False(t, v.Get(16))
	assert.False(t, v.Get(-1))
	assert.Equal(t, 3, v.PopCount())
}

func TestBitVector_Or(t *testing.T) {
	a, _ := NewBitVector(8)
	b, _ := NewBitVector(8)
	a.Set(0)
	b.Set(3)

	require.NoError(t, a.Or(b))
	assert.True(t, a.Get(0))
	assert.True(t, a.Get(3))

	c, _ := NewBitVector(16)
	err := a.Or(c)
	require.Error(t, err)
	assert.True(t, errors.IsIncompatibleFingerprint(err))
	assert.Error(t, a.Or(nil))
}

func TestBitVector_Equal(t *testing.T) {
	a, _ := NewBitVector(32)
	b, _ := NewBitVector(32)
	assert.True(t, a.Equal(b))

	a.Set(9)
	assert.False(t, a.Equal(b))
	b.Set(9)
	assert.True(t, a.Equal(b))

	c, _ := NewBitVector(33)
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestBitVectorFromBytes_RoundTrip(t *testing.T) {
	v, _ := NewBitVector(20)
	v.Set(0)
	v.Set(13)
	v.Set(19)

	got, err := BitVectorFromBytes(v.Bytes(), 20)
	require.NoError(t, err)
	assert.True(t, v.Equal(got))
}

func TestBitVectorFromBytes_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		length int
	}{
		{"short_payload", []byte{0x00}, 20},
		{"long_payload", []byte{0, 0, 0, 0}, 20},
		{"bad_length", []byte{}, 0},
		{"nonzero_padding", []byte{0x00, 0x00, 0x01}, 20}, // 4 padding bits must be zero
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BitVectorFromBytes(tt.data, tt.length)
			assert.Error(t, err)
		})
	}
}

func TestBitVector_Clone(t *testing.T) {
	a, _ := NewBitVector(8)
	a.Set(2)
	b := a.Clone()
	b.Set(5)
	assert.True(t, a.Get(2))
	assert.False(t, a.Get(5))
	assert.True(t, b.Get(5))
}

func TestFoldIndex_Bounds(t *testing.T) {
	for _, length := range []int{1, 166, 1024, 2048} {
		for id := uint64(0); id < 10000; id += 97 {
			idx := foldIndex(id, length)
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, length)
		}
	}
}

func TestFoldIndex_Deterministic(t *testing.T) {
	assert.Equal(t, foldIndex(42, 1024), foldIndex(42, 1024))

	// The fold re-hashes rather than using the raw identifier modulo length;
	// identity folds for every small id would mean the re-hash is missing.
	identity := 0
	for id := uint64(0); id < 64; id++ {
		if foldIndex(id, 1024) == int(id%1024) {
			identity++
		}
	}
	assert.Less(t, identity, 64)
}
