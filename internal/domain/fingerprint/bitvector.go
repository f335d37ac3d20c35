// Package fingerprint implements the fingerprinting core of ChemFP-Engine:
// the fixed-length BitVector with its folding codec, the circular (Morgan
// style) and keyed (MACCS style) encoders, and similarity scoring between
// compatible fingerprints.
//
// All operations are pure functions over an immutable graph.Graph; nothing in
// this package holds shared mutable state, so fingerprinting a batch of
// graphs is safe to run concurrently without synchronisation.
package fingerprint

import (
	"math/bits"

	"github.com/turtacn/ChemFP-Engine/pkg/errors"
)

// BitVector is a fixed-length bit set backed by a packed byte slice.  Bit
// order within each byte is big-endian: bit 0 is the most significant bit of
// byte 0.  The packed form is the stable serialization consumed by external
// collaborators, so the bit order is part of the public contract.
type BitVector struct {
	length int
	data   []byte
}

// NewBitVector allocates an all-zero vector of the given length.
func NewBitVector(length int) (*BitVector, error) {
	if length <= 0 {
		return nil, errors.Newf(errors.CodeFingerprintParams, "bit vector length must be positive, got %d", length)
	}
	return &BitVector{
		length: length,
		data:   make([]byte, (length+7)/8),
	}, nil
}

// BitVectorFromBytes reconstructs a vector from its packed serialization.
// Trailing padding bits in the final byte must be zero.
func BitVectorFromBytes(data []byte, length int) (*BitVector, error) {
	if length <= 0 {
		return nil, errors.Newf(errors.CodeFingerprintParams, "bit vector length must be positive, got %d", length)
	}
	want := (length + 7) / 8
	if len(data) != want {
		return nil, errors.Newf(errors.CodeFingerprintEncoding,
			"packed payload is %d bytes, want %d for length %d", len(data), want, length)
	}
	if pad := uint(want*8 - length); pad > 0 {
		if data[want-1]&byte((1<<pad)-1) != 0 {
			return nil, errors.New(errors.CodeFingerprintEncoding, "nonzero padding bits in final byte")
		}
	}
	v := &BitVector{length: length, data: make([]byte, want)}
	copy(v.data, data)
	return v, nil
}

// Len returns the configured bit length.
func (v *BitVector) Len() int { return v.length }

// Get reports whether bit i is set.  Out-of-range indices read as false.
func (v *BitVector) Get(i int) bool {
	if i < 0 || i >= v.length {
		return false
	}
	return v.data[i/8]&(0x80>>uint(i%8)) != 0
}

// Set sets bit i.  Out-of-range indices are ignored.
func (v *BitVector) Set(i int) {
	if i < 0 || i >= v.length {
		return
	}
	v.data[i/8] |= 0x80 >> uint(i%8)
}

// Or merges other into v with a logical OR.  Lengths must match.
func (v *BitVector) Or(other *BitVector) error {
	if other == nil || other.length != v.length {
		return errors.IncompatibleFingerprint("OR-merge requires equal vector lengths")
	}
	for i := range v.data {
		v.data[i] |= other.data[i]
	}
	return nil
}

// PopCount returns the number of set bits.
func (v *BitVector) PopCount() int {
	n := 0
	for _, b := range v.data {
		n += bits.OnesCount8(b)
	}
	return n
}

// Equal reports whether v and other have identical length and content.
func (v *BitVector) Equal(other *BitVector) bool {
	if other == nil || v.length != other.length {
		return false
	}
	for i := range v.data {
		if v.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// Bytes returns a copy of the packed serialization.
func (v *BitVector) Bytes() []byte {
	out := make([]byte, len(v.data))
	copy(out, v.data)
	return out
}

// Clone returns a deep copy.
func (v *BitVector) Clone() *BitVector {
	return &BitVector{length: v.length, data: v.Bytes()}
}

// onBitsAndOr returns the popcount of the bitwise AND of a and b, and the
// popcount of the OR, in one pass.  Callers guarantee equal lengths.
func onBitsAndOr(a, b *BitVector) (and, or int) {
	for i := range a.data {
		and += bits.OnesCount8(a.data[i] & b.data[i])
		or += bits.OnesCount8(a.data[i] | b.data[i])
	}
	return and, or
}
