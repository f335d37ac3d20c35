package fingerprint

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/turtacn/ChemFP-Engine/internal/domain/graph"
	"github.com/turtacn/ChemFP-Engine/pkg/errors"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// Record pairs a computed fingerprint with the scheme and parameters that
// produced it.  A Record is created by an engine call and immutable
// thereafter; the scorer and the persistence collaborators only read it.
type Record struct {
	// ID is a fresh UUID assigned at computation time.
	ID string

	// Molecule is the caller-supplied graph label (may be empty).
	Molecule string

	// Scheme identifies the producing algorithm family.
	Scheme chem.FingerprintScheme

	// Radius is the circular expansion radius.  Zero for keyed fingerprints.
	Radius int

	// KeySet is the keyed predicate-set version ("cfp-keys/1").  Empty for
	// circular fingerprints.
	KeySet string

	// Vector holds the folded bits.
	Vector *BitVector
}

func newRecord(g *graph.Graph, scheme chem.FingerprintScheme, radius int, keySet string, vec *BitVector) *Record {
	name := ""
	if g != nil {
		name = g.Name()
	}
	return &Record{
		ID:       uuid.NewString(),
		Molecule: name,
		Scheme:   scheme,
		Radius:   radius,
		KeySet:   keySet,
		Vector:   vec,
	}
}

// Binary layout of a serialized record:
//
//	offset size  field
//	0      4     magic "CFP1"
//	4      1     scheme (1 = circular, 2 = keyed)
//	5      1     radius (0 for keyed)
//	6      1     key-set version number (0 for circular)
//	7      1     reserved, must be 0
//	8      4     vector length in bits, big-endian
//	12     …     packed bits, big-endian bit order (§BitVector)
//
// The header lets a reader reject a mismatched comparison without
// recomputing anything.
const (
	recordMagic      = "CFP1"
	recordHeaderSize = 12

	schemeByteCircular = 1
	schemeByteKeyed    = 2
)

// keySetVersionByte maps the key-set version string to its wire byte.  Only
// version 1 exists today; the byte is the forward-compatibility hook.
func keySetVersionByte(keySet string) byte {
	if keySet == KeySetVersion {
		return 1
	}
	return 0
}

// MarshalBinary serializes the record header and packed bits.
func (r *Record) MarshalBinary() ([]byte, error) {
	if r.Vector == nil {
		return nil, errors.New(errors.CodeFingerprintEncoding, "record has no vector")
	}
	bits := r.Vector.Bytes()
	out := make([]byte, recordHeaderSize, recordHeaderSize+len(bits))
	copy(out[0:4], recordMagic)
	switch r.Scheme {
	case chem.SchemeCircular:
		out[4] = schemeByteCircular
	case chem.SchemeKeyed:
		out[4] = schemeByteKeyed
	default:
		return nil, errors.Newf(errors.CodeFingerprintScheme, "cannot serialize scheme %q", r.Scheme)
	}
	if r.Radius < 0 || r.Radius > 255 {
		return nil, errors.Newf(errors.CodeFingerprintEncoding, "radius %d does not fit header", r.Radius)
	}
	out[5] = byte(r.Radius)
	out[6] = keySetVersionByte(r.KeySet)
	binary.BigEndian.PutUint32(out[8:12], uint32(r.Vector.Len()))
	return append(out, bits...), nil
}

// UnmarshalRecord reconstructs a record from its serialized form.  The
// returned record carries a fresh ID; identity is not part of the wire form.
func UnmarshalRecord(data []byte) (*Record, error) {
	if len(data) < recordHeaderSize {
		return nil, errors.New(errors.CodeFingerprintEncoding, "record shorter than header")
	}
	if string(data[0:4]) != recordMagic {
		return nil, errors.New(errors.CodeFingerprintEncoding, "bad record magic")
	}
	var scheme chem.FingerprintScheme
	keySet := ""
	switch data[4] {
	case schemeByteCircular:
		scheme = chem.SchemeCircular
	case schemeByteKeyed:
		scheme = chem.SchemeKeyed
		if data[6] != 1 {
			return nil, errors.Newf(errors.CodeFingerprintEncoding, "unknown key-set version %d", data[6])
		}
		keySet = KeySetVersion
	default:
		return nil, errors.Newf(errors.CodeFingerprintScheme, "unknown scheme byte %d", data[4])
	}
	length := int(binary.BigEndian.Uint32(data[8:12]))
	vec, err := BitVectorFromBytes(data[recordHeaderSize:], length)
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:     uuid.NewString(),
		Scheme: scheme,
		Radius: int(data[5]),
		KeySet: keySet,
		Vector: vec,
	}, nil
}

// ToDTO converts the record to its transport form.
func (r *Record) ToDTO() chem.FingerprintDTO {
	return chem.FingerprintDTO{
		ID:        r.ID,
		Molecule:  r.Molecule,
		Scheme:    r.Scheme,
		Radius:    r.Radius,
		Length:    r.Vector.Len(),
		KeySet:    r.KeySet,
		NumOnBits: r.Vector.PopCount(),
		Bits:      r.Vector.Bytes(),
	}
}

// RecordFromDTO reconstructs a record from its transport form, validating
// scheme and payload shape.
func RecordFromDTO(dto chem.FingerprintDTO) (*Record, error) {
	if !dto.Scheme.IsValid() {
		return nil, errors.Newf(errors.CodeFingerprintScheme, "unknown scheme %q", dto.Scheme)
	}
	vec, err := BitVectorFromBytes(dto.Bits, dto.Length)
	if err != nil {
		return nil, err
	}
	id := dto.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Record{
		ID:       id,
		Molecule: dto.Molecule,
		Scheme:   dto.Scheme,
		Radius:   dto.Radius,
		KeySet:   dto.KeySet,
		Vector:   vec,
	}, nil
}
