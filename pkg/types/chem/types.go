// Package chem defines the chemistry-domain Data Transfer Objects and
// enumerations shared across every layer of ChemFP-Engine.  No domain logic
// lives here — only plain data types that are safe to import from any layer
// without creating circular dependencies.
package chem

import "fmt"

// FingerprintScheme identifies the algorithm family that produced a
// fingerprint.  Two fingerprints are comparable only when their schemes (and
// lengths) match; mixing a circular and a keyed fingerprint is always an
// error at comparison time.
type FingerprintScheme string

const (
	// SchemeCircular is the iterative circular-neighborhood (Morgan / ECFP
	// style) hashed fingerprint.
	SchemeCircular FingerprintScheme = "circular"

	// SchemeKeyed is the fixed-key substructure fingerprint (MACCS style):
	// bit i corresponds to predicate i of a closed, versioned key set.
	SchemeKeyed FingerprintScheme = "keyed"
)

// IsValid reports whether the scheme is a known value.
func (s FingerprintScheme) IsValid() bool {
	switch s {
	case SchemeCircular, SchemeKeyed:
		return true
	default:
		return false
	}
}

// String returns the string form of the scheme.
func (s FingerprintScheme) String() string { return string(s) }

// ParseFingerprintScheme parses a string into a FingerprintScheme.
func ParseFingerprintScheme(v string) (FingerprintScheme, error) {
	s := FingerprintScheme(v)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown fingerprint scheme %q", v)
	}
	return s, nil
}

// BondOrder enumerates the bond orders recognised by the graph model.
type BondOrder string

const (
	BondSingle   BondOrder = "single"
	BondDouble   BondOrder = "double"
	BondTriple   BondOrder = "triple"
	BondAromatic BondOrder = "aromatic"
)

// IsValid reports whether the bond order is a known value.
func (o BondOrder) IsValid() bool {
	switch o {
	case BondSingle, BondDouble, BondTriple, BondAromatic:
		return true
	default:
		return false
	}
}

// String returns the string form of the bond order.
func (o BondOrder) String() string { return string(o) }

// AtomSpec is the wire form of one atom in a molecular graph.  Atom identity
// is positional: the i-th AtomSpec in a GraphSpec becomes atom index i.
type AtomSpec struct {
	// Element is the periodic-table symbol ("C", "N", "Cl", ...).  Exactly one
	// of Element and AtomicNumber must be set; Element wins when both are.
	Element string `json:"element,omitempty"`

	// AtomicNumber is the proton count, accepted as an alternative to Element.
	AtomicNumber int `json:"atomic_number,omitempty"`

	// Charge is the formal charge (0 for neutral atoms).
	Charge int `json:"charge,omitempty"`

	// Aromatic marks the atom as part of an aromatic system.
	Aromatic bool `json:"aromatic,omitempty"`

	// ImplicitHydrogens is the count of hydrogens not written as explicit atoms.
	ImplicitHydrogens int `json:"implicit_hydrogens,omitempty"`
}

// BondSpec is the wire form of one bond.  A and B are indices into the
// GraphSpec's atom list.
type BondSpec struct {
	A     int       `json:"a"`
	B     int       `json:"b"`
	Order BondOrder `json:"order"`
}

// GraphSpec is the wire form of a complete molecular graph, consumed by the
// HTTP API and the CLI.  Notation parsing (SMILES, InChI) is an external
// collaborator's concern; callers submit already-parsed connectivity.
type GraphSpec struct {
	// Name is an optional caller-supplied label used in logs and records.
	Name string `json:"name,omitempty"`

	Atoms []AtomSpec `json:"atoms"`
	Bonds []BondSpec `json:"bonds"`
}

// FingerprintDTO is the transport form of a computed fingerprint: the packed
// bit payload plus everything a reader needs to reject a mismatched
// comparison without recomputing.
type FingerprintDTO struct {
	ID        string            `json:"id"`
	Molecule  string            `json:"molecule,omitempty"`
	Scheme    FingerprintScheme `json:"scheme"`
	Radius    int               `json:"radius,omitempty"`
	Length    int               `json:"length"`
	KeySet    string            `json:"key_set,omitempty"`
	NumOnBits int               `json:"num_on_bits"`

	// Bits is the packed big-endian bit payload, base64-encoded in JSON.
	Bits []byte `json:"bits"`
}
