// Package graph provides the immutable molecular graph model consumed by the
// fingerprint engines.  A Graph is constructed once from a wire-form
// chem.GraphSpec, validated against structural and (optionally) valence
// invariants, and is read-only thereafter; graph editing is an external
// collaborator's concern.
//
// Traversal helpers are cycle-safe: molecules routinely contain fused ring
// systems, so every walk tracks a visited set and nothing assumes a tree.
package graph

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/turtacn/ChemFP-Engine/pkg/errors"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// ValencePolicy controls how strictly construction checks declared valence
// against bond orders plus implicit hydrogens.
type ValencePolicy int

const (
	// ValenceLenient skips the valence check entirely.  Connectivity
	// invariants (bond ranges, self-bonds, duplicates) are still enforced.
	ValenceLenient ValencePolicy = iota

	// ValenceStrict rejects atoms whose bond-order sum plus implicit
	// hydrogens exceeds the element's maximum common valence (adjusted by
	// formal charge).  Elements outside the valence table are exempt.
	ValenceStrict
)

// Atom is one node of a molecular graph.  Index is the atom's stable
// identifier within its graph.  Immutable after construction.
type Atom struct {
	Index             int
	AtomicNumber      int
	Charge            int
	Aromatic          bool
	ImplicitHydrogens int

	// InRing is true when the atom lies on at least one cycle.  Computed by
	// ring perception during construction.
	InRing bool
}

// Bond is one edge of a molecular graph, connecting atoms A and B (A < B
// after normalisation).  Immutable after construction.
type Bond struct {
	A     int
	B     int
	Order chem.BondOrder

	// InRing is true when the bond lies on a cycle: removing it leaves its
	// endpoints connected.
	InRing bool
}

// Other returns the bond endpoint that is not atom.
func (b Bond) Other(atom int) int {
	if b.A == atom {
		return b.B
	}
	return b.A
}

// Neighbor pairs an adjacent atom index with the connecting bond.
type Neighbor struct {
	Atom int
	Bond *Bond
}

// Graph is an immutable molecular graph: an ordered atom sequence, a bond
// set, and a prebuilt adjacency list giving O(1) amortized neighbor lookup.
type Graph struct {
	name  string
	atoms []Atom
	bonds []Bond
	adj   [][]Neighbor
}

// Option configures graph construction.
type Option func(*buildOptions)

type buildOptions struct {
	valence ValencePolicy
}

// WithValencePolicy selects the valence strictness applied at construction.
// The default is ValenceStrict.
func WithValencePolicy(p ValencePolicy) Option {
	return func(o *buildOptions) { o.valence = p }
}

// New constructs a Graph from its wire form.  It fails with a malformed-graph
// error (see errors.IsMalformedGraph) when a bond references an out-of-range
// atom, both endpoints are the same atom, two bonds connect the same atom
// pair, or — under ValenceStrict — an atom's bonding exceeds its element's
// valence.  Ring membership for atoms and bonds is perceived here so the
// engines never re-derive it.
func New(spec chem.GraphSpec, opts ...Option) (*Graph, error) {
	o := buildOptions{valence: ValenceStrict}
	for _, opt := range opts {
		opt(&o)
	}

	if len(spec.Atoms) == 0 {
		return nil, errors.New(errors.CodeGraphEmpty, "graph has no atoms")
	}

	g := &Graph{
		name:  spec.Name,
		atoms: make([]Atom, len(spec.Atoms)),
		bonds: make([]Bond, 0, len(spec.Bonds)),
		adj:   make([][]Neighbor, len(spec.Atoms)),
	}

	for i, a := range spec.Atoms {
		z := a.AtomicNumber
		if a.Element != "" {
			resolved, err := ResolveElement(a.Element)
			if err != nil {
				return nil, err
			}
			z = resolved
		}
		if z <= 0 {
			return nil, errors.Newf(errors.CodeGraphUnknownElement,
				"atom %d has neither element symbol nor atomic number", i)
		}
		if a.ImplicitHydrogens < 0 {
			return nil, errors.Newf(errors.CodeGraphMalformed,
				"atom %d declares negative implicit hydrogen count", i)
		}
		g.atoms[i] = Atom{
			Index:             i,
			AtomicNumber:      z,
			Charge:            a.Charge,
			Aromatic:          a.Aromatic,
			ImplicitHydrogens: a.ImplicitHydrogens,
		}
	}

	seen := make(map[[2]int]bool, len(spec.Bonds))
	for i, b := range spec.Bonds {
		if b.A < 0 || b.A >= len(g.atoms) || b.B < 0 || b.B >= len(g.atoms) {
			return nil, errors.Newf(errors.CodeGraphBondOutOfRange,
				"bond %d references atom outside [0,%d)", i, len(g.atoms))
		}
		if b.A == b.B {
			return nil, errors.Newf(errors.CodeGraphSelfBond,
				"bond %d connects atom %d to itself", i, b.A)
		}
		if !b.Order.IsValid() {
			return nil, errors.Newf(errors.CodeGraphMalformed,
				"bond %d has unknown order %q", i, b.Order)
		}
		lo, hi := b.A, b.B
		if lo > hi {
			lo, hi = hi, lo
		}
		key := [2]int{lo, hi}
		if seen[key] {
			return nil, errors.Newf(errors.CodeGraphMalformed,
				"duplicate bond between atoms %d and %d", lo, hi)
		}
		seen[key] = true
		g.bonds = append(g.bonds, Bond{A: lo, B: hi, Order: b.Order})
	}

	for i := range g.bonds {
		bond := &g.bonds[i]
		g.adj[bond.A] = append(g.adj[bond.A], Neighbor{Atom: bond.B, Bond: bond})
		g.adj[bond.B] = append(g.adj[bond.B], Neighbor{Atom: bond.A, Bond: bond})
	}

	g.perceiveRings()

	if o.valence == ValenceStrict {
		if err := g.checkValence(); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Name returns the caller-supplied graph label (may be empty).
func (g *Graph) Name() string { return g.name }

// AtomCount returns the number of atoms.
func (g *Graph) AtomCount() int { return len(g.atoms) }

// BondCount returns the number of bonds.
func (g *Graph) BondCount() int { return len(g.bonds) }

// Atom returns the atom at index i.  Index validity is the caller's
// responsibility; indices come from this graph's own iteration.
func (g *Graph) Atom(i int) Atom { return g.atoms[i] }

// Atoms returns the atoms in insertion order.  The returned slice is shared;
// callers must not mutate it.
func (g *Graph) Atoms() []Atom { return g.atoms }

// Bonds returns the bonds in insertion order.  The returned slice is shared;
// callers must not mutate it.
func (g *Graph) Bonds() []Bond { return g.bonds }

// Neighbors returns the (neighbor atom, connecting bond) pairs of atom i in
// adjacency-insertion order.  O(1) amortized: the list is built once at
// construction.
func (g *Graph) Neighbors(i int) []Neighbor { return g.adj[i] }

// Degree returns the number of explicit bonds incident to atom i.
func (g *Graph) Degree(i int) int { return len(g.adj[i]) }

// checkValence enforces the strict valence policy: for every atom whose
// element appears in the valence table, the bond-order sum plus implicit
// hydrogens must not exceed the permitted maximum.  A positive formal charge
// raises the cap by one per unit and a negative charge lowers it, which
// covers the common organic cations and anions (ammonium, oxocarbenium,
// alkoxide) without attempting a full electron-count model.
//
// Aromatic bonds are counted as single bonds plus one shared double-bond
// contribution per aromatic atom.  That keeps both plain rings (two aromatic
// bonds per carbon) and fusion atoms (three aromatic bonds) at valence 4
// instead of naively summing 1.5 per bond, which would reject every fused
// ring system.
func (g *Graph) checkValence() error {
	for i := range g.atoms {
		a := &g.atoms[i]
		max, ok := maxValence[a.AtomicNumber]
		if !ok {
			continue
		}
		allowed := max + a.Charge
		if allowed < 0 {
			allowed = 0
		}
		valence := a.ImplicitHydrogens
		aromatic := 0
		for _, n := range g.adj[i] {
			switch n.Bond.Order {
			case chem.BondSingle:
				valence++
			case chem.BondDouble:
				valence += 2
			case chem.BondTriple:
				valence += 3
			case chem.BondAromatic:
				valence++
				aromatic++
			}
		}
		if aromatic > 0 {
			valence++
		}
		if valence > allowed {
			return errors.Newf(errors.CodeGraphValence,
				"atom %d (%s) bonds to valence %d, max %d",
				i, ElementSymbol(a.AtomicNumber), valence, allowed)
		}
	}
	return nil
}

// Digest returns a hex SHA-256 digest of the graph's declaration-order
// serialization.  It is a cache key, not a canonical form: two declaration
// orders of the same molecule hash differently and simply miss the cache.
func (g *Graph) Digest() string {
	h := sha256.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.BigEndian.PutUint64(buf[:], uint64(int64(v)))
		h.Write(buf[:])
	}
	writeInt(len(g.atoms))
	for i := range g.atoms {
		a := &g.atoms[i]
		writeInt(a.AtomicNumber)
		writeInt(a.Charge)
		writeInt(a.ImplicitHydrogens)
		if a.Aromatic {
			writeInt(1)
		} else {
			writeInt(0)
		}
	}
	writeInt(len(g.bonds))
	for i := range g.bonds {
		b := &g.bonds[i]
		writeInt(b.A)
		writeInt(b.B)
		h.Write([]byte(b.Order))
	}
	return hex.EncodeToString(h.Sum(nil))
}
