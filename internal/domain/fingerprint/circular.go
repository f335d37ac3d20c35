package fingerprint

import (
	"encoding/binary"
	"sort"

	"github.com/turtacn/ChemFP-Engine/internal/domain/graph"
	"github.com/turtacn/ChemFP-Engine/pkg/errors"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// MaxRadius bounds circular expansion.  Neighborhoods beyond radius 8 exceed
// the diameter of almost any drug-like molecule and only generate duplicate
// features.
const MaxRadius = 8

// Feature is one (atom, radius, identifier) triple produced during circular
// expansion.  Features are transient: they exist so tests and the folding
// step can see them, and are not persisted.
type Feature struct {
	Atom       int
	Radius     int
	Identifier uint64
}

// bondOrderCode gives each bond order a stable small code used inside
// identifier tuples.  The codes are part of the reproducibility contract.
func bondOrderCode(o chem.BondOrder) uint8 {
	switch o {
	case chem.BondSingle:
		return 1
	case chem.BondDouble:
		return 2
	case chem.BondTriple:
		return 3
	case chem.BondAromatic:
		return 4
	default:
		return 0
	}
}

// atomInvariant computes the radius-0 identifier of an atom: a hash of its
// atomic number, formal charge, heavy-atom degree, implicit hydrogen count,
// ring flag, and aromatic flag.  Declaration order contributes nothing, which
// seeds the whole expansion with order-independence.
func atomInvariant(g *graph.Graph, idx int) uint64 {
	a := g.Atom(idx)
	buf := make([]byte, 0, 26)
	var tmp [4]byte

	writeInt := func(v int) {
		binary.BigEndian.PutUint32(tmp[:], uint32(int32(v)))
		buf = append(buf, tmp[:]...)
	}
	writeInt(a.AtomicNumber)
	writeInt(a.Charge)
	writeInt(g.Degree(idx))
	writeInt(a.ImplicitHydrogens)
	flags := byte(0)
	if a.InRing {
		flags |= 1
	}
	if a.Aromatic {
		flags |= 2
	}
	buf = append(buf, flags)
	return hashTuple(buf)
}

// neighborTerm is one (bond order code, neighbor identifier) contribution to
// an iteration update.
type neighborTerm struct {
	bond uint8
	id   uint64
}

// CircularFeatures runs the iterative circular expansion and returns every
// distinct feature at radii 0..radius.  Distinctness is tracked per
// (atom, identifier) pair: fused-ring expansion revisits the same
// neighborhood through different paths, and re-emitting it would only inflate
// the feature list without changing the folded vector.
//
// The iteration update for atom a at radius r hashes the tuple
// (r, id[a]@r-1, sorted multiset of (bond code, id[neighbor]@r-1)).  Sorting
// the neighbor terms is what makes the identifier invariant to the arbitrary
// order atoms and bonds were declared in.
func CircularFeatures(g *graph.Graph, radius int) ([]Feature, error) {
	if g == nil {
		return nil, errors.MalformedGraph("nil graph")
	}
	if radius < 0 || radius > MaxRadius {
		return nil, errors.Newf(errors.CodeFingerprintParams,
			"radius must be in [0,%d], got %d", MaxRadius, radius)
	}

	n := g.AtomCount()
	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		ids[i] = atomInvariant(g, i)
	}

	type atomID struct {
		atom int
		id   uint64
	}
	seen := make(map[atomID]bool, n*(radius+1))
	features := make([]Feature, 0, n*(radius+1))
	emit := func(atom, r int, id uint64) {
		key := atomID{atom: atom, id: id}
		if seen[key] {
			return
		}
		seen[key] = true
		features = append(features, Feature{Atom: atom, Radius: r, Identifier: id})
	}

	for i := 0; i < n; i++ {
		emit(i, 0, ids[i])
	}

	next := make([]uint64, n)
	terms := make([]neighborTerm, 0, 8)
	for r := 1; r <= radius; r++ {
		for i := 0; i < n; i++ {
			neighbors := g.Neighbors(i)
			if len(neighbors) == 0 {
				// Isolated atoms gain no new context; their identifier is
				// stable at every radius.
				next[i] = ids[i]
				continue
			}
			terms = terms[:0]
			for _, nb := range neighbors {
				terms = append(terms, neighborTerm{
					bond: bondOrderCode(nb.Bond.Order),
					id:   ids[nb.Atom],
				})
			}
			sort.Slice(terms, func(a, b int) bool {
				if terms[a].bond != terms[b].bond {
					return terms[a].bond < terms[b].bond
				}
				return terms[a].id < terms[b].id
			})

			buf := make([]byte, 0, 12+9*len(terms))
			var tmp [8]byte
			binary.BigEndian.PutUint32(tmp[:4], uint32(r))
			buf = append(buf, tmp[:4]...)
			binary.BigEndian.PutUint64(tmp[:], ids[i])
			buf = append(buf, tmp[:]...)
			for _, t := range terms {
				buf = append(buf, t.bond)
				binary.BigEndian.PutUint64(tmp[:], t.id)
				buf = append(buf, tmp[:]...)
			}
			next[i] = hashTuple(buf)
		}
		ids, next = next, ids
		for i := 0; i < n; i++ {
			emit(i, r, ids[i])
		}
	}

	return features, nil
}

// ComputeCircular produces a circular fingerprint record for g: every
// distinct feature of CircularFeatures folded into a fresh vector of the
// given length.  Folding is lossy by design; callers pick the length
// explicitly and accept the collision rate that comes with it.
func ComputeCircular(g *graph.Graph, radius, length int) (*Record, error) {
	features, err := CircularFeatures(g, radius)
	if err != nil {
		return nil, err
	}
	vec, err := NewBitVector(length)
	if err != nil {
		return nil, err
	}
	for _, f := range features {
		vec.Set(foldIndex(f.Identifier, length))
	}
	return newRecord(g, chem.SchemeCircular, radius, "", vec), nil
}
