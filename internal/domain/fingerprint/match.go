package fingerprint

import (
	"github.com/turtacn/ChemFP-Engine/internal/domain/graph"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// The keyed engine's substructure predicates are expressed as small fragment
// patterns matched by backtracking subgraph search.  Patterns are connected
// and tiny (at most six atoms), so a plain injective-mapping backtrack is
// both simple and fast; no VF2-style pruning is warranted at this size.

// triState expresses a pattern constraint that may be indifferent.
type triState uint8

const (
	anyValue triState = iota
	mustBeTrue
	mustBeFalse
)

func (t triState) accepts(v bool) bool {
	switch t {
	case mustBeTrue:
		return v
	case mustBeFalse:
		return !v
	default:
		return true
	}
}

// atomPattern constrains one fragment atom.  Zero values are indifferent:
// z == 0 matches any element, minHydrogens == 0 imposes nothing.
type atomPattern struct {
	z            int
	aromatic     triState
	inRing       triState
	minHydrogens int
}

func (p atomPattern) accepts(a graph.Atom) bool {
	if p.z != 0 && a.AtomicNumber != p.z {
		return false
	}
	if !p.aromatic.accepts(a.Aromatic) {
		return false
	}
	if !p.inRing.accepts(a.InRing) {
		return false
	}
	return a.ImplicitHydrogens >= p.minHydrogens
}

// bondPattern constrains the bond between fragment atoms a and b.  An empty
// order matches any bond order.
type bondPattern struct {
	a, b  int
	order chem.BondOrder
}

func (p bondPattern) accepts(b *graph.Bond) bool {
	return p.order == "" || p.order == b.Order
}

// fragmentPattern is a connected fragment: atom constraints plus the bonds
// between them.  Fragment atom 0 is the anchor the search starts from.
type fragmentPattern struct {
	atoms []atomPattern
	bonds []bondPattern
}

// matches reports whether the fragment occurs anywhere in g as a subgraph,
// under an injective atom mapping.  Extra bonds in g beyond the pattern's are
// allowed: this is substructure matching, not exact-graph isomorphism.
func (p fragmentPattern) matches(g *graph.Graph) bool {
	if len(p.atoms) == 0 {
		return false
	}
	mapping := make([]int, len(p.atoms))
	used := make([]bool, g.AtomCount())

	for start := 0; start < g.AtomCount(); start++ {
		if !p.atoms[0].accepts(g.Atom(start)) {
			continue
		}
		mapping[0] = start
		used[start] = true
		if p.assign(g, 1, mapping, used) {
			return true
		}
		used[start] = false
	}
	return false
}

// assign extends the partial mapping to fragment atom i, backtracking on
// failure.  Candidates are drawn from the graph neighbors of an
// already-mapped fragment neighbor, which keeps the search anchored to the
// connected pattern instead of scanning all atoms per level.
func (p fragmentPattern) assign(g *graph.Graph, i int, mapping []int, used []bool) bool {
	if i == len(p.atoms) {
		return true
	}

	anchorFrag, anchorBond := -1, bondPattern{}
	for _, fb := range p.bonds {
		if fb.a == i && fb.b < i {
			anchorFrag, anchorBond = fb.b, fb
			break
		}
		if fb.b == i && fb.a < i {
			anchorFrag, anchorBond = fb.a, fb
			break
		}
	}
	if anchorFrag < 0 {
		// Patterns are declared connected with atoms in discovery order, so
		// every atom past the first has an earlier-numbered bond partner.
		return false
	}

	for _, nb := range g.Neighbors(mapping[anchorFrag]) {
		if used[nb.Atom] || !anchorBond.accepts(nb.Bond) || !p.atoms[i].accepts(g.Atom(nb.Atom)) {
			continue
		}
		if !p.bondsConsistent(g, i, nb.Atom, mapping) {
			continue
		}
		mapping[i] = nb.Atom
		used[nb.Atom] = true
		if p.assign(g, i+1, mapping, used) {
			return true
		}
		used[nb.Atom] = false
	}
	return false
}

// bondsConsistent verifies every pattern bond between fragment atom i and the
// already-mapped atoms, including ring-closure bonds beyond the anchor.
func (p fragmentPattern) bondsConsistent(g *graph.Graph, i, candidate int, mapping []int) bool {
	for _, fb := range p.bonds {
		var other int
		switch {
		case fb.a == i && fb.b < i:
			other = fb.b
		case fb.b == i && fb.a < i:
			other = fb.a
		default:
			continue
		}
		found := false
		for _, nb := range g.Neighbors(candidate) {
			if nb.Atom == mapping[other] && fb.accepts(nb.Bond) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
