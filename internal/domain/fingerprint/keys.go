package fingerprint

import (
	"github.com/turtacn/ChemFP-Engine/internal/domain/graph"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// KeySetVersion names the closed, versioned predicate list implemented below.
// The version string is part of the public contract: two keyed fingerprints
// are comparable only when their key-set versions match, and a bit index
// means the same predicate forever within a version.  Changing, reordering,
// or removing a predicate requires a new version.
const KeySetVersion = "cfp-keys/1"

// KeyedLength is the vector length of every cfp-keys/1 fingerprint.  The
// number follows the MACCS convention of 166 key slots; slots without an
// assigned predicate are permanently zero, like the spare MACCS bits.
const KeyedLength = 166

// Key is one slot of the keyed fingerprint: a fixed index, a stable name,
// and a predicate over a molecular graph.  Eval must be a pure function.
// A predicate that cannot be decided from a 2D connectivity graph returns
// false — absence is the documented semantics for "cannot determine", never
// an error.
type Key struct {
	Index int
	Name  string
	Eval  func(*graph.Graph) bool
}

// KeySet is the ordered closed list of keys for one version.
type KeySet struct {
	version string
	length  int
	keys    []Key
}

// Version returns the key-set version string.
func (ks *KeySet) Version() string { return ks.version }

// Length returns the fingerprint length in bits.
func (ks *KeySet) Length() int { return ks.length }

// Keys returns the assigned keys in index order.  The slice is shared; do
// not mutate.
func (ks *KeySet) Keys() []Key { return ks.keys }

// Key returns the key assigned to index i, or nil when the slot is spare.
func (ks *KeySet) Key(i int) *Key {
	for k := range ks.keys {
		if ks.keys[k].Index == i {
			return &ks.keys[k]
		}
	}
	return nil
}

// ── Scalar predicate helpers ─────────────────────────────────────────────────

func countElement(g *graph.Graph, z int) int {
	n := 0
	for _, a := range g.Atoms() {
		if a.AtomicNumber == z {
			n++
		}
	}
	return n
}

func hasElement(z int) func(*graph.Graph) bool {
	return func(g *graph.Graph) bool { return countElement(g, z) > 0 }
}

func countAromaticBonds(g *graph.Graph) int {
	n := 0
	for _, b := range g.Bonds() {
		if b.Order == chem.BondAromatic {
			n++
		}
	}
	return n
}

func countBondOrder(g *graph.Graph, o chem.BondOrder) int {
	n := 0
	for _, b := range g.Bonds() {
		if b.Order == o {
			n++
		}
	}
	return n
}

func totalImplicitHydrogens(g *graph.Graph) int {
	n := 0
	for _, a := range g.Atoms() {
		n += a.ImplicitHydrogens
	}
	return n
}

// chainSingleBondFraction is the fraction of bonds that are single and not in
// a ring — a cheap proxy for rotatable-bond richness.
func chainSingleBondFraction(g *graph.Graph) float64 {
	if g.BondCount() == 0 {
		return 0
	}
	n := 0
	for _, b := range g.Bonds() {
		if b.Order == chem.BondSingle && !b.InRing {
			n++
		}
	}
	return float64(n) / float64(g.BondCount())
}

// unevaluable is the shared predicate for keys that cannot be decided from
// this data model (isotopes, stereo, conformer geometry).  By contract these
// resolve to false rather than erroring.
func unevaluable(*graph.Graph) bool { return false }

// ── Fragment patterns used by the substructure keys ──────────────────────────

var (
	patCarbonyl = fragmentPattern{
		atoms: []atomPattern{{z: 6}, {z: 8}},
		bonds: []bondPattern{{a: 0, b: 1, order: chem.BondDouble}},
	}
	patNitrile = fragmentPattern{
		atoms: []atomPattern{{z: 6}, {z: 7}},
		bonds: []bondPattern{{a: 0, b: 1, order: chem.BondTriple}},
	}
	patHydroxyl = fragmentPattern{
		atoms: []atomPattern{{z: 8, minHydrogens: 1}, {}},
		bonds: []bondPattern{{a: 0, b: 1, order: chem.BondSingle}},
	}
	patEther = fragmentPattern{
		atoms: []atomPattern{{z: 8}, {z: 6}, {z: 6}},
		bonds: []bondPattern{
			{a: 0, b: 1, order: chem.BondSingle},
			{a: 0, b: 2, order: chem.BondSingle},
		},
	}
	patCarboxylicAcid = fragmentPattern{
		atoms: []atomPattern{{z: 6}, {z: 8}, {z: 8, minHydrogens: 1}},
		bonds: []bondPattern{
			{a: 0, b: 1, order: chem.BondDouble},
			{a: 0, b: 2, order: chem.BondSingle},
		},
	}
	patAmide = fragmentPattern{
		atoms: []atomPattern{{z: 6}, {z: 8}, {z: 7}},
		bonds: []bondPattern{
			{a: 0, b: 1, order: chem.BondDouble},
			{a: 0, b: 2, order: chem.BondSingle},
		},
	}
	patNitro = fragmentPattern{
		atoms: []atomPattern{{z: 7}, {z: 8}, {z: 8}},
		bonds: []bondPattern{
			{a: 0, b: 1, order: chem.BondDouble},
			{a: 0, b: 2},
		},
	}
	patThioether = fragmentPattern{
		atoms: []atomPattern{{z: 16}, {z: 6}, {z: 6}},
		bonds: []bondPattern{
			{a: 0, b: 1, order: chem.BondSingle},
			{a: 0, b: 2, order: chem.BondSingle},
		},
	}
	patSulfonyl = fragmentPattern{
		atoms: []atomPattern{{z: 16}, {z: 8}, {z: 8}},
		bonds: []bondPattern{
			{a: 0, b: 1, order: chem.BondDouble},
			{a: 0, b: 2, order: chem.BondDouble},
		},
	}
	patAlkeneCC = fragmentPattern{
		atoms: []atomPattern{{z: 6}, {z: 6}},
		bonds: []bondPattern{{a: 0, b: 1, order: chem.BondDouble}},
	}
	patAlkyneCC = fragmentPattern{
		atoms: []atomPattern{{z: 6}, {z: 6}},
		bonds: []bondPattern{{a: 0, b: 1, order: chem.BondTriple}},
	}
	patPhenol = fragmentPattern{
		atoms: []atomPattern{{z: 6, aromatic: mustBeTrue}, {z: 8, minHydrogens: 1}},
		bonds: []bondPattern{{a: 0, b: 1, order: chem.BondSingle}},
	}
	patAniline = fragmentPattern{
		atoms: []atomPattern{{z: 6, aromatic: mustBeTrue}, {z: 7, minHydrogens: 1}},
		bonds: []bondPattern{{a: 0, b: 1, order: chem.BondSingle}},
	}
	patBenzeneRing = fragmentPattern{
		atoms: []atomPattern{
			{z: 6, aromatic: mustBeTrue, inRing: mustBeTrue},
			{z: 6, aromatic: mustBeTrue, inRing: mustBeTrue},
			{z: 6, aromatic: mustBeTrue, inRing: mustBeTrue},
			{z: 6, aromatic: mustBeTrue, inRing: mustBeTrue},
			{z: 6, aromatic: mustBeTrue, inRing: mustBeTrue},
			{z: 6, aromatic: mustBeTrue, inRing: mustBeTrue},
		},
		bonds: []bondPattern{
			{a: 0, b: 1, order: chem.BondAromatic},
			{a: 1, b: 2, order: chem.BondAromatic},
			{a: 2, b: 3, order: chem.BondAromatic},
			{a: 3, b: 4, order: chem.BondAromatic},
			{a: 4, b: 5, order: chem.BondAromatic},
			{a: 5, b: 0, order: chem.BondAromatic},
		},
	}
	patMethyl = fragmentPattern{
		atoms: []atomPattern{{z: 6, minHydrogens: 3}, {}},
		bonds: []bondPattern{{a: 0, b: 1, order: chem.BondSingle}},
	}
)

func matchKey(p fragmentPattern) func(*graph.Graph) bool {
	return func(g *graph.Graph) bool { return p.matches(g) }
}

// defaultKeySet is the cfp-keys/1 list.  Index layout:
//
//	0–19    element and charge presence
//	20–39   ring topology
//	40–59   size and composition thresholds
//	60–119  bond types and functional groups (substructure patterns)
//	160–165 geometry-dependent slots, unevaluable from 2D connectivity
//
// Indices not listed are spare and permanently zero.  The list is
// append-frozen: cfp-keys/1 can never change, only cfp-keys/2 can.
var defaultKeySet = &KeySet{
	version: KeySetVersion,
	length:  KeyedLength,
	keys: []Key{
		{0, "isotope", unevaluable}, // isotopes absent from the graph model
		{1, "heavy-metal", func(g *graph.Graph) bool {
			for _, a := range g.Atoms() {
				if a.AtomicNumber > 20 {
					return true
				}
			}
			return false
		}},
		{2, "boron", hasElement(5)},
		{3, "nitrogen", hasElement(7)},
		{4, "oxygen", hasElement(8)},
		{5, "fluorine", hasElement(9)},
		{6, "silicon", hasElement(14)},
		{7, "phosphorus", hasElement(15)},
		{8, "sulfur", hasElement(16)},
		{9, "chlorine", hasElement(17)},
		{10, "bromine", hasElement(35)},
		{11, "iodine", hasElement(53)},
		{12, "halogen", func(g *graph.Graph) bool {
			for _, a := range g.Atoms() {
				switch a.AtomicNumber {
				case 9, 17, 35, 53:
					return true
				}
			}
			return false
		}},
		{13, "heteroatom", func(g *graph.Graph) bool {
			for _, a := range g.Atoms() {
				if a.AtomicNumber != 6 && a.AtomicNumber != 1 {
					return true
				}
			}
			return false
		}},
		{14, "charged-atom", func(g *graph.Graph) bool {
			for _, a := range g.Atoms() {
				if a.Charge != 0 {
					return true
				}
			}
			return false
		}},
		{15, "positive-charge", func(g *graph.Graph) bool {
			for _, a := range g.Atoms() {
				if a.Charge > 0 {
					return true
				}
			}
			return false
		}},
		{16, "negative-charge", func(g *graph.Graph) bool {
			for _, a := range g.Atoms() {
				if a.Charge < 0 {
					return true
				}
			}
			return false
		}},

		{20, "ring", func(g *graph.Graph) bool { return g.RingAtomCount() > 0 }},
		{21, "two-rings", func(g *graph.Graph) bool { return g.CycleRank() >= 2 }},
		{22, "three-rings", func(g *graph.Graph) bool { return g.CycleRank() >= 3 }},
		{23, "aromatic-ring-bond", func(g *graph.Graph) bool {
			for _, b := range g.Bonds() {
				if b.InRing && b.Order == chem.BondAromatic {
					return true
				}
			}
			return false
		}},
		{24, "aliphatic-ring-bond", func(g *graph.Graph) bool {
			for _, b := range g.Bonds() {
				if b.InRing && b.Order != chem.BondAromatic {
					return true
				}
			}
			return false
		}},
		{25, "aromatic-bonds-6plus", func(g *graph.Graph) bool { return countAromaticBonds(g) >= 6 }},
		{26, "aromatic-bonds-11plus", func(g *graph.Graph) bool { return countAromaticBonds(g) >= 11 }},
		{27, "ring-atom-majority", func(g *graph.Graph) bool {
			return 2*g.RingAtomCount() > g.AtomCount()
		}},
		{28, "ring-fusion-atom", func(g *graph.Graph) bool {
			for i := 0; i < g.AtomCount(); i++ {
				ringBonds := 0
				for _, n := range g.Neighbors(i) {
					if n.Bond.InRing {
						ringBonds++
					}
				}
				if ringBonds >= 3 {
					return true
				}
			}
			return false
		}},

		{40, "atoms-4plus", func(g *graph.Graph) bool { return g.AtomCount() >= 4 }},
		{41, "atoms-8plus", func(g *graph.Graph) bool { return g.AtomCount() >= 8 }},
		{42, "atoms-16plus", func(g *graph.Graph) bool { return g.AtomCount() >= 16 }},
		{43, "atoms-32plus", func(g *graph.Graph) bool { return g.AtomCount() >= 32 }},
		{44, "multi-fragment", func(g *graph.Graph) bool { return len(g.Fragments()) >= 2 }},
		{45, "chain-single-majority", func(g *graph.Graph) bool {
			return chainSingleBondFraction(g) > 0.5
		}},
		{46, "hydrogen-rich", func(g *graph.Graph) bool {
			return totalImplicitHydrogens(g) >= g.AtomCount()
		}},
		{47, "nitrogen-2plus", func(g *graph.Graph) bool { return countElement(g, 7) >= 2 }},
		{48, "oxygen-2plus", func(g *graph.Graph) bool { return countElement(g, 8) >= 2 }},
		{49, "oxygen-4plus", func(g *graph.Graph) bool { return countElement(g, 8) >= 4 }},

		{60, "double-bond", func(g *graph.Graph) bool { return countBondOrder(g, chem.BondDouble) > 0 }},
		{61, "triple-bond", func(g *graph.Graph) bool { return countBondOrder(g, chem.BondTriple) > 0 }},
		{62, "carbonyl", matchKey(patCarbonyl)},
		{63, "nitrile", matchKey(patNitrile)},
		{64, "hydroxyl", matchKey(patHydroxyl)},
		{65, "ether", matchKey(patEther)},
		{66, "carboxylic-acid", matchKey(patCarboxylicAcid)},
		{67, "amide", matchKey(patAmide)},
		{68, "primary-amine", func(g *graph.Graph) bool {
			for _, a := range g.Atoms() {
				if a.AtomicNumber == 7 && a.ImplicitHydrogens >= 2 {
					return true
				}
			}
			return false
		}},
		{69, "nitro", matchKey(patNitro)},
		{70, "thiol", func(g *graph.Graph) bool {
			for _, a := range g.Atoms() {
				if a.AtomicNumber == 16 && a.ImplicitHydrogens >= 1 {
					return true
				}
			}
			return false
		}},
		{71, "thioether", matchKey(patThioether)},
		{72, "sulfonyl", matchKey(patSulfonyl)},
		{73, "alkene", matchKey(patAlkeneCC)},
		{74, "alkyne", matchKey(patAlkyneCC)},
		{75, "aromatic-nitrogen", func(g *graph.Graph) bool {
			for _, a := range g.Atoms() {
				if a.AtomicNumber == 7 && a.Aromatic {
					return true
				}
			}
			return false
		}},
		{76, "aromatic-oxygen", func(g *graph.Graph) bool {
			for _, a := range g.Atoms() {
				if a.AtomicNumber == 8 && a.Aromatic {
					return true
				}
			}
			return false
		}},
		{77, "aromatic-sulfur", func(g *graph.Graph) bool {
			for _, a := range g.Atoms() {
				if a.AtomicNumber == 16 && a.Aromatic {
					return true
				}
			}
			return false
		}},
		{78, "halide-on-carbon", func(g *graph.Graph) bool {
			for _, b := range g.Bonds() {
				za := g.Atom(b.A).AtomicNumber
				zb := g.Atom(b.B).AtomicNumber
				if isHalogen(za) && zb == 6 || isHalogen(zb) && za == 6 {
					return true
				}
			}
			return false
		}},
		{79, "phenol", matchKey(patPhenol)},
		{80, "aniline", matchKey(patAniline)},
		{81, "benzene-ring", matchKey(patBenzeneRing)},
		{82, "methyl", matchKey(patMethyl)},

		// Slots 160-165 are reserved for geometry-dependent predicates
		// (planarity, chirality, conformer shape).  They are unevaluable from
		// a 2D connectivity graph and resolve to false by contract.
		{160, "planar-system", unevaluable},
		{161, "chiral-center", unevaluable},
	},
}

func isHalogen(z int) bool {
	switch z {
	case 9, 17, 35, 53:
		return true
	default:
		return false
	}
}

// DefaultKeySet returns the cfp-keys/1 key set.
func DefaultKeySet() *KeySet { return defaultKeySet }
