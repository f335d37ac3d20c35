package fingerprint

import (
	"github.com/turtacn/ChemFP-Engine/internal/domain/graph"
	"github.com/turtacn/ChemFP-Engine/pkg/errors"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// ComputeKeyed evaluates the default key set against g and returns the keyed
// fingerprint record.  Bit i is set iff predicate i matches at least once;
// spare and unevaluable slots stay zero.  The bit-to-predicate assignment is
// fixed by the key-set version and never varies by configuration — that
// stability is the defining property separating keyed from hashed
// fingerprints.
func ComputeKeyed(g *graph.Graph) (*Record, error) {
	return DefaultKeySet().Compute(g)
}

// Compute evaluates the key set against g.
func (ks *KeySet) Compute(g *graph.Graph) (*Record, error) {
	if g == nil {
		return nil, errors.MalformedGraph("nil graph")
	}
	vec, err := NewBitVector(ks.length)
	if err != nil {
		return nil, err
	}
	for _, k := range ks.keys {
		if k.Eval != nil && k.Eval(g) {
			vec.Set(k.Index)
		}
	}
	return newRecord(g, chem.SchemeKeyed, 0, ks.version, vec), nil
}
