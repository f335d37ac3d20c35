package graph

import (
	"strings"

	"github.com/turtacn/ChemFP-Engine/pkg/errors"
)

// atomicNumberBySymbol covers the elements that occur in the corpora this
// engine fingerprints (organic subset plus common heteroatoms, halogens, and
// a handful of metals seen in catalysts).  Lookup is case-sensitive on the
// canonical symbol; ResolveElement normalises single-letter input.
var atomicNumberBySymbol = map[string]int{
	"H": 1, "He": 2, "Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8,
	"F": 9, "Ne": 10, "Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15,
	"S": 16, "Cl": 17, "Ar": 18, "K": 19, "Ca": 20, "Ti": 22, "Cr": 24,
	"Mn": 25, "Fe": 26, "Co": 27, "Ni": 28, "Cu": 29, "Zn": 30, "Ga": 31,
	"Ge": 32, "As": 33, "Se": 34, "Br": 35, "Zr": 40, "Mo": 42, "Ru": 44,
	"Rh": 45, "Pd": 46, "Ag": 47, "Cd": 48, "Sn": 50, "Sb": 51, "Te": 52,
	"I": 53, "Pt": 78, "Au": 79, "Hg": 80, "Pb": 82,
}

// symbolByAtomicNumber is the inverse of atomicNumberBySymbol, built once at
// package init.
var symbolByAtomicNumber = func() map[int]string {
	m := make(map[int]string, len(atomicNumberBySymbol))
	for sym, z := range atomicNumberBySymbol {
		m[z] = sym
	}
	return m
}()

// maxValence is the highest commonly accepted valence per atomic number for
// the organic subset, used by the strict valence policy.  Hypervalent states
// of P and S are allowed.  Elements absent from this table are exempt from
// the valence check (metals and noble gases).
var maxValence = map[int]int{
	1: 1, 5: 3, 6: 4, 7: 3, 8: 2, 9: 1,
	14: 4, 15: 5, 16: 6, 17: 1, 35: 1, 53: 1,
}

// ResolveElement maps a periodic-table symbol to its atomic number.  Input is
// normalised to canonical capitalisation ("cl" → "Cl") before lookup.
func ResolveElement(symbol string) (int, error) {
	s := strings.TrimSpace(symbol)
	if s == "" {
		return 0, errors.New(errors.CodeGraphUnknownElement, "empty element symbol")
	}
	if len(s) == 1 {
		s = strings.ToUpper(s)
	} else {
		s = strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	}
	z, ok := atomicNumberBySymbol[s]
	if !ok {
		return 0, errors.Newf(errors.CodeGraphUnknownElement, "unknown element symbol %q", symbol)
	}
	return z, nil
}

// ElementSymbol returns the symbol for an atomic number, or "?" when the
// number is outside the supported table.
func ElementSymbol(atomicNumber int) string {
	if sym, ok := symbolByAtomicNumber[atomicNumber]; ok {
		return sym
	}
	return "?"
}
