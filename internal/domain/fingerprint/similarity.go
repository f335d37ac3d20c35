package fingerprint

import (
	"math"

	"github.com/turtacn/ChemFP-Engine/pkg/errors"
)

// Metric names a similarity algorithm over bit-vector fingerprints.
type Metric string

const (
	MetricTanimoto Metric = "tanimoto"
	MetricDice     Metric = "dice"
	MetricCosine   Metric = "cosine"
)

// IsValid reports whether the metric is a known value.
func (m Metric) IsValid() bool {
	switch m {
	case MetricTanimoto, MetricDice, MetricCosine:
		return true
	default:
		return false
	}
}

// String returns the string form of the metric.
func (m Metric) String() string { return string(m) }

// ParseMetric parses a string into a Metric.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if !m.IsValid() {
		return "", errors.Newf(errors.CodeSimilarityMetric, "unsupported similarity metric %q", s)
	}
	return m, nil
}

// checkCompatible rejects comparisons across schemes, lengths, or key-set
// versions.  A circular fingerprint is never scored against a keyed one —
// the result would be numerically computable but chemically meaningless, so
// it is an error, not a silent answer.
func checkCompatible(a, b *Record) error {
	if a == nil || b == nil || a.Vector == nil || b.Vector == nil {
		return errors.IncompatibleFingerprint("nil fingerprint")
	}
	if a.Scheme != b.Scheme {
		return errors.IncompatibleFingerprint("scheme mismatch").
			WithDetail(string(a.Scheme) + " vs " + string(b.Scheme))
	}
	if a.Vector.Len() != b.Vector.Len() {
		return errors.Newf(errors.CodeFingerprintIncompatible,
			"length mismatch: %d vs %d", a.Vector.Len(), b.Vector.Len())
	}
	if a.KeySet != b.KeySet {
		return errors.IncompatibleFingerprint("key-set version mismatch").
			WithDetail(a.KeySet + " vs " + b.KeySet)
	}
	return nil
}

// Calculator scores two compatible fingerprint records.
type Calculator interface {
	Calculate(a, b *Record) (float64, error)
	Metric() Metric
}

// TanimotoCalculator implements the Tanimoto (Jaccard) coefficient
// |A∩B| / |A∪B|.  An empty union scores 0.0 by definition, not an error.
type TanimotoCalculator struct{}

// Calculate computes Tanimoto similarity in [0, 1].
func (TanimotoCalculator) Calculate(a, b *Record) (float64, error) {
	if err := checkCompatible(a, b); err != nil {
		return 0, err
	}
	and, or := onBitsAndOr(a.Vector, b.Vector)
	if or == 0 {
		return 0.0, nil
	}
	return float64(and) / float64(or), nil
}

// Metric returns MetricTanimoto.
func (TanimotoCalculator) Metric() Metric { return MetricTanimoto }

// DiceCalculator implements the Dice coefficient 2|A∩B| / (|A| + |B|).
type DiceCalculator struct{}

// Calculate computes Dice similarity in [0, 1].
func (DiceCalculator) Calculate(a, b *Record) (float64, error) {
	if err := checkCompatible(a, b); err != nil {
		return 0, err
	}
	and, _ := onBitsAndOr(a.Vector, b.Vector)
	denom := a.Vector.PopCount() + b.Vector.PopCount()
	if denom == 0 {
		return 0.0, nil
	}
	return 2.0 * float64(and) / float64(denom), nil
}

// Metric returns MetricDice.
func (DiceCalculator) Metric() Metric { return MetricDice }

// CosineCalculator implements cosine similarity |A∩B| / sqrt(|A|·|B|) over
// bit vectors (the Ochiai coefficient).
type CosineCalculator struct{}

// Calculate computes cosine similarity in [0, 1].
func (CosineCalculator) Calculate(a, b *Record) (float64, error) {
	if err := checkCompatible(a, b); err != nil {
		return 0, err
	}
	and, _ := onBitsAndOr(a.Vector, b.Vector)
	na, nb := a.Vector.PopCount(), b.Vector.PopCount()
	if na == 0 || nb == 0 {
		return 0.0, nil
	}
	return float64(and) / math.Sqrt(float64(na)*float64(nb)), nil
}

// Metric returns MetricCosine.
func (CosineCalculator) Metric() Metric { return MetricCosine }

// NewCalculator returns the calculator for a metric.
func NewCalculator(metric Metric) (Calculator, error) {
	switch metric {
	case MetricTanimoto:
		return TanimotoCalculator{}, nil
	case MetricDice:
		return DiceCalculator{}, nil
	case MetricCosine:
		return CosineCalculator{}, nil
	default:
		return nil, errors.Newf(errors.CodeSimilarityMetric, "unsupported similarity metric %q", metric)
	}
}

// Tanimoto is the primary scoring entry point used across the platform.
func Tanimoto(a, b *Record) (float64, error) {
	return TanimotoCalculator{}.Calculate(a, b)
}
