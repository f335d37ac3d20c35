package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintScheme_IsValid(t *testing.T) {
	tests := []struct {
		scheme FingerprintScheme
		want   bool
	}{
		{SchemeCircular, true},
		{SchemeKeyed, true},
		{FingerprintScheme("morgan"), false},
		{FingerprintScheme(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scheme.IsValid())
		})
	}
}

func TestParseFingerprintScheme(t *testing.T) {
	s, err := ParseFingerprintScheme("circular")
	assert.NoError(t, err)
	assert.Equal(t, SchemeCircular, s)

	_, err = ParseFingerprintScheme("ecfp4")
	assert.Error(t, err)
}

func TestBondOrder_IsValid(t *testing.T) {
	for _, o := range []BondOrder{BondSingle, BondDouble, BondTriple, BondAromatic} {
		assert.True(t, o.IsValid(), o)
	}
	assert.False(t, BondOrder("quadruple").IsValid())
}
