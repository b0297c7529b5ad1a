package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashString(t *testing.T) {
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", HashString("hello"))
	assert.Equal(t, HashString("hello"), HashString("hello"))
	assert.NotEqual(t, HashString("hello"), HashString("hello "))
}

func TestHashFeaturesDeterministic(t *testing.T) {
	features := []float64{0.038, -0.044, 0.0616962065186836}

	assert.Equal(t,
		HashFeatures("v0.2", features),
		HashFeatures("v0.2", features),
	)
}

func TestHashFeaturesVersionIsPartOfKey(t *testing.T) {
	features := []float64{0.038, -0.044}

	assert.NotEqual(t,
		HashFeatures("v0.2", features),
		HashFeatures("v0.3", features),
	)
}

func TestHashFeaturesSensitiveToSmallChanges(t *testing.T) {
	a := HashFeatures("v1", []float64{0.0380759064334241})
	b := HashFeatures("v1", []float64{0.0380759064334242})
	assert.NotEqual(t, a, b)
}
