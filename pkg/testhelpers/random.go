// Package testhelpers holds deterministic fixtures shared by package tests.
package testhelpers

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
)

// TestSeed seeds the deterministic rngs handed out by this package.
const TestSeed = 0x3dbe6259

// CountingSeed returns the graph seed 0x00, 0x01, ..., 0x1f.
func CountingSeed() [32]byte {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i)
	}
	return seed
}

// NewRand returns a deterministic rng.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(TestSeed))
}

// RandomSeed draws a graph seed from rng.
func RandomSeed(t testing.TB, rng *rand.Rand) [32]byte {
	var seed [32]byte
	_, err := rng.Read(seed[:])
	require.NoError(t, err)
	return seed
}

// RandomDomain draws a canonical field element from rng.
func RandomDomain(t testing.TB, rng *rand.Rand) fr32.Domain {
	d, err := fr32.Random(rng)
	require.NoError(t, err)
	return d
}

// RandomDomains draws n canonical field elements from rng.
func RandomDomains(t testing.TB, rng *rand.Rand, n int) []fr32.Domain {
	out := make([]fr32.Domain, n)
	for i := range out {
		out[i] = RandomDomain(t, rng)
	}
	return out
}

// RandomData returns nodes canonical field elements laid out as raw bytes.
func RandomData(t testing.TB, nodes int) []byte {
	rng := NewRand()
	data := make([]byte, 0, nodes*fr32.NodeSize)
	for i := 0; i < nodes; i++ {
		d := RandomDomain(t, rng)
		data = append(data, d[:]...)
	}
	return data
}
