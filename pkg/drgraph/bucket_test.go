package drgraph

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	tf "github.com/filecoin-project/go-storage-proofs/pkg/testhelpers/testflags"
)

func countingSeed() [SeedSize]byte {
	var seed [SeedSize]byte
	for i := range seed {
		seed[i] = byte(i)
	}
	return seed
}

func TestParentsReferenceVectors(t *testing.T) {
	tf.UnitTest(t)

	g, err := New[hasher.Sha256](64, 6, 0, countingSeed())
	require.NoError(t, err)

	for node, expected := range map[uint64][]uint64{
		0:  {4, 1, 0, 2, 5, 3},
		3:  {3, 5, 2, 0, 4, 1},
		5:  {3, 5, 0, 1, 2, 4},
		6:  {0, 1, 2, 3, 4, 5},
		7:  {1, 2, 3, 4, 5, 6},
		10: {3, 5, 6, 7, 8, 9},
		31: {10, 12, 13, 16, 27, 30},
		63: {45, 55, 59, 60, 61, 62},
	} {
		parents, err := g.Parents(node)
		require.NoError(t, err)
		assert.Equal(t, expected, parents, "node %d", node)
	}

	var seed [SeedSize]byte
	for i := range seed {
		seed[i] = 7
	}
	small, err := New[hasher.Sha256](8, 4, 0, seed)
	require.NoError(t, err)
	for node, expected := range map[uint64][]uint64{
		0: {2, 3, 1, 0},
		2: {3, 2, 0, 1},
		4: {0, 1, 2, 3},
		5: {1, 2, 3, 4},
		7: {3, 4, 5, 6},
	} {
		parents, err := small.Parents(node)
		require.NoError(t, err)
		assert.Equal(t, expected, parents, "node %d", node)
	}
}

func TestParentsAreDistinctAndEarlier(t *testing.T) {
	tf.UnitTest(t)

	for _, degree := range []uint32{2, 5, 6, 13} {
		g, err := New[hasher.Poseidon](1024, degree, 0, NewSeed())
		require.NoError(t, err)

		for node := uint64(0); node < g.Size(); node++ {
			parents, err := g.Parents(node)
			require.NoError(t, err)
			require.Len(t, parents, int(degree))

			seen := map[uint64]bool{}
			for _, p := range parents {
				require.False(t, seen[p], "duplicate parent %d of node %d", p, node)
				seen[p] = true
				if node >= uint64(degree) {
					require.Less(t, p, node)
				} else {
					require.Less(t, p, uint64(degree))
				}
			}
		}
	}
}

func TestParentsLargeGraph(t *testing.T) {
	tf.SlowTest(t)

	g, err := New[hasher.Sha256](1<<18, 6, 0, NewSeed())
	require.NoError(t, err)

	// Nodes near the end of a large graph must still reach far back.
	var longest uint64
	for node := g.Size() - 1024; node < g.Size(); node++ {
		parents, err := g.Parents(node)
		require.NoError(t, err)
		require.Len(t, parents, 6)
		for i, p := range parents {
			require.Less(t, p, node)
			if i > 0 {
				require.Less(t, parents[i-1], p)
			}
			if node-p > longest {
				longest = node - p
			}
		}
	}
	assert.Greater(t, longest, g.Size()/4)
}

func TestParentsDeterministic(t *testing.T) {
	tf.UnitTest(t)

	seed := NewSeed()
	g1, err := New[hasher.Sha256](256, 6, 0, seed)
	require.NoError(t, err)
	g2, err := New[hasher.Blake2s](256, 6, 0, seed)
	require.NoError(t, err)

	for node := uint64(0); node < 256; node++ {
		a, err := g1.Parents(node)
		require.NoError(t, err)
		b, err := g1.Parents(node)
		require.NoError(t, err)
		c, err := g2.Parents(node)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, a, c)
	}

	other, err := New[hasher.Sha256](256, 6, 0, NewSeed())
	require.NoError(t, err)
	differs := false
	for node := uint64(6); node < 256 && !differs; node++ {
		a, _ := g1.Parents(node)
		b, _ := other.Parents(node)
		differs = !assert.ObjectsAreEqual(a, b)
	}
	assert.True(t, differs, "different seeds should produce different graphs")
}

func TestNewValidatesParams(t *testing.T) {
	tf.UnitTest(t)

	seed := countingSeed()

	_, err := New[hasher.Sha256](8, 8, 0, seed)
	assert.True(t, errors.Is(err, ErrDegreeTooLarge))

	_, err = New[hasher.Sha256](8, 4, 4, seed)
	assert.True(t, errors.Is(err, ErrInvalidParams))

	_, err = New[hasher.Sha256](8, 0, 0, seed)
	assert.True(t, errors.Is(err, ErrInvalidParams))

	_, err = New[hasher.Sha256](0, 1, 0, seed)
	assert.True(t, errors.Is(err, ErrInvalidParams))

	assert.NoError(t, ValidateParams(8, 4, 3))
	assert.True(t, errors.Is(ValidateParams(8, 4, 4), ErrDegreeTooLarge))
}

func TestParentsOutOfRange(t *testing.T) {
	tf.UnitTest(t)

	g, err := New[hasher.Sha256](8, 4, 0, countingSeed())
	require.NoError(t, err)

	_, err = g.Parents(8)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestBucketGraphMerkleTree(t *testing.T) {
	tf.UnitTest(t)

	g, err := New[hasher.Sha256](8, 4, 0, countingSeed())
	require.NoError(t, err)
	assert.Equal(t, 3, MerkleTreeDepth(g, 2))

	tree, err := g.MerkleTree(make([]byte, 8*32))
	require.NoError(t, err)
	assert.Equal(t, uint64(8), tree.LeafCount())

	_, err = g.MerkleTree(make([]byte, 7*32))
	assert.Error(t, err)
}

func TestParentCache(t *testing.T) {
	tf.UnitTest(t)

	g, err := New[hasher.Sha256](128, 5, 0, NewSeed())
	require.NoError(t, err)

	pc, err := NewParentCache(g, 16)
	require.NoError(t, err)
	assert.Equal(t, g.Size(), pc.Size())
	assert.Equal(t, g.Degree(), pc.Degree())
	assert.Equal(t, g.Seed(), pc.Seed())

	for round := 0; round < 2; round++ {
		for node := uint64(0); node < 128; node++ {
			expected, err := g.Parents(node)
			require.NoError(t, err)
			actual, err := pc.Parents(node)
			require.NoError(t, err)
			assert.Equal(t, expected, actual)
		}
	}
	assert.LessOrEqual(t, pc.Len(), 16)

	_, err = pc.Parents(128)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}
