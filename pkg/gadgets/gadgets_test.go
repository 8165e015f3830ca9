package gadgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
	"github.com/filecoin-project/go-storage-proofs/pkg/testhelpers"
	tf "github.com/filecoin-project/go-storage-proofs/pkg/testhelpers/testflags"
)

func TestNamespaces(t *testing.T) {
	tf.UnitTest(t)

	cs := NewMetricCS()
	one := fr32.FromUint64(1)
	_, err := cs.Namespace("a").Namespace("b").AllocInput("x", assignment(&one))
	require.NoError(t, err)
	_, err = cs.Alloc("y", assignment(nil))
	require.NoError(t, err, "metric cs never evaluates values")
	cs.Namespace("c").Enforce("z", func() (bool, error) { return false, nil })

	assert.Equal(t, []string{"input a/b/x", "aux y", "constraint c/z"}, cs.PrettyPrintList())
	assert.Equal(t, 1, cs.NumInputs())
	assert.Equal(t, 1, cs.NumAux())
	assert.Equal(t, 1, cs.NumConstraints())
}

func TestTestConstraintSystem(t *testing.T) {
	tf.UnitTest(t)

	cs := NewTestConstraintSystem()
	two := fr32.FromUint64(2)
	n, err := AllocNum(cs, "n", &two)
	require.NoError(t, err)
	in, err := n.Inputize(cs.Namespace("ns"), "n")
	require.NoError(t, err)

	assert.True(t, cs.IsSatisfied())
	assert.Equal(t, two, cs.Value(in.Variable))
	assert.Equal(t, two, cs.Value(n.Variable))
	assert.True(t, cs.Verify([]fr32.Domain{two}))
	assert.False(t, cs.Verify([]fr32.Domain{two, two}))
	assert.False(t, cs.Verify([]fr32.Domain{fr32.FromUint64(3)}))
	assert.Equal(t, []string{"aux n", "input ns/n", "constraint ns/n/enforce"}, cs.PrettyPrintList())

	_, err = AllocNum(cs, "missing", nil)
	assert.ErrorIs(t, err, ErrAssignmentMissing)

	var bad fr32.Domain
	for i := range bad {
		bad[i] = 0xff
	}
	_, err = AllocNum(cs, "bad", &bad)
	assert.ErrorIs(t, err, fr32.ErrNotCanonical)

	cs.Enforce("first", func() (bool, error) { return false, nil })
	cs.Enforce("second", func() (bool, error) { return false, nil })
	assert.False(t, cs.IsSatisfied())
	assert.Equal(t, "first", cs.WhichIsUnsatisfied())
}

func TestAuthPath(t *testing.T) {
	tf.UnitTest(t)

	leaves := testhelpers.RandomDomains(t, testhelpers.NewRand(), 8)
	tree, err := merkle.Build[hasher.Sha256](leaves)
	require.NoError(t, err)
	p, err := tree.GenProof(6)
	require.NoError(t, err)

	ap := AuthPathFromProof(p)
	require.Len(t, ap, 3)
	idx, err := ap.PathIndex(merkle.BinaryArity)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), idx)
	for i, el := range ap {
		require.Len(t, el.Hashes, 1)
		assert.Equal(t, p.Path[i].Hashes[0], *el.Hashes[0])
	}

	blank := BlankAuthPath(3, merkle.BinaryArity)
	require.Len(t, blank, 3)
	for _, el := range blank {
		assert.Len(t, el.Hashes, 1)
		assert.Nil(t, el.Hashes[0])
		assert.Nil(t, el.Index)
	}
	_, err = blank.PathIndex(merkle.BinaryArity)
	assert.ErrorIs(t, err, ErrAssignmentMissing)

	assert.Panics(t, func() { BlankAuthPath(3, 1) })
}

func testPoR[H hasher.Hasher](t *testing.T, private bool) {
	leaves := testhelpers.RandomDomains(t, testhelpers.NewRand(), 16)
	tree, err := merkle.Build[H](leaves)
	require.NoError(t, err)
	root := tree.Root()

	for _, challenge := range []uint64{0, 5, 15} {
		p, err := tree.GenProof(challenge)
		require.NoError(t, err)

		cs := NewTestConstraintSystem()
		value := leaves[challenge]
		require.NoError(t, PoR[H](cs, &value, AuthPathFromProof(p), RootVal(&root), private))
		assert.True(t, cs.IsSatisfied(), cs.WhichIsUnsatisfied())

		expected := []fr32.Domain{fr32.FromUint64(challenge)}
		if !private {
			expected = append(expected, root)
		}
		assert.True(t, cs.Verify(expected))

		blank := NewMetricCS()
		require.NoError(t, PoR[H](blank, nil, BlankAuthPath(4, merkle.BinaryArity), RootVal(nil), private))
		assert.Equal(t, blank.PrettyPrintList(), cs.PrettyPrintList())
		assert.Equal(t, cs.NumInputs(), blank.NumInputs())

		wrong := leaves[(challenge+1)%16]
		bad := NewTestConstraintSystem()
		require.NoError(t, PoR[H](bad, &wrong, AuthPathFromProof(p), RootVal(&root), private))
		assert.False(t, bad.IsSatisfied())
		assert.Equal(t, "enforce root is correct", bad.WhichIsUnsatisfied())
	}
}

func TestPoRPublic(t *testing.T) {
	tf.UnitTest(t)
	testPoR[hasher.Poseidon](t, false)
	testPoR[hasher.Sha256](t, false)
}

func TestPoRPrivate(t *testing.T) {
	tf.UnitTest(t)
	testPoR[hasher.Blake2s](t, true)
}

func TestPoRSharedRootVariable(t *testing.T) {
	tf.UnitTest(t)

	leaves := testhelpers.RandomDomains(t, testhelpers.NewRand(), 4)
	tree, err := merkle.Build[hasher.Sha256](leaves)
	require.NoError(t, err)
	root := tree.Root()

	cs := NewTestConstraintSystem()
	rootNum, err := AllocNum(cs, "root", &root)
	require.NoError(t, err)

	for i := uint64(0); i < 4; i++ {
		p, err := tree.GenProof(i)
		require.NoError(t, err)
		require.NoError(t, PoR[hasher.Sha256](cs.Namespace("c"), &leaves[i], AuthPathFromProof(p), RootVar(rootNum), false))
	}
	assert.True(t, cs.IsSatisfied())
	// one root allocation shared by all four proofs
	assert.Equal(t, 8, cs.NumInputs())
}
