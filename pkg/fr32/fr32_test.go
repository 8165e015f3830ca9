package fr32

import (
	"bytes"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tf "github.com/filecoin-project/go-storage-proofs/pkg/testhelpers/testflags"
)

func TestDomainBigIntRoundTrip(t *testing.T) {
	tf.UnitTest(t)

	v := big.NewInt(0x0102030405)
	d := FromBigInt(v)
	assert.Equal(t, byte(0x05), d[0])
	assert.Equal(t, byte(0x01), d[4])
	assert.Equal(t, 0, v.Cmp(d.BigInt()))
	assert.Equal(t, FromUint64(0x0102030405), d)
}

func TestFromBytesRejectsNonCanonical(t *testing.T) {
	tf.UnitTest(t)

	_, err := FromBytes(bytes.Repeat([]byte{0xff}, NodeSize))
	assert.ErrorIs(t, err, ErrNotCanonical)

	_, err = FromBytes(make([]byte, 31))
	assert.Error(t, err)

	d, err := FromBytes(FromUint64(7).Bytes())
	require.NoError(t, err)
	assert.Equal(t, FromUint64(7), d)
}

func TestTrimIsCanonical(t *testing.T) {
	tf.UnitTest(t)

	var b [NodeSize]byte
	for i := range b {
		b[i] = 0xff
	}
	assert.True(t, Trim(b).IsCanonical())
}

func TestAddSub(t *testing.T) {
	tf.UnitTest(t)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 16; i++ {
		a, err := Random(rng)
		require.NoError(t, err)
		b, err := Random(rng)
		require.NoError(t, err)

		assert.True(t, a.IsCanonical())
		assert.Equal(t, a, a.Add(b).Sub(b))
	}

	// wraps around the modulus
	minusOne := FromBigInt(new(big.Int).Sub(Modulus(), big.NewInt(1)))
	assert.Equal(t, FromUint64(0), minusOne.Add(FromUint64(1)))
}

func TestDataAtNode(t *testing.T) {
	tf.UnitTest(t)

	data := make([]byte, 3*NodeSize)
	data[NodeSize] = 9

	n, err := DataAtNode(data, 1)
	require.NoError(t, err)
	assert.Equal(t, byte(9), n[0])

	_, err = DataAtNode(data, 3)
	assert.Error(t, err)
}
