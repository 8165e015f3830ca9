package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tf "github.com/filecoin-project/go-storage-proofs/pkg/testhelpers/testflags"
)

type sample struct {
	Index uint32     `cbor:"index"`
	Rows  [][32]byte `cbor:"rows"`
	Tag   string     `cbor:"tag"`
}

func TestEncodeIsCanonical(t *testing.T) {
	tf.UnitTest(t)

	s := sample{Index: 3, Rows: [][32]byte{{1}, {2}}, Tag: "x"}
	a, err := Encode(s)
	require.NoError(t, err)
	b, err := Encode(&s)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var out sample
	require.NoError(t, Decode(a, &out))
	assert.Equal(t, s, out)
}

func TestDecodeErrors(t *testing.T) {
	tf.UnitTest(t)

	var out sample
	assert.Error(t, Decode(nil, &out))
	assert.Error(t, Decode([]byte{0xff, 0x00}, &out))

	dec := NewFxamackerCborDecoder([]byte{0xa0})
	require.NoError(t, dec.DecodeStruct(&out))
	assert.Error(t, dec.DecodeStruct(&out), "decoder is drained after one value")
}
