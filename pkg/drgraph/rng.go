package drgraph

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

const rngBlock = 64

// nodeRNG is the ChaCha20 keystream keyed by the graph seed, with the node
// index as nonce. Drawing from it is the only source of randomness in parent
// selection, so two rngs for the same (seed, node) produce the same values.
type nodeRNG struct {
	cipher *chacha20.Cipher
	buf    [rngBlock]byte
	off    int
}

func newNodeRNG(seed [SeedSize]byte, node uint64) *nodeRNG {
	var nonce [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[:8], node)

	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		// key and nonce sizes are fixed above.
		panic(err)
	}
	return &nodeRNG{cipher: c, off: rngBlock}
}

// Uint64 returns the next eight keystream bytes as a little-endian integer.
func (r *nodeRNG) Uint64() uint64 {
	if r.off+8 > rngBlock {
		var zero [rngBlock]byte
		r.cipher.XORKeyStream(r.buf[:], zero[:])
		r.off = 0
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}

// Intn returns a value in [0, n). n must be positive.
func (r *nodeRNG) Intn(n uint64) uint64 {
	return r.Uint64() % n
}
