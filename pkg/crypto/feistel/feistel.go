// Package feistel implements a keyed permutation of [0, n) built from a
// balanced Feistel network with cycle walking.
package feistel

import (
	"encoding/binary"

	"github.com/minio/blake2b-simd"
)

// Rounds is the number of Feistel rounds applied per encoding.
const Rounds = 3

// Keys are the round keys. Only the first Rounds are used.
type Keys [4]uint64

// Precomputed holds the masks for splitting an index into its halves.
type Precomputed struct {
	LeftMask  uint64
	RightMask uint64
	HalfBits  uint
}

// Precompute derives the half widths for permuting n elements. The network
// operates on the smallest power of four at least n, so both halves are the
// same width.
func Precompute(n uint64) Precomputed {
	nextPow4 := uint64(4)
	log4 := uint(1)
	for nextPow4 < n {
		nextPow4 *= 4
		log4++
	}
	return Precomputed{
		LeftMask:  ((uint64(1) << log4) - 1) << log4,
		RightMask: (uint64(1) << log4) - 1,
		HalfBits:  log4,
	}
}

// DeriveKeys expands a seed into round keys.
func DeriveKeys(seed []byte) Keys {
	h := blake2b.Sum256(append(append([]byte{}, seed...), "feistel"...))
	var keys Keys
	for i := range keys {
		keys[i] = binary.BigEndian.Uint64(h[i*8:])
	}
	return keys
}

// Permute maps index into [0, n). Encodings landing outside the range are
// re-encoded until they fall inside it.
func Permute(n, index uint64, keys Keys, p Precomputed) uint64 {
	u := encode(index, keys, p)
	for u >= n {
		u = encode(u, keys, p)
	}
	return u
}

// InvertPermute is the inverse of Permute for the same n, keys and masks.
func InvertPermute(n, index uint64, keys Keys, p Precomputed) uint64 {
	u := decode(index, keys, p)
	for u >= n {
		u = decode(u, keys, p)
	}
	return u
}

func encode(index uint64, keys Keys, p Precomputed) uint64 {
	left := (index & p.LeftMask) >> p.HalfBits
	right := index & p.RightMask

	for i := 0; i < Rounds; i++ {
		left, right = right, left^round(right, keys[i], p.RightMask)
	}
	return (left << p.HalfBits) | right
}

func decode(index uint64, keys Keys, p Precomputed) uint64 {
	left := (index & p.LeftMask) >> p.HalfBits
	right := index & p.RightMask

	for i := Rounds - 1; i >= 0; i-- {
		left, right = right^round(left, keys[i], p.RightMask), left
	}
	return (left << p.HalfBits) | right
}

func round(right, key, mask uint64) uint64 {
	var data [16]byte
	binary.BigEndian.PutUint64(data[:8], right)
	binary.BigEndian.PutUint64(data[8:], key)

	h := blake2b.Sum256(data[:])
	return binary.BigEndian.Uint64(h[:8]) & mask
}
