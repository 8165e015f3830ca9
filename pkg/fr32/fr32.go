// Package fr32 holds the 32 byte scalar field values every commitment, tree
// node and public input in this module is expressed in.
//
// A Domain is the little-endian encoding of an element of the BN254 scalar
// field. Values read from arbitrary bytes must be canonical (strictly less
// than the modulus); hash outputs are mapped into the field with Trim.
package fr32

import (
	"encoding/hex"
	"io"
	"math/big"
	"sync"

	"github.com/iden3/go-iden3-crypto/ff"
	"github.com/pkg/errors"
)

// NodeSize is the number of bytes a single graph node occupies in replica
// and data buffers.
const NodeSize = 32

// ErrNotCanonical is returned when 32 bytes do not encode a value below the
// field modulus.
var ErrNotCanonical = errors.New("value is not a canonical field element")

var (
	modulusOnce sync.Once
	modulus     *big.Int
)

// Modulus returns the scalar field modulus. The value is computed once and
// shared read-only by every caller.
func Modulus() *big.Int {
	modulusOnce.Do(func() {
		modulus = ff.Modulus()
	})
	return modulus
}

// Domain is a little-endian encoded scalar field element.
type Domain [NodeSize]byte

// FromBytes reads a canonical field element from exactly NodeSize bytes.
func FromBytes(b []byte) (Domain, error) {
	var d Domain
	if len(b) != NodeSize {
		return d, errors.Errorf("invalid domain length %d, expected %d", len(b), NodeSize)
	}
	copy(d[:], b)
	if !d.IsCanonical() {
		return Domain{}, ErrNotCanonical
	}
	return d, nil
}

// FromBigInt reduces v modulo the field and encodes it.
func FromBigInt(v *big.Int) Domain {
	r := new(big.Int).Mod(v, Modulus())
	be := r.FillBytes(make([]byte, NodeSize))
	var d Domain
	for i := range be {
		d[NodeSize-1-i] = be[i]
	}
	return d
}

// FromUint64 encodes a small integer, e.g. a node index.
func FromUint64(v uint64) Domain {
	return FromBigInt(new(big.Int).SetUint64(v))
}

// Trim maps arbitrary 32 bytes into the field by clearing the three most
// significant bits. The result is always below 2^253 and therefore canonical.
func Trim(b [NodeSize]byte) Domain {
	b[NodeSize-1] &= 0x1f
	return Domain(b)
}

// Random draws a uniformly distributed canonical field element from r.
func Random(r io.Reader) (Domain, error) {
	v, err := randInt(r)
	if err != nil {
		return Domain{}, err
	}
	return FromBigInt(v), nil
}

func randInt(r io.Reader) (*big.Int, error) {
	var buf [NodeSize + 16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.Wrap(err, "failed to read randomness")
	}
	// 128 extra bits keep the modular bias negligible.
	return new(big.Int).SetBytes(buf[:]), nil
}

// BigInt decodes the element.
func (d Domain) BigInt() *big.Int {
	var be [NodeSize]byte
	for i := range d {
		be[NodeSize-1-i] = d[i]
	}
	return new(big.Int).SetBytes(be[:])
}

// IsCanonical reports whether d encodes a value below the modulus.
func (d Domain) IsCanonical() bool {
	return d.BigInt().Cmp(Modulus()) < 0
}

// Add returns d + o in the field.
func (d Domain) Add(o Domain) Domain {
	return FromBigInt(new(big.Int).Add(d.BigInt(), o.BigInt()))
}

// Sub returns d - o in the field.
func (d Domain) Sub(o Domain) Domain {
	return FromBigInt(new(big.Int).Sub(d.BigInt(), o.BigInt()))
}

// Bytes returns a copy of the little-endian encoding.
func (d Domain) Bytes() []byte {
	out := make([]byte, NodeSize)
	copy(out, d[:])
	return out
}

func (d Domain) String() string {
	return hex.EncodeToString(d[:])
}

// DataAtNode returns the NodeSize bytes of node v inside data.
func DataAtNode(data []byte, v uint64) ([]byte, error) {
	offset := v * NodeSize
	if offset+NodeSize > uint64(len(data)) {
		return nil, errors.Errorf("node %d out of bounds of data with length %d", v, len(data))
	}
	return data[offset : offset+NodeSize], nil
}
