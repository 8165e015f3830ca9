package hasher

import (
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
)

// MaxPoseidonArity is the widest input a single Poseidon permutation accepts.
const MaxPoseidonArity = 16

// Poseidon is the circuit friendly hasher over the native field.
type Poseidon struct{}

var _ Hasher = Poseidon{}

func (Poseidon) Name() string { return "poseidon" }

func (Poseidon) Node(left, right fr32.Domain) fr32.Domain {
	return poseidonHash([]*big.Int{left.BigInt(), right.BigInt()})
}

func (Poseidon) Digest(data []byte) fr32.Domain {
	v, err := poseidon.HashBytes(data)
	if err != nil {
		// HashBytes only fails on internal width errors.
		panic(err)
	}
	return fr32.FromBigInt(v)
}

// poseidonHash hashes between 1 and MaxPoseidonArity canonical elements.
func poseidonHash(in []*big.Int) fr32.Domain {
	v, err := poseidon.Hash(in)
	if err != nil {
		// inputs are always reduced and within the supported width, an error
		// here is a programming mistake.
		panic(err)
	}
	return fr32.FromBigInt(v)
}
