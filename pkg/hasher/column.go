package hasher

import (
	"math/big"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/util/chk"
)

// HashColumn reduces the ordered rows of a column to one field element.
//
// Up to MaxPoseidonArity rows are hashed in a single fixed-arity Poseidon
// call. Longer columns are absorbed MaxPoseidonArity-1 rows at a time into an
// accumulator that starts at the row count, so columns of different heights
// never share an absorption schedule.
func HashColumn(rows []fr32.Domain) fr32.Domain {
	chk.True(len(rows) > 0, "cannot hash an empty column")

	if len(rows) <= MaxPoseidonArity {
		in := make([]*big.Int, len(rows))
		for i, r := range rows {
			in[i] = reduced(r)
		}
		return poseidonHash(in)
	}

	acc := fr32.FromUint64(uint64(len(rows)))
	for start := 0; start < len(rows); start += MaxPoseidonArity - 1 {
		end := start + MaxPoseidonArity - 1
		if end > len(rows) {
			end = len(rows)
		}
		in := make([]*big.Int, 0, end-start+1)
		in = append(in, acc.BigInt())
		for _, r := range rows[start:end] {
			in = append(in, reduced(r))
		}
		acc = poseidonHash(in)
	}
	return acc
}

func reduced(d fr32.Domain) *big.Int {
	v := d.BigInt()
	if v.Cmp(fr32.Modulus()) >= 0 {
		v.Mod(v, fr32.Modulus())
	}
	return v
}
