package gadgets

import (
	"fmt"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
	"github.com/filecoin-project/go-storage-proofs/pkg/util/chk"
)

// PoR proves value sits at the leaf the path positions select under root.
// The public inputs it allocates are, in order, the packed leaf index and,
// unless private, the root.
func PoR[H hasher.Hasher](cs ConstraintSystem, value *fr32.Domain, path AuthPath, root Root, private bool) error {
	cur, err := AllocNum(cs, "value_num", value)
	if err != nil {
		return err
	}

	for i, el := range path {
		chk.Equal(merkle.BinaryArity-1, len(el.Hashes), "path element %d arity", i)
		if cur, err = hashLevel[H](cs.Namespace(fmt.Sprintf("merkle_tree_hash_%d", i)), cur, el); err != nil {
			return err
		}
	}

	packed := func() (fr32.Domain, error) {
		idx, err := path.PathIndex(merkle.BinaryArity)
		if err != nil {
			return fr32.Domain{}, err
		}
		return fr32.FromUint64(idx), nil
	}
	if _, err := cs.AllocInput("path/packed_index", packed); err != nil {
		return err
	}

	rt, err := root.Allocated(cs.Namespace("root_value"))
	if err != nil {
		return err
	}
	final := cur
	cs.Enforce("enforce root is correct", func() (bool, error) {
		return equal(final, rt)
	})

	if !private {
		if _, err := rt.Inputize(cs, "root"); err != nil {
			return err
		}
	}
	return nil
}

func hashLevel[H hasher.Hasher](cs ConstraintSystem, cur AllocatedNum, el PathElement) (AllocatedNum, error) {
	sibling, err := AllocNum(cs, "hash_0", el.Hashes[0])
	if err != nil {
		return AllocatedNum{}, err
	}

	var bit *fr32.Domain
	if el.Index != nil {
		b := fr32.FromUint64(uint64(*el.Index))
		bit = &b
	}
	bitNum, err := AllocNum(cs, "index_bit", bit)
	if err != nil {
		return AllocatedNum{}, err
	}
	cs.Enforce("index_bit/boolean", func() (bool, error) {
		v, err := bitNum.Value()
		if err != nil {
			return false, err
		}
		return v == fr32.FromUint64(0) || v == fr32.FromUint64(1), nil
	})

	var parent *fr32.Domain
	cv, cerr := cur.Value()
	sv, serr := sibling.Value()
	if cerr == nil && serr == nil && el.Index != nil {
		var h H
		var p fr32.Domain
		if *el.Index == 0 {
			p = h.Node(cv, sv)
		} else {
			p = h.Node(sv, cv)
		}
		parent = &p
	}
	return AllocNum(cs, "parent", parent)
}
