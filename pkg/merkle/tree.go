// Package merkle is a small in-memory binary Merkle tree over field elements.
//
// It plays the part of the tree storage collaborator for the graph, column
// and proof assembly packages: callers hand it ordered leaves, ask for the
// root and for inclusion proofs, and never look at its internals.
package merkle

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
)

// BinaryArity is the only arity this tree builds.
const BinaryArity = 2

// ErrLeafCount is returned for leaf counts that are not a power of two.
var ErrLeafCount = errors.New("leaf count must be a non-zero power of two")

// Tree is a complete binary tree. levels[0] holds the leaves and the last
// level holds the root.
type Tree[H hasher.Hasher] struct {
	levels [][]fr32.Domain
}

// Build hashes leaves up to a root using H.
func Build[H hasher.Hasher](leaves []fr32.Domain) (*Tree[H], error) {
	n := len(leaves)
	if n == 0 || n&(n-1) != 0 {
		return nil, errors.Wrapf(ErrLeafCount, "got %d leaves", n)
	}

	var h H
	levels := [][]fr32.Domain{append([]fr32.Domain(nil), leaves...)}
	for cur := levels[0]; len(cur) > 1; {
		next := make([]fr32.Domain, len(cur)/2)
		for i := range next {
			next[i] = h.Node(cur[2*i], cur[2*i+1])
		}
		levels = append(levels, next)
		cur = next
	}
	return &Tree[H]{levels: levels}, nil
}

// FromData builds a tree whose leaves are the consecutive NodeSize chunks of
// data. Every chunk has to be a canonical field element.
func FromData[H hasher.Hasher](data []byte) (*Tree[H], error) {
	if len(data)%fr32.NodeSize != 0 {
		return nil, errors.Errorf("data length %d is not a multiple of %d", len(data), fr32.NodeSize)
	}
	leaves := make([]fr32.Domain, len(data)/fr32.NodeSize)
	for i := range leaves {
		d, err := fr32.FromBytes(data[i*fr32.NodeSize : (i+1)*fr32.NodeSize])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid leaf %d", i)
		}
		leaves[i] = d
	}
	return Build[H](leaves)
}

// Root returns the tree root.
func (t *Tree[H]) Root() fr32.Domain {
	return t.levels[len(t.levels)-1][0]
}

// LeafCount returns the number of leaves.
func (t *Tree[H]) LeafCount() uint64 {
	return uint64(len(t.levels[0]))
}

// Leaf returns leaf i.
func (t *Tree[H]) Leaf(i uint64) (fr32.Domain, error) {
	if i >= t.LeafCount() {
		return fr32.Domain{}, errors.Errorf("leaf %d out of range for tree with %d leaves", i, t.LeafCount())
	}
	return t.levels[0][i], nil
}

// GenProof returns the inclusion proof of leaf i.
func (t *Tree[H]) GenProof(i uint64) (*Proof, error) {
	leaf, err := t.Leaf(i)
	if err != nil {
		return nil, err
	}

	path := make([]PathElement, 0, len(t.levels)-1)
	idx := i
	for _, level := range t.levels[:len(t.levels)-1] {
		path = append(path, PathElement{
			Hashes: []fr32.Domain{level[idx^1]},
			Index:  uint(idx & 1),
		})
		idx >>= 1
	}

	return &Proof{
		Leaf: leaf,
		Root: t.Root(),
		Path: path,
	}, nil
}

// PathLength is the number of path elements in a proof for a tree with the
// given leaf count.
func PathLength(leaves uint64, arity int) int {
	if leaves <= 1 {
		return 0
	}
	if arity == BinaryArity {
		return bits.Len64(leaves - 1)
	}
	n := 0
	for width := uint64(1); width < leaves; width *= uint64(arity) {
		n++
	}
	return n
}
