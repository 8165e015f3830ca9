// Package zigzag builds the layered expander graph replicas are encoded over.
//
// A ZigZagGraph adds expansion edges, drawn through a Feistel permutation of
// the full node range, on top of a base bucket graph. Layers alternate
// between the natural node order and its reverse, so dependency chains run
// through the whole stack.
package zigzag

import (
	"sort"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/filecoin-project/go-storage-proofs/pkg/crypto/feistel"
	"github.com/filecoin-project/go-storage-proofs/pkg/drgraph"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
)

var log = logging.Logger("zigzag")

// ZigZagGraph is one direction of the layered graph.
type ZigZagGraph[H hasher.Hasher] struct {
	base            *drgraph.BucketGraph[H]
	expansionDegree uint32
	reversed        bool

	keys        feistel.Keys
	precomputed feistel.Precomputed
}

var _ drgraph.Graph = (*ZigZagGraph[hasher.Sha256])(nil)

// NewZigZag creates the forward graph for the given parameter tuple.
func NewZigZag[H hasher.Hasher](nodes uint64, baseDegree, expansionDegree uint32, seed [drgraph.SeedSize]byte) (*ZigZagGraph[H], error) {
	if err := drgraph.ValidateParams(nodes, baseDegree, expansionDegree); err != nil {
		return nil, err
	}
	base, err := drgraph.New[H](nodes, baseDegree, 0, seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create base graph")
	}

	return &ZigZagGraph[H]{
		base:            base,
		expansionDegree: expansionDegree,
		keys:            feistel.DeriveKeys(seed[:]),
		precomputed:     feistel.Precompute(nodes * uint64(expansionDegree)),
	}, nil
}

func (g *ZigZagGraph[H]) Size() uint64 { return g.base.Size() }

func (g *ZigZagGraph[H]) Degree() uint32 { return g.base.Degree() + g.expansionDegree }

func (g *ZigZagGraph[H]) Seed() [drgraph.SeedSize]byte { return g.base.Seed() }

// BaseDegree is the number of parents contributed by the base graph.
func (g *ZigZagGraph[H]) BaseDegree() uint32 { return g.base.Degree() }

// ExpansionDegree is the maximum number of expansion parents per node.
func (g *ZigZagGraph[H]) ExpansionDegree() uint32 { return g.expansionDegree }

// Reversed reports whether nodes are processed in reverse order.
func (g *ZigZagGraph[H]) Reversed() bool { return g.reversed }

// ZigZag returns the same graph with the opposite direction.
func (g *ZigZagGraph[H]) ZigZag() *ZigZagGraph[H] {
	flipped := *g
	flipped.reversed = !g.reversed
	return &flipped
}

// RealIndex maps a node to its position in the base graph.
func (g *ZigZagGraph[H]) RealIndex(node uint64) uint64 {
	if g.reversed {
		return g.Size() - 1 - node
	}
	return node
}

// Correspondent returns the node the i-th expansion edge of node connects
// to. In the reversed direction the inverse permutation is used, so an edge
// u -> v of the forward graph shows up as v -> u.
func (g *ZigZagGraph[H]) Correspondent(node uint64, i uint32) uint64 {
	exp := uint64(g.expansionDegree)
	n := g.Size() * exp
	a := node*exp + uint64(i)

	var transformed uint64
	if g.reversed {
		transformed = feistel.InvertPermute(n, a, g.keys, g.precomputed)
	} else {
		transformed = feistel.Permute(n, a, g.keys, g.precomputed)
	}
	return transformed / exp
}

// ExpandedParents returns the expansion parents of node that come strictly
// before it in the current direction.
func (g *ZigZagGraph[H]) ExpandedParents(node uint64) []uint64 {
	parents := make([]uint64, 0, g.expansionDegree)
	for i := uint32(0); i < g.expansionDegree; i++ {
		other := g.Correspondent(node, i)
		if (g.reversed && other > node) || (!g.reversed && other < node) {
			parents = append(parents, other)
		}
	}
	return parents
}

// Parents returns the sorted union of base and expansion parents of node,
// padded to Degree() with the first node of the current direction.
func (g *ZigZagGraph[H]) Parents(node uint64) ([]uint64, error) {
	if node >= g.Size() {
		return nil, errors.Wrapf(drgraph.ErrOutOfRange, "node %d, graph size %d", node, g.Size())
	}

	baseParents, err := g.base.Parents(g.RealIndex(node))
	if err != nil {
		return nil, err
	}

	degree := int(g.Degree())
	parents := make([]uint64, 0, degree)
	for _, p := range baseParents {
		parents = append(parents, g.RealIndex(p))
	}
	parents = append(parents, g.ExpandedParents(node)...)

	pad := uint64(0)
	if g.reversed {
		pad = g.Size() - 1
	}
	for len(parents) < degree {
		parents = append(parents, pad)
	}

	sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })
	return parents, nil
}

// MerkleTree builds the inclusion tree over one leaf per node of data.
func (g *ZigZagGraph[H]) MerkleTree(data []byte) (*merkle.Tree[H], error) {
	return drgraph.BuildTree[H](g.Size(), data)
}
