package drgraph

import (
	"math/bits"
	"sort"

	"github.com/docker/go-units"
	"github.com/pkg/errors"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
)

// bucketDrawsPerParent bounds bucket sampling before parent selection falls
// back to uniform rejection sampling.
const bucketDrawsPerParent = 16

// BucketGraph is the base depth robust graph. Parents of node i >= degree are
// chosen with bucket sampling, which favours short back edges at every scale
// and yields depth robustness with high probability.
type BucketGraph[H hasher.Hasher] struct {
	nodes  uint64
	degree uint32
	seed   [SeedSize]byte
}

var _ Graph = (*BucketGraph[hasher.Sha256])(nil)

// New creates a base graph. Bucket graphs have no expansion edges, so
// expansionDegree must be zero; layered graphs add them on top.
func New[H hasher.Hasher](nodes uint64, baseDegree, expansionDegree uint32, seed [SeedSize]byte) (*BucketGraph[H], error) {
	if expansionDegree != 0 {
		return nil, errors.Wrap(ErrInvalidParams, "bucket graph does not support expansion edges")
	}
	if err := ValidateParams(nodes, baseDegree, expansionDegree); err != nil {
		return nil, err
	}

	var h H
	log.Debugw("new bucket graph", "nodes", nodes, "degree", baseDegree, "hasher", h.Name(),
		"size", units.BytesSize(float64(nodes*fr32.NodeSize)))

	return &BucketGraph[H]{
		nodes:  nodes,
		degree: baseDegree,
		seed:   seed,
	}, nil
}

func (g *BucketGraph[H]) Size() uint64 { return g.nodes }

func (g *BucketGraph[H]) Degree() uint32 { return g.degree }

func (g *BucketGraph[H]) Seed() [SeedSize]byte { return g.seed }

// Parents returns the sorted parents of node. Nodes in the bootstrap region
// (node < degree) get a seed derived permutation of [0, degree); every other
// node gets degree distinct parents strictly below it.
func (g *BucketGraph[H]) Parents(node uint64) ([]uint64, error) {
	if node >= g.nodes {
		return nil, errors.Wrapf(ErrOutOfRange, "node %d, graph size %d", node, g.nodes)
	}

	m := uint64(g.degree)
	rng := newNodeRNG(g.seed, node)
	if node < m {
		return bootstrapParents(rng, m), nil
	}
	return sampleParents(rng, node, m)
}

// MerkleTree builds the inclusion tree over one NodeSize leaf per node.
func (g *BucketGraph[H]) MerkleTree(data []byte) (*merkle.Tree[H], error) {
	return BuildTree[H](g.nodes, data)
}

func bootstrapParents(rng *nodeRNG, m uint64) []uint64 {
	parents := make([]uint64, m)
	for i := range parents {
		parents[i] = uint64(i)
	}
	// Fisher-Yates
	for i := m - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		parents[i], parents[j] = parents[j], parents[i]
	}
	return parents
}

func sampleParents(rng *nodeRNG, node, m uint64) ([]uint64, error) {
	if m > node {
		return nil, errors.Wrapf(ErrDegreeTooLarge, "node %d cannot have %d distinct parents", node, m)
	}

	parents := make([]uint64, 0, m)
	seen := make(map[uint64]struct{}, m)
	add := func(p uint64) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		parents = append(parents, p)
	}

	for draws := uint64(0); uint64(len(parents)) < m && draws < m*bucketDrawsPerParent; draws++ {
		add(bucketSample(rng, node, m, uint64(len(parents))))
	}
	for uint64(len(parents)) < m {
		add(rng.Intn(node))
	}

	sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })
	return parents, nil
}

// bucketSample draws one back edge for the k-th meta node of node: pick a
// bucket j uniformly among log2(node*m) scales, then a back distance within
// [2^j, 2^(j+1)] of the meta node, and map the meta node back to its node.
func bucketSample(rng *nodeRNG, node, m, k uint64) uint64 {
	meta := node*m + k
	logi := uint64(bits.Len64(node*m) - 1)
	if logi == 0 {
		logi = 1
	}
	j := rng.Intn(logi)

	jj := meta
	if hi := uint64(1) << (j + 1); hi < jj {
		jj = hi
	}
	lo := jj >> 1
	if lo < 2 {
		lo = 2
	}
	if jj < lo {
		return 0
	}
	backDist := lo + rng.Intn(jj-lo+1)

	out := (meta - backDist) / m
	if out >= node {
		// self reference, point at the previous node instead.
		out = node - 1
	}
	return out
}

// BuildTree builds the inclusion tree over data holding one NodeSize leaf per
// node of a graph with the given node count.
func BuildTree[H hasher.Hasher](nodes uint64, data []byte) (*merkle.Tree[H], error) {
	if uint64(len(data)) != nodes*fr32.NodeSize {
		return nil, errors.Wrapf(ErrDataSize, "got %d bytes for %d nodes", len(data), nodes)
	}
	return merkle.FromData[H](data)
}
