// Package drgraph generates depth robust graphs.
//
// Every graph is a pure function of its parameter tuple (node count, degree,
// seed): a verifier rebuilding the graph from public parameters sees exactly
// the parents the prover encoded against.
package drgraph

import (
	"crypto/rand"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
)

var log = logging.Logger("drgraph")

// SeedSize is the length of the public graph seed.
const SeedSize = 32

// Graph errors.
var (
	// ErrOutOfRange is returned for node (or layer) indices past the end of the graph.
	ErrOutOfRange = errors.New("node index out of range")
	// ErrDegreeTooLarge is returned when a node cannot have degree distinct parents.
	ErrDegreeTooLarge = errors.New("degree too large")
	// ErrInvalidParams is returned for malformed parameter tuples.
	ErrInvalidParams = errors.New("invalid graph parameters")
	// ErrDataSize is returned when tree data does not hold exactly one leaf per node.
	ErrDataSize = errors.New("data size does not match node count")
)

// Graph is the parent generation capability shared by every graph type.
type Graph interface {
	// Size is the number of nodes.
	Size() uint64
	// Degree is the number of parents every node has.
	Degree() uint32
	// Seed is the public seed the topology is derived from.
	Seed() [SeedSize]byte
	// Parents returns the Degree() parents of node.
	Parents(node uint64) ([]uint64, error)
}

// NewSeed draws a fresh random graph seed.
func NewSeed() [SeedSize]byte {
	var seed [SeedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(errors.Wrap(err, "failed to read seed randomness"))
	}
	return seed
}

// MerkleTreeDepth is the inclusion path length of a tree with one leaf
// per node of g.
func MerkleTreeDepth(g Graph, arity int) int {
	return merkle.PathLength(g.Size(), arity)
}

// ValidateParams checks a parameter tuple is usable: the graph has nodes, a
// positive base degree, and every node past the bootstrap region can draw
// baseDegree+expansionDegree distinct parents.
func ValidateParams(nodes uint64, baseDegree, expansionDegree uint32) error {
	if nodes == 0 {
		return errors.Wrap(ErrInvalidParams, "graph must have at least one node")
	}
	if baseDegree == 0 {
		return errors.Wrap(ErrInvalidParams, "base degree must be positive")
	}
	if uint64(baseDegree)+uint64(expansionDegree) >= nodes {
		return errors.Wrapf(ErrDegreeTooLarge, "degree %d+%d must be smaller than node count %d",
			baseDegree, expansionDegree, nodes)
	}
	return nil
}
