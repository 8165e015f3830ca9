package zigzag

import (
	"github.com/docker/go-units"
	"github.com/pkg/errors"

	"github.com/filecoin-project/go-storage-proofs/pkg/drgraph"
	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
)

// ErrDataSize is returned when tree data does not hold exactly one node per
// graph node.
var ErrDataSize = drgraph.ErrDataSize

// LayeredGraph is the full multi layer dependency structure. Even layers use
// the forward graph, odd layers the reversed one.
type LayeredGraph[H hasher.Hasher] struct {
	forward  *ZigZagGraph[H]
	reversed *ZigZagGraph[H]
	layers   int
}

// New creates a layered graph of the given number of layers.
func New[H hasher.Hasher](nodes uint64, baseDegree, expansionDegree uint32, layers int, seed [drgraph.SeedSize]byte) (*LayeredGraph[H], error) {
	if layers <= 0 {
		return nil, errors.Wrapf(drgraph.ErrInvalidParams, "layer count %d must be positive", layers)
	}
	forward, err := NewZigZag[H](nodes, baseDegree, expansionDegree, seed)
	if err != nil {
		return nil, err
	}

	var h H
	log.Debugw("new layered graph", "nodes", nodes, "baseDegree", baseDegree,
		"expansionDegree", expansionDegree, "layers", layers, "hasher", h.Name(),
		"layerSize", units.BytesSize(float64(nodes*fr32.NodeSize)))

	return &LayeredGraph[H]{
		forward:  forward,
		reversed: forward.ZigZag(),
		layers:   layers,
	}, nil
}

func (lg *LayeredGraph[H]) Size() uint64 { return lg.forward.Size() }

func (lg *LayeredGraph[H]) Degree() uint32 { return lg.forward.Degree() }

func (lg *LayeredGraph[H]) Seed() [drgraph.SeedSize]byte { return lg.forward.Seed() }

// Layers is the number of layers.
func (lg *LayeredGraph[H]) Layers() int { return lg.layers }

// Layer returns the graph used to encode layer.
func (lg *LayeredGraph[H]) Layer(layer int) (*ZigZagGraph[H], error) {
	if layer < 0 || layer >= lg.layers {
		return nil, errors.Wrapf(drgraph.ErrOutOfRange, "layer %d, layer count %d", layer, lg.layers)
	}
	if layer%2 == 0 {
		return lg.forward, nil
	}
	return lg.reversed, nil
}

// Parents returns the parents of node when encoding layer.
func (lg *LayeredGraph[H]) Parents(node uint64, layer int) ([]uint64, error) {
	g, err := lg.Layer(layer)
	if err != nil {
		return nil, err
	}
	return g.Parents(node)
}

// MerkleTree builds the inclusion tree over raw layer data.
func (lg *LayeredGraph[H]) MerkleTree(data []byte) (*merkle.Tree[H], error) {
	return drgraph.BuildTree[H](lg.Size(), data)
}
