package stacked

import (
	"context"

	"github.com/pkg/errors"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
	"github.com/filecoin-project/go-storage-proofs/pkg/metrics"
	"github.com/filecoin-project/go-storage-proofs/pkg/util/parallel"
)

var (
	columnsHashed = metrics.NewInt64Counter("stacked/columns_hashed", "Number of columns hashed into tree C leaves")
	treeCTimer    = metrics.NewTimerMs("stacked/tree_c_ms", "Duration of building tree C")
)

// ColumnsFromLayers transposes encoded layers into one column per node.
// layers[k] holds every node's value at layer k+1.
func ColumnsFromLayers[H hasher.Hasher](layers [][]fr32.Domain) ([]*Column[H], error) {
	if len(layers) == 0 {
		return nil, errors.New("no layers to build columns from")
	}
	nodes := len(layers[0])
	for i, l := range layers {
		if len(l) != nodes {
			return nil, errors.Errorf("layer %d has %d nodes, layer 1 has %d", i+1, len(l), nodes)
		}
	}

	cols := make([]*Column[H], nodes)
	for i := range cols {
		col := WithCapacity[H](uint32(i), len(layers))
		for _, l := range layers {
			col.Rows = append(col.Rows, l[i])
		}
		cols[i] = col
	}
	return cols, nil
}

// HashColumns hashes every column on up to workers goroutines. Hashes are
// returned in column order.
func HashColumns[H hasher.Hasher](ctx context.Context, cols []*Column[H], workers int) ([]fr32.Domain, error) {
	hashes, err := parallel.Map(len(cols), workers, func(i int) (fr32.Domain, error) {
		if len(cols[i].Rows) == 0 {
			return fr32.Domain{}, errors.Errorf("column %d is empty", cols[i].Index)
		}
		return cols[i].Hash(), nil
	})
	if err != nil {
		return nil, err
	}
	columnsHashed.Inc(ctx, int64(len(cols)))
	return hashes, nil
}

// BuildTreeC builds the column commitment tree over encoded layers.
func BuildTreeC[H hasher.Hasher](ctx context.Context, layers [][]fr32.Domain, workers int) (*merkle.Tree[H], []*Column[H], error) {
	var h H
	ctx = metrics.WithHasher(ctx, h.Name())

	sw := treeCTimer.Start(ctx)
	defer sw.Stop(ctx)

	cols, err := ColumnsFromLayers[H](layers)
	if err != nil {
		return nil, nil, err
	}
	leaves, err := HashColumns(ctx, cols, workers)
	if err != nil {
		return nil, nil, err
	}
	tree, err := merkle.Build[H](leaves)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build tree C")
	}

	log.Debugw("built tree C", "columns", len(cols), "layers", len(layers), "root", tree.Root())
	return tree, cols, nil
}
