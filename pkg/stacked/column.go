// Package stacked implements the column commitment of the layered replica.
//
// A column holds the encoded values of one node across every layer. The
// hashes of all columns are the leaves of tree C, so a single inclusion proof
// binds a node's whole encoding history.
package stacked

import (
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/filecoin-project/go-storage-proofs/pkg/encoding"
	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
	"github.com/filecoin-project/go-storage-proofs/pkg/util/chk"
)

var log = logging.Logger("stacked")

// Column is the encoded value of node Index at layers 1..len(Rows). Layer 0,
// the original data, lives in tree D and is never a row.
type Column[H hasher.Hasher] struct {
	Index uint32        `cbor:"index"`
	Rows  []fr32.Domain `cbor:"rows"`
}

// NewColumn creates a column from its rows.
func NewColumn[H hasher.Hasher](index uint32, rows []fr32.Domain) *Column[H] {
	return &Column[H]{Index: index, Rows: rows}
}

// WithCapacity creates an empty column with room for capacity rows.
func WithCapacity[H hasher.Hasher](index uint32, capacity int) *Column[H] {
	return NewColumn[H](index, make([]fr32.Domain, 0, capacity))
}

// Hash calculates the column commitment. A single row column is committed as
// the row itself.
func (c *Column[H]) Hash() fr32.Domain {
	if len(c.Rows) == 1 {
		return c.Rows[0]
	}
	return hasher.HashColumn(c.Rows)
}

// NodeAtLayer returns the encoded value at layer, counting from 1.
func (c *Column[H]) NodeAtLayer(layer int) fr32.Domain {
	chk.True(layer > 0, "layer must be greater than 0")
	return c.Rows[layer-1]
}

// IntoProof pairs the column with its inclusion proof in treeC.
func (c *Column[H]) IntoProof(treeC *merkle.Tree[H]) (*ColumnProof[H], error) {
	p, err := treeC.GenProof(uint64(c.Index))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate proof for column %d", c.Index)
	}
	return &ColumnProof[H]{Column: *c, InclusionProof: *p}, nil
}

// Bytes returns the CBOR encoding of the column.
func (c *Column[H]) Bytes() ([]byte, error) {
	return encoding.Encode(c)
}

// DecodeColumn decodes a column produced by Column.Bytes.
func DecodeColumn[H hasher.Hasher](raw []byte) (*Column[H], error) {
	var c Column[H]
	if err := encoding.Decode(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
