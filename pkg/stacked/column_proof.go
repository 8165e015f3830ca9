package stacked

import (
	"github.com/pkg/errors"

	"github.com/filecoin-project/go-storage-proofs/pkg/encoding"
	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
	"github.com/filecoin-project/go-storage-proofs/pkg/util/parallel"
)

// ColumnProof binds a full column to the tree C root at the column's index.
type ColumnProof[H hasher.Hasher] struct {
	Column         Column[H]    `cbor:"column"`
	InclusionProof merkle.Proof `cbor:"inclusion_proof"`
}

// ColumnHash is the commitment of the proven column.
func (cp *ColumnProof[H]) ColumnHash() fr32.Domain {
	return cp.Column.Hash()
}

// Verify checks the proof opens the column's commitment at its index under
// root, and that the column has the expected number of layers.
func (cp *ColumnProof[H]) Verify(root fr32.Domain, layers int) error {
	if len(cp.Column.Rows) != layers {
		return errors.Errorf("column %d has %d rows, expected %d", cp.Column.Index, len(cp.Column.Rows), layers)
	}
	if cp.InclusionProof.Root != root {
		return errors.Errorf("column %d proof is against root %s, expected %s",
			cp.Column.Index, cp.InclusionProof.Root, root)
	}
	if cp.InclusionProof.Leaf != cp.ColumnHash() {
		return errors.Errorf("column %d hash does not match proven leaf", cp.Column.Index)
	}
	if idx := cp.InclusionProof.PathIndex(merkle.BinaryArity); idx != uint64(cp.Column.Index) {
		return errors.Errorf("column proof opens index %d, expected %d", idx, cp.Column.Index)
	}
	if !merkle.Verify[H](&cp.InclusionProof) {
		return errors.Errorf("invalid inclusion proof for column %d", cp.Column.Index)
	}
	return nil
}

// VerifyColumnProofs checks every proof against root on at most workers
// goroutines. All failures are reported, not only the first one.
func VerifyColumnProofs[H hasher.Hasher](proofs []*ColumnProof[H], root fr32.Domain, layers int, workers int) error {
	p := parallel.NewPar(workers)
	for _, cp := range proofs {
		cp := cp
		p.Go(func() error {
			return cp.Verify(root, layers)
		})
	}
	if err := p.Wait(); err != nil {
		log.Warnw("column proofs rejected", "proofs", len(proofs), "err", err)
		return err
	}
	return nil
}

// Bytes returns the CBOR encoding of the proof.
func (cp *ColumnProof[H]) Bytes() ([]byte, error) {
	return encoding.Encode(cp)
}

// DecodeColumnProof decodes a proof produced by ColumnProof.Bytes.
func DecodeColumnProof[H hasher.Hasher](raw []byte) (*ColumnProof[H], error) {
	var cp ColumnProof[H]
	if err := encoding.Decode(raw, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}
