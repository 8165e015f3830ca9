// Package por is the proof of retrievability sub-scheme: a single leaf and
// its inclusion path under a commitment.
package por

import (
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
)

// PublicParams describe the tree a challenge is answered against.
type PublicParams struct {
	// Leaves is the number of leaves of the tree.
	Leaves uint64
	// Private commitments are bound by the circuit instead of being public inputs.
	Private bool
}

// PublicInputs select the challenged leaf.
type PublicInputs struct {
	// Commitment is the tree root, set iff the scheme is public.
	Commitment *fr32.Domain
	Challenge  uint64
}

// DataProof is a challenged value and its inclusion path.
type DataProof struct {
	Proof merkle.Proof `cbor:"proof"`
	Data  fr32.Domain  `cbor:"data"`
}

// BlockSize is the number of public inputs GeneratePublicInputs emits.
func BlockSize(private bool) int {
	if private {
		return 1
	}
	return 2
}

// GeneratePublicInputs lays out the public inputs of one inclusion proof:
// the packed path index followed, in public mode, by the commitment.
func GeneratePublicInputs(pub PublicInputs, pp PublicParams) ([]fr32.Domain, error) {
	if pub.Challenge >= pp.Leaves {
		return nil, xerrors.Errorf("challenge %d out of range for %d leaves", pub.Challenge, pp.Leaves)
	}
	if (pub.Commitment == nil) != pp.Private {
		if pp.Private {
			return nil, xerrors.New("commitment must be unset for private proofs")
		}
		return nil, xerrors.New("commitment required for public proofs")
	}

	inputs := make([]fr32.Domain, 0, BlockSize(pp.Private))
	inputs = append(inputs, fr32.FromUint64(pub.Challenge))
	if pub.Commitment != nil {
		inputs = append(inputs, *pub.Commitment)
	}
	return inputs, nil
}

// Prove opens the challenged leaf of tree.
func Prove[H hasher.Hasher](tree *merkle.Tree[H], challenge uint64) (*DataProof, error) {
	p, err := tree.GenProof(challenge)
	if err != nil {
		return nil, xerrors.Errorf("failed to open challenge %d: %w", challenge, err)
	}
	return &DataProof{Proof: *p, Data: p.Leaf}, nil
}

// Verify checks dp proves its value at challenge under root with a path of
// pathLen levels.
func Verify[H hasher.Hasher](dp *DataProof, root fr32.Domain, challenge uint64, pathLen int) error {
	if err := dp.Proof.ValidateShape(pathLen, merkle.BinaryArity); err != nil {
		return xerrors.Errorf("challenge %d: %w", challenge, err)
	}
	if dp.Proof.Root != root {
		return xerrors.Errorf("challenge %d: proof root does not match commitment", challenge)
	}
	if dp.Proof.Leaf != dp.Data {
		return xerrors.Errorf("challenge %d: proven leaf does not match data", challenge)
	}
	if idx := dp.Proof.PathIndex(merkle.BinaryArity); idx != challenge {
		return xerrors.Errorf("challenge %d: path opens index %d", challenge, idx)
	}
	if !merkle.Verify[H](&dp.Proof) {
		return xerrors.Errorf("challenge %d: invalid inclusion path", challenge)
	}
	return nil
}
