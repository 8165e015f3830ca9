package drg

import (
	"context"

	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/proofs"
)

// DrgPoRep is the vanilla scheme.
type DrgPoRep[H hasher.Hasher] struct{}

var _ proofs.ProofScheme[SetupParams, *PublicParams[hasher.Sha256], PublicInputs, PrivateInputs[hasher.Sha256], *Proof] = DrgPoRep[hasher.Sha256]{}

func (DrgPoRep[H]) Setup(sp SetupParams) (*PublicParams[H], error) {
	return Setup[H](sp)
}

func (DrgPoRep[H]) Prove(pp *PublicParams[H], pub PublicInputs, priv PrivateInputs[H]) (*Proof, error) {
	return Prove(pp, pub, priv)
}

func (DrgPoRep[H]) Verify(pp *PublicParams[H], pub PublicInputs, proof *Proof) (bool, error) {
	return Verify(pp, pub, proof)
}

// DrgPoRepCompound assembles DrgPoRep proofs for the succinct proof backend.
type DrgPoRepCompound[H hasher.Hasher] struct{}

var _ proofs.CompoundProof[*PublicParams[hasher.Sha256], PublicInputs, ComponentPrivateInputs, *Proof, *Circuit[hasher.Sha256]] = DrgPoRepCompound[hasher.Sha256]{}

func (DrgPoRepCompound[H]) GeneratePublicInputs(ctx context.Context, pub PublicInputs, pp *PublicParams[H]) ([]fr32.Domain, error) {
	return GeneratePublicInputs(ctx, pub, pp)
}

func (DrgPoRepCompound[H]) Circuit(ctx context.Context, pub PublicInputs, cpi ComponentPrivateInputs, proof *Proof, pp *PublicParams[H]) (*Circuit[H], error) {
	return NewCircuit(ctx, pub, cpi, proof, pp)
}

func (DrgPoRepCompound[H]) BlankCircuit(pp *PublicParams[H]) *Circuit[H] {
	return BlankCircuit(pp)
}

// CommRCommitment returns the replica commitment.
func (t *Tau) CommRCommitment() proofs.CommR { return proofs.CommR(t.CommR) }

// CommDCommitment returns the data commitment.
func (t *Tau) CommDCommitment() proofs.CommD { return proofs.CommD(t.CommD) }

// CIDs returns the data and replica commitment CIDs.
func (t *Tau) CIDs() (commD cid.Cid, commR cid.Cid, err error) {
	if commD, err = t.CommDCommitment().CID(); err != nil {
		return cid.Undef, cid.Undef, xerrors.Errorf("failed to encode CommD: %w", err)
	}
	if commR, err = t.CommRCommitment().CID(); err != nil {
		return cid.Undef, cid.Undef, xerrors.Errorf("failed to encode CommR: %w", err)
	}
	return commD, commR, nil
}
