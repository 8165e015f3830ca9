package proofs

import (
	"context"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/gadgets"
)

// ProofScheme is a vanilla proof scheme.
type ProofScheme[SetupParams, PublicParams, PublicInputs, PrivateInputs, Proof any] interface {
	Setup(SetupParams) (PublicParams, error)
	Prove(PublicParams, PublicInputs, PrivateInputs) (Proof, error)
	// Verify returns false for well formed proofs that do not hold and an
	// error for malformed inputs.
	Verify(PublicParams, PublicInputs, Proof) (bool, error)
}

// Circuit is a witness that can be synthesised into a constraint system.
type Circuit interface {
	Synthesize(cs gadgets.ConstraintSystem) error
}

// CompoundProof turns vanilla proofs into succinct proof backend inputs.
// The public input vector and the circuit's public input allocations must
// agree position by position.
type CompoundProof[PublicParams, PublicInputs, ComponentPrivateInputs, Proof any, C Circuit] interface {
	GeneratePublicInputs(ctx context.Context, pub PublicInputs, pp PublicParams) ([]fr32.Domain, error)
	Circuit(ctx context.Context, pub PublicInputs, cpi ComponentPrivateInputs, proof Proof, pp PublicParams) (C, error)
	BlankCircuit(pp PublicParams) C
}
