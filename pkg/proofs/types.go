// Package proofs holds the commitment types and scheme contracts shared by
// the proof of replication schemes.
package proofs

import (
	commcid "github.com/filecoin-project/go-fil-commcid"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
)

// CommitmentBytesLen is the number of bytes in a CommR and a CommD.
const CommitmentBytesLen = fr32.NodeSize

// CommR is the merkle root of the replicated data. It is an output of the
// sector sealing (PoRep) process.
type CommR [CommitmentBytesLen]byte

// CommD is the merkle root of the original user data. It is an output of the
// sector sealing (PoRep) process.
type CommD [CommitmentBytesLen]byte

// CID returns the replica commitment CID.
func (c CommR) CID() (cid.Cid, error) {
	return commcid.ReplicaCommitmentV1ToCID(c[:])
}

// Domain returns the commitment as a field element.
func (c CommR) Domain() fr32.Domain { return fr32.Domain(c) }

// CID returns the data commitment CID.
func (c CommD) CID() (cid.Cid, error) {
	return commcid.DataCommitmentV1ToCID(c[:])
}

// Domain returns the commitment as a field element.
func (c CommD) Domain() fr32.Domain { return fr32.Domain(c) }

// CommRFromCID recovers a replica commitment from its CID.
func CommRFromCID(c cid.Cid) (CommR, error) {
	raw, err := commcid.CIDToReplicaCommitmentV1(c)
	if err != nil {
		return CommR{}, xerrors.Errorf("not a replica commitment: %w", err)
	}
	return CommR(toCommitment(raw)), nil
}

// CommDFromCID recovers a data commitment from its CID.
func CommDFromCID(c cid.Cid) (CommD, error) {
	raw, err := commcid.CIDToDataCommitmentV1(c)
	if err != nil {
		return CommD{}, xerrors.Errorf("not a data commitment: %w", err)
	}
	return CommD(toCommitment(raw)), nil
}

func toCommitment(raw []byte) [CommitmentBytesLen]byte {
	var out [CommitmentBytesLen]byte
	copy(out[:], raw)
	return out
}
