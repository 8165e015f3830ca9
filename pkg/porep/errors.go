// Package porep holds what every proof of replication scheme shares.
package porep

import "golang.org/x/xerrors"

// Consistency errors raised while assembling proofs.
var (
	// ErrMissingReplicaID is returned when public inputs carry no replica id.
	ErrMissingReplicaID = xerrors.New("missing replica id")
	// ErrInconsistentPrivacy is returned when the presence of public
	// commitments disagrees with the scheme's privacy setting.
	ErrInconsistentPrivacy = xerrors.New("inconsistent private state")
	// ErrTooManyChallenges is returned when a proof answers more challenges
	// than the scheme is configured for.
	ErrTooManyChallenges = xerrors.New("too many challenges")
	// ErrCountMismatch is returned when per challenge proof parts disagree in number.
	ErrCountMismatch = xerrors.New("mismatched proof part counts")
	// ErrMissingPrivateInputs is returned when a private circuit is built
	// without its commitments.
	ErrMissingPrivateInputs = xerrors.New("private commitments not supplied")
)
