// Package hasher defines the hash capabilities trees and graphs are
// parameterised over.
//
// Implementations are zero-size types so they can be used as compile-time
// type parameters (merkle.Tree[hasher.Poseidon]) without any runtime cost.
package hasher

import (
	"github.com/pkg/errors"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
)

// Hasher is a hash function over field elements.
type Hasher interface {
	// Name identifies the hasher in configuration and parameter names.
	Name() string
	// Node compresses two tree children into their parent.
	Node(left, right fr32.Domain) fr32.Domain
	// Digest hashes arbitrary bytes into the field.
	Digest(data []byte) fr32.Domain
}

// ByName returns the hasher configured under name.
func ByName(name string) (Hasher, error) {
	switch name {
	case Sha256{}.Name():
		return Sha256{}, nil
	case Blake2s{}.Name():
		return Blake2s{}, nil
	case Poseidon{}.Name():
		return Poseidon{}, nil
	default:
		return nil, errors.Errorf("unknown hasher %q", name)
	}
}
