package hasher

import (
	"golang.org/x/crypto/blake2s"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
)

// Blake2s is BLAKE2s-256 with its output trimmed into the field.
type Blake2s struct{}

var _ Hasher = Blake2s{}

func (Blake2s) Name() string { return "blake2s" }

func (Blake2s) Node(left, right fr32.Domain) fr32.Domain {
	var buf [2 * fr32.NodeSize]byte
	copy(buf[:fr32.NodeSize], left[:])
	copy(buf[fr32.NodeSize:], right[:])
	return fr32.Trim(blake2s.Sum256(buf[:]))
}

func (Blake2s) Digest(data []byte) fr32.Domain {
	return fr32.Trim(blake2s.Sum256(data))
}
