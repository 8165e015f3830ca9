package hasher

import (
	"github.com/minio/sha256-simd"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
)

// Sha256 is SHA-256 with its output trimmed into the field.
type Sha256 struct{}

var _ Hasher = Sha256{}

func (Sha256) Name() string { return "sha256" }

func (Sha256) Node(left, right fr32.Domain) fr32.Domain {
	var buf [2 * fr32.NodeSize]byte
	copy(buf[:fr32.NodeSize], left[:])
	copy(buf[fr32.NodeSize:], right[:])
	return fr32.Trim(sha256.Sum256(buf[:]))
}

func (Sha256) Digest(data []byte) fr32.Domain {
	return fr32.Trim(sha256.Sum256(data))
}
