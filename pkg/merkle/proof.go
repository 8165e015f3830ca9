package merkle

import (
	"github.com/pkg/errors"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
)

// ErrPathShape is returned when a proof does not have the depth or arity
// the tree configuration demands.
var ErrPathShape = errors.New("inclusion path shape mismatch")

// PathElement is one level of an inclusion path: the siblings of the node at
// this level and the node's position among its siblings.
type PathElement struct {
	Hashes []fr32.Domain `cbor:"hashes"`
	Index  uint          `cbor:"index"`
}

// Proof proves that Leaf is included under Root.
type Proof struct {
	Leaf fr32.Domain   `cbor:"leaf"`
	Root fr32.Domain   `cbor:"root"`
	Path []PathElement `cbor:"path"`
}

// ValidateShape checks the proof has pathLen elements of the given arity.
func (p *Proof) ValidateShape(pathLen int, arity int) error {
	if len(p.Path) != pathLen {
		return errors.Wrapf(ErrPathShape, "path length %d, expected %d", len(p.Path), pathLen)
	}
	for i, el := range p.Path {
		if len(el.Hashes) != arity-1 {
			return errors.Wrapf(ErrPathShape, "level %d has %d siblings, expected %d", i, len(el.Hashes), arity-1)
		}
		if el.Index >= uint(arity) {
			return errors.Wrapf(ErrPathShape, "level %d index %d exceeds arity %d", i, el.Index, arity)
		}
	}
	return nil
}

// PathIndex reassembles the leaf index the path positions encode.
func (p *Proof) PathIndex(arity int) uint64 {
	var idx, scale uint64 = 0, 1
	for _, el := range p.Path {
		idx += uint64(el.Index) * scale
		scale *= uint64(arity)
	}
	return idx
}

// Verify recomputes the root from the leaf and the path using H. Proofs
// carrying values outside the field never verify.
func Verify[H hasher.Hasher](p *Proof) bool {
	if p == nil || p.ValidateShape(len(p.Path), BinaryArity) != nil || !p.canonical() {
		return false
	}

	var h H
	cur := p.Leaf
	for _, el := range p.Path {
		if el.Index == 0 {
			cur = h.Node(cur, el.Hashes[0])
		} else {
			cur = h.Node(el.Hashes[0], cur)
		}
	}
	return cur == p.Root
}

func (p *Proof) canonical() bool {
	if !p.Leaf.IsCanonical() || !p.Root.IsCanonical() {
		return false
	}
	for _, el := range p.Path {
		for _, h := range el.Hashes {
			if !h.IsCanonical() {
				return false
			}
		}
	}
	return true
}
