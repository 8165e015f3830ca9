package gadgets

import (
	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
	"github.com/filecoin-project/go-storage-proofs/pkg/util/chk"
)

// AllocatedNum is an allocated variable together with its witness value,
// which is nil in blank circuits.
type AllocatedNum struct {
	Variable
	value *fr32.Domain
}

// AllocNum allocates a private value.
func AllocNum(cs ConstraintSystem, name string, value *fr32.Domain) (AllocatedNum, error) {
	v, err := cs.Alloc(name, assignment(value))
	if err != nil {
		return AllocatedNum{}, err
	}
	return AllocatedNum{Variable: v, value: value}, nil
}

// Value returns the witness value.
func (n AllocatedNum) Value() (fr32.Domain, error) {
	return assignment(n.value)()
}

// Inputize exposes n as a public input.
func (n AllocatedNum) Inputize(cs ConstraintSystem, name string) (AllocatedNum, error) {
	v, err := cs.AllocInput(name, n.Value)
	if err != nil {
		return AllocatedNum{}, err
	}
	in := AllocatedNum{Variable: v, value: n.value}
	cs.Enforce(name+"/enforce", func() (bool, error) {
		return equal(n, in)
	})
	return in, nil
}

func assignment(value *fr32.Domain) func() (fr32.Domain, error) {
	return func() (fr32.Domain, error) {
		if value == nil {
			return fr32.Domain{}, ErrAssignmentMissing
		}
		return *value, nil
	}
}

func equal(a, b AllocatedNum) (bool, error) {
	av, err := a.Value()
	if err != nil {
		return false, err
	}
	bv, err := b.Value()
	if err != nil {
		return false, err
	}
	return av == bv, nil
}

// Root is a tree root that is either a plain value, allocated on use, or a
// variable allocated earlier and shared between gadgets.
type Root struct {
	val *fr32.Domain
	num *AllocatedNum
}

// RootVal creates a root from a (possibly absent) value.
func RootVal(v *fr32.Domain) Root {
	return Root{val: v}
}

// RootVar creates a root from an allocated variable.
func RootVar(n AllocatedNum) Root {
	return Root{num: &n}
}

// Allocated returns the root variable, allocating it in cs when needed.
func (r Root) Allocated(cs ConstraintSystem) (AllocatedNum, error) {
	if r.num != nil {
		return *r.num, nil
	}
	return AllocNum(cs, "num", r.val)
}

// PathElement is one level of an inclusion path in a circuit: the siblings
// and the position, nil when unknown.
type PathElement struct {
	Hashes []*fr32.Domain
	Index  *uint
}

// AuthPath is an inclusion path as witnessed by a circuit.
type AuthPath []PathElement

// AuthPathFromProof converts a proof path into witness form.
func AuthPathFromProof(p *merkle.Proof) AuthPath {
	path := make(AuthPath, len(p.Path))
	for i, el := range p.Path {
		hashes := make([]*fr32.Domain, len(el.Hashes))
		for j := range el.Hashes {
			h := el.Hashes[j]
			hashes[j] = &h
		}
		idx := el.Index
		path[i] = PathElement{Hashes: hashes, Index: &idx}
	}
	return path
}

// BlankAuthPath is an AuthPath of the given shape with every value absent.
func BlankAuthPath(pathLen, arity int) AuthPath {
	chk.True(arity >= 2, "arity %d must be at least 2", arity)
	path := make(AuthPath, pathLen)
	for i := range path {
		path[i] = PathElement{Hashes: make([]*fr32.Domain, arity-1)}
	}
	return path
}

// PathIndex packs the path positions into the leaf index.
func (ap AuthPath) PathIndex(arity int) (uint64, error) {
	var idx, scale uint64 = 0, 1
	for _, el := range ap {
		if el.Index == nil {
			return 0, ErrAssignmentMissing
		}
		idx += uint64(*el.Index) * scale
		scale *= uint64(arity)
	}
	return idx, nil
}
