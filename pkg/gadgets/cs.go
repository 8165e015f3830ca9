// Package gadgets holds the witness containers and constraint system
// plumbing circuits are synthesised against.
//
// The succinct proof backend is an external collaborator. A ConstraintSystem
// here records what a circuit allocates and enforces, in order, so the shape
// of a circuit (and the public inputs it binds) can be compared and checked
// without an arithmetisation.
package gadgets

import (
	"strings"

	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
)

// ErrAssignmentMissing is returned when a witness value is requested from a
// blank circuit.
var ErrAssignmentMissing = xerrors.New("assignment missing")

// Variable references an allocated value.
type Variable struct {
	Index int
	Input bool
}

// ConstraintSystem receives allocations and constraints from a circuit.
// Value and condition callbacks are only evaluated by systems that need
// witness values, so blank circuits can be synthesised too.
type ConstraintSystem interface {
	// AllocInput allocates a public input.
	AllocInput(name string, value func() (fr32.Domain, error)) (Variable, error)
	// Alloc allocates a private (auxiliary) value.
	Alloc(name string, value func() (fr32.Domain, error)) (Variable, error)
	// Enforce adds a constraint that holds iff satisfied returns true.
	Enforce(name string, satisfied func() (bool, error))
	// Namespace returns a view of the system prefixing every name.
	Namespace(name string) ConstraintSystem
}

// Kind of a recorded entry.
type Kind int

// Entry kinds.
const (
	KindInput Kind = iota
	KindAux
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindAux:
		return "aux"
	default:
		return "constraint"
	}
}

// Entry is one allocation or constraint in synthesis order.
type Entry struct {
	Kind Kind
	Name string
}

func (e Entry) String() string {
	return e.Kind.String() + " " + e.Name
}

type recorder interface {
	record(kind Kind, name string, value func() (fr32.Domain, error)) (Variable, error)
	enforce(name string, satisfied func() (bool, error))
}

// namespaced prefixes names before handing them to the recorder.
type namespaced struct {
	rec    recorder
	prefix []string
}

func (ns namespaced) path(name string) string {
	if len(ns.prefix) == 0 {
		return name
	}
	return strings.Join(append(append([]string{}, ns.prefix...), name), "/")
}

func (ns namespaced) AllocInput(name string, value func() (fr32.Domain, error)) (Variable, error) {
	return ns.rec.record(KindInput, ns.path(name), value)
}

func (ns namespaced) Alloc(name string, value func() (fr32.Domain, error)) (Variable, error) {
	return ns.rec.record(KindAux, ns.path(name), value)
}

func (ns namespaced) Enforce(name string, satisfied func() (bool, error)) {
	ns.rec.enforce(ns.path(name), satisfied)
}

func (ns namespaced) Namespace(name string) ConstraintSystem {
	return namespaced{rec: ns.rec, prefix: append(append([]string{}, ns.prefix...), name)}
}
