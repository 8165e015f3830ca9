package gadgets

import (
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
)

// TestConstraintSystem evaluates every value and constraint as it is
// synthesised, recording the public inputs and the first unsatisfied
// constraint.
type TestConstraintSystem struct {
	namespaced
	entries       []Entry
	inputs        []fr32.Domain
	aux           []fr32.Domain
	unsatisfied   string
	numConstraint int
}

var _ ConstraintSystem = (*TestConstraintSystem)(nil)

// NewTestConstraintSystem creates an empty TestConstraintSystem.
func NewTestConstraintSystem() *TestConstraintSystem {
	cs := &TestConstraintSystem{}
	cs.namespaced = namespaced{rec: cs}
	return cs
}

func (cs *TestConstraintSystem) record(kind Kind, name string, value func() (fr32.Domain, error)) (Variable, error) {
	v, err := value()
	if err != nil {
		return Variable{}, xerrors.Errorf("%s: %w", name, err)
	}
	if !v.IsCanonical() {
		return Variable{}, xerrors.Errorf("%s: %w", name, fr32.ErrNotCanonical)
	}

	cs.entries = append(cs.entries, Entry{Kind: kind, Name: name})
	if kind == KindInput {
		cs.inputs = append(cs.inputs, v)
		return Variable{Index: len(cs.inputs) - 1, Input: true}, nil
	}
	cs.aux = append(cs.aux, v)
	return Variable{Index: len(cs.aux) - 1}, nil
}

func (cs *TestConstraintSystem) enforce(name string, satisfied func() (bool, error)) {
	cs.entries = append(cs.entries, Entry{Kind: KindConstraint, Name: name})
	cs.numConstraint++

	ok, err := satisfied()
	if (err != nil || !ok) && cs.unsatisfied == "" {
		cs.unsatisfied = name
	}
}

// Value returns the value assigned to v.
func (cs *TestConstraintSystem) Value(v Variable) fr32.Domain {
	if v.Input {
		return cs.inputs[v.Index]
	}
	return cs.aux[v.Index]
}

// IsSatisfied reports whether every enforced constraint held.
func (cs *TestConstraintSystem) IsSatisfied() bool {
	return cs.unsatisfied == ""
}

// WhichIsUnsatisfied names the first constraint that did not hold.
func (cs *TestConstraintSystem) WhichIsUnsatisfied() string {
	return cs.unsatisfied
}

// Inputs returns the public inputs in allocation order.
func (cs *TestConstraintSystem) Inputs() []fr32.Domain {
	return append([]fr32.Domain(nil), cs.inputs...)
}

// Verify reports whether the public inputs equal expected, position by position.
func (cs *TestConstraintSystem) Verify(expected []fr32.Domain) bool {
	if len(expected) != len(cs.inputs) {
		return false
	}
	for i := range expected {
		if expected[i] != cs.inputs[i] {
			return false
		}
	}
	return true
}

// NumInputs is the number of public inputs allocated.
func (cs *TestConstraintSystem) NumInputs() int { return len(cs.inputs) }

// NumAux is the number of private values allocated.
func (cs *TestConstraintSystem) NumAux() int { return len(cs.aux) }

// NumConstraints is the number of constraints enforced.
func (cs *TestConstraintSystem) NumConstraints() int { return cs.numConstraint }

// PrettyPrintList lists every entry in synthesis order.
func (cs *TestConstraintSystem) PrettyPrintList() []string {
	return prettyPrint(cs.entries)
}
