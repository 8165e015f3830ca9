package gadgets

import (
	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
)

// MetricCS counts allocations and constraints without evaluating any value.
type MetricCS struct {
	namespaced
	entries []Entry
	inputs  int
	aux     int
}

var _ ConstraintSystem = (*MetricCS)(nil)

// NewMetricCS creates an empty MetricCS.
func NewMetricCS() *MetricCS {
	cs := &MetricCS{}
	cs.namespaced = namespaced{rec: cs}
	return cs
}

func (cs *MetricCS) record(kind Kind, name string, _ func() (fr32.Domain, error)) (Variable, error) {
	cs.entries = append(cs.entries, Entry{Kind: kind, Name: name})
	if kind == KindInput {
		cs.inputs++
		return Variable{Index: cs.inputs - 1, Input: true}, nil
	}
	cs.aux++
	return Variable{Index: cs.aux - 1}, nil
}

func (cs *MetricCS) enforce(name string, _ func() (bool, error)) {
	cs.entries = append(cs.entries, Entry{Kind: KindConstraint, Name: name})
}

// NumInputs is the number of public inputs allocated.
func (cs *MetricCS) NumInputs() int { return cs.inputs }

// NumAux is the number of private values allocated.
func (cs *MetricCS) NumAux() int { return cs.aux }

// NumConstraints is the number of constraints enforced.
func (cs *MetricCS) NumConstraints() int {
	return len(cs.entries) - cs.inputs - cs.aux
}

// PrettyPrintList lists every entry in synthesis order.
func (cs *MetricCS) PrettyPrintList() []string {
	return prettyPrint(cs.entries)
}

func prettyPrint(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}
