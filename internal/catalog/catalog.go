// Package catalog defines the static registry of business data sources the
// assistant can draw context from.
//
// The registry is fixed configuration: descriptors are declared at startup
// and never mutated. Declaration order is meaningful — it is the
// deterministic order in which matched datasets appear in an answer's
// context, and the tie-break when a question matches several keyword groups.
package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownDataset indicates a lookup for a dataset that is not registered.
// This is a configuration or programmer error, not a runtime condition.
var ErrUnknownDataset = errors.New("unknown dataset")

// Kind discriminates how a dataset's raw bytes are interpreted.
type Kind string

const (
	// KindText is a plain-text document rendered verbatim (truncated).
	KindText Kind = "text"

	// KindTabular is a CSV dataset rendered as a bounded table.
	KindTabular Kind = "tabular"
)

// Descriptor describes one registered data source.
//
// Columns applies only to tabular datasets: when non-empty, the assembled
// context is projected onto exactly these columns. Keywords trigger
// selection of this dataset during classification; matching is
// case-insensitive and a single keyword may appear on several descriptors.
type Descriptor struct {
	Name     string
	StoreKey string
	Kind     Kind
	Columns  []string
	Keywords []string
}

// Registry is an ordered, read-only collection of descriptors.
//
// The zero value is not useful — use New or Default.
type Registry struct {
	ordered []Descriptor
	byName  map[string]Descriptor
}

// New builds a registry from the given descriptors, preserving their order.
// Duplicate names are rejected: a duplicate would make Resolve ambiguous.
func New(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{
		ordered: make([]Descriptor, 0, len(descriptors)),
		byName:  make(map[string]Descriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("descriptor with store key %q has no name", d.StoreKey)
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("duplicate dataset name %q", d.Name)
		}
		if d.Kind != KindText && d.Kind != KindTabular {
			return nil, fmt.Errorf("dataset %q has unknown kind %q", d.Name, d.Kind)
		}
		r.ordered = append(r.ordered, d)
		r.byName[d.Name] = d
	}
	return r, nil
}

// Resolve returns the descriptor registered under name.
func (r *Registry) Resolve(name string) (Descriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return d, nil
}

// All returns the descriptors in declaration order.
// The returned slice is a copy; callers may not mutate registry state.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered datasets.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// Default returns the FBC dataset registry: the two policy documents and the
// two operational metric sheets the assistant answers from.
func Default() *Registry {
	r, err := New(
		Descriptor{
			Name:     "policy_franchise",
			StoreKey: "policy_doc_1.txt",
			Kind:     KindText,
			Keywords: []string{"franchise", "policy", "operations", "reporting"},
		},
		Descriptor{
			Name:     "policy_conduct",
			StoreKey: "policy_doc_2.txt",
			Kind:     KindText,
			Keywords: []string{"conduct", "employee", "hr", "behavior"},
		},
		Descriptor{
			Name:     "metrics_sales",
			StoreKey: "franchise_sales.csv",
			Kind:     KindTabular,
			Columns:  []string{"Number", "Region", "MonthlySales"},
			Keywords: []string{"sales", "revenue", "franchise"},
		},
		Descriptor{
			Name:     "metrics_stores",
			StoreKey: "store_metrics.csv",
			Kind:     KindTabular,
			Keywords: []string{"store", "performance", "metrics"},
		},
	)
	if err != nil {
		// Default descriptors are compile-time constants; a failure here is
		// a programmer error.
		panic(err)
	}
	return r
}
