// Package structure flattens arbitrarily nested samples into an ordered
// sequence of leaves plus a rebuild plan, and reconstructs an isomorphic
// sample from a new leaf sequence.
//
// A sample nests two container shapes: ordered sequences ([]any) and
// key-value mappings (map[string]any). Every other value, including nil and
// the tagged datapoint wrappers, is a leaf. Map keys are visited in sorted
// order so the leaf sequence, and anything sampled from it downstream, is
// deterministic for a given sample.
package structure

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrStructureMismatch signals that a rebuild was attempted with a leaf count
// that disagrees with the recorded plan. It indicates a programming defect in
// a transform (leaves were added or removed), not a user-recoverable state.
var ErrStructureMismatch = errors.New("leaf sequence does not match rebuild spec")

type specKind uint8

const (
	leafSpec specKind = iota
	seqSpec
	mapSpec
)

// Spec is the rebuild plan produced by Flatten. It records, for every
// container boundary, whether it was a sequence or a mapping, its length or
// key set, and the nesting of its children.
type Spec struct {
	kind     specKind
	keys     []string // mapSpec only, sorted
	children []*Spec
	leaves   int
}

// LeafCount returns the number of leaves the spec was built from.
func (s *Spec) LeafCount() int {
	return s.leaves
}

// Flatten descends the sample and returns its leaves in visiting order along
// with the plan needed to invert the operation. A bare scalar flattens to a
// single leaf. Flatten is total; it cannot fail.
func Flatten(sample any) ([]any, *Spec) {
	var leaves []any
	spec := flattenInto(sample, &leaves)
	return leaves, spec
}

func flattenInto(v any, out *[]any) *Spec {
	switch c := v.(type) {
	case []any:
		sp := &Spec{kind: seqSpec, children: make([]*Spec, 0, len(c))}
		for _, el := range c {
			child := flattenInto(el, out)
			sp.children = append(sp.children, child)
			sp.leaves += child.leaves
		}
		return sp
	case map[string]any:
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sp := &Spec{kind: mapSpec, keys: keys, children: make([]*Spec, 0, len(keys))}
		for _, k := range keys {
			child := flattenInto(c[k], out)
			sp.children = append(sp.children, child)
			sp.leaves += child.leaves
		}
		return sp
	default:
		*out = append(*out, v)
		return &Spec{kind: leafSpec, leaves: 1}
	}
}

// Unflatten reconstructs a sample with the same container shape the spec was
// recorded from, substituting leaves for the original values in order. The
// leaf count must match the spec exactly; a disagreement returns an error
// wrapping ErrStructureMismatch.
func Unflatten(spec *Spec, leaves []any) (any, error) {
	if spec == nil {
		return nil, errors.New("rebuild spec cannot be nil")
	}
	if len(leaves) != spec.leaves {
		return nil, errors.Wrapf(ErrStructureMismatch, "got %d leaves, spec records %d", len(leaves), spec.leaves)
	}
	sample, _ := rebuild(spec, leaves)
	return sample, nil
}

func rebuild(sp *Spec, leaves []any) (any, []any) {
	switch sp.kind {
	case seqSpec:
		out := make([]any, 0, len(sp.children))
		for _, child := range sp.children {
			var v any
			v, leaves = rebuild(child, leaves)
			out = append(out, v)
		}
		return out, leaves
	case mapSpec:
		out := make(map[string]any, len(sp.keys))
		for i, k := range sp.keys {
			var v any
			v, leaves = rebuild(sp.children[i], leaves)
			out[k] = v
		}
		return out, leaves
	default:
		return leaves[0], leaves[1:]
	}
}
