package transforms

import (
	"gorgonia.org/tensor"

	"github.com/nbaohan713/vision/datapoint"
)

// ResolveScope decides, per leaf, whether the current call transforms it.
//
// Typed leaves (images, videos, masks, bounding boxes) are always in scope
// and Other leaves never are. Plain tensors follow the precedence rule: when
// typed leaves are present, only the first plain tensor in flattening order
// is assumed to be the transformable subject, and every later plain tensor
// passes through untouched rather than being silently mutated. When no typed
// leaf is present, every plain tensor is in scope.
//
// A plain tensor is only eligible at all if it carries a spatial size, i.e.
// has at least two dimensions. One-dimensional tensors (labels, scores,
// ids) always pass through.
//
// The returned slice preserves leaf order. Zero leaves yield a zero-length
// scope, never an error.
func ResolveScope(leaves []Leaf) []bool {
	hasTyped := false
	for _, leaf := range leaves {
		if leaf.Kind.IsTyped() {
			hasTyped = true
			break
		}
	}

	inScope := make([]bool, len(leaves))
	firstPlainTaken := false
	for i, leaf := range leaves {
		switch {
		case leaf.Kind.IsTyped():
			inScope[i] = true
		case leaf.Kind == datapoint.KindPlain && spatialPlain(leaf.Value):
			if !hasTyped {
				inScope[i] = true
			} else if !firstPlainTaken {
				inScope[i] = true
				firstPlainTaken = true
			}
		}
	}
	return inScope
}

func spatialPlain(v any) bool {
	d, ok := v.(*tensor.Dense)
	return ok && d.Dims() >= 2
}
