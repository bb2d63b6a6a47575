// Package transforms implements the augmentation dispatch framework: samples
// of arbitrarily nested sequences and mappings are flattened, each leaf is
// classified, one parameter set is drawn per call, and the same parameters
// are applied to every leaf the scope rule selects. Container transforms
// compose, randomly apply, choose among, or reorder other transforms.
package transforms

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nbaohan713/vision/datapoint"
	"github.com/nbaohan713/vision/sampling"
	"github.com/nbaohan713/vision/structure"
)

// Transform is anything callable on a sample. Implementations must not
// mutate the input; leaves they do not touch must come back by identity.
type Transform interface {
	Apply(sample any) (any, error)
}

// Params is the parameter set sampled once per call and shared by every
// per-leaf application within that call. A nil set signals the whole call is
// a pass-through; an empty but non-nil set means the transform simply needs
// no parameters.
type Params map[string]any

// Leaf pairs a flattened value with its classification and its position in
// flattening order.
type Leaf struct {
	Value any
	Kind  datapoint.Kind
	Index int
}

// leafTransform is the contract a concrete transform fulfills to run through
// the shared dispatch loop: draw parameters from the in-scope leaves, then
// rewrite each in-scope leaf. transformLeaf is never called out of scope.
type leafTransform interface {
	getParams(src *sampling.Source, scoped []Leaf) (Params, error)
	transformLeaf(leaf Leaf, params Params) (any, error)
}

// sampleValidator lets a transform reject sample shapes it cannot interpret
// before any parameter is drawn.
type sampleValidator interface {
	validateSample(leaves []Leaf) error
}

// classifyLeaves tags every flattened value with its kind.
func classifyLeaves(values []any) []Leaf {
	leaves := make([]Leaf, len(values))
	for i, v := range values {
		leaves[i] = Leaf{Value: v, Kind: datapoint.Classify(v), Index: i}
	}
	return leaves
}

// dispatch runs the shared apply loop: flatten, resolve scope, draw one
// parameter set, rewrite in-scope leaves, rebuild. Out-of-scope leaves and
// pass-through calls return their inputs by identity.
func dispatch(t leafTransform, src *sampling.Source, sample any) (any, error) {
	values, spec := structure.Flatten(sample)
	leaves := classifyLeaves(values)

	if v, ok := t.(sampleValidator); ok {
		if err := v.validateSample(leaves); err != nil {
			return nil, err
		}
	}

	inScope := ResolveScope(leaves)
	scoped := make([]Leaf, 0, len(leaves))
	for i, leaf := range leaves {
		if inScope[i] {
			scoped = append(scoped, leaf)
		}
	}

	params, err := t.getParams(src, scoped)
	if err != nil {
		return nil, err
	}
	if params == nil {
		return sample, nil
	}

	out := make([]any, len(leaves))
	for i, leaf := range leaves {
		if !inScope[i] {
			out[i] = leaf.Value
			continue
		}
		next, err := t.transformLeaf(leaf, params)
		if err != nil {
			return nil, errors.Wrapf(err, "leaf %d (%s)", leaf.Index, leaf.Kind)
		}
		out[i] = next
	}
	return structure.Unflatten(spec, out)
}

// source resolves the random source a transform draws from, defaulting to
// the process-wide one.
func source(src *sampling.Source) *sampling.Source {
	if src != nil {
		return src
	}
	return sampling.Global
}

// queryCanvas returns the (height, width) of the first leaf that carries a
// spatial size. Plain tensors contribute their trailing two dimensions.
func queryCanvas(leaves []Leaf) (h, w int, err error) {
	for _, leaf := range leaves {
		switch v := leaf.Value.(type) {
		case *datapoint.Image:
			h, w = v.CanvasSize()
			return h, w, nil
		case *datapoint.Video:
			h, w = v.CanvasSize()
			return h, w, nil
		case *datapoint.Mask:
			h, w = v.CanvasSize()
			return h, w, nil
		case *datapoint.BoundingBoxes:
			return v.CanvasHeight, v.CanvasWidth, nil
		case *tensor.Dense:
			shape := v.Shape()
			if len(shape) < 2 {
				continue
			}
			return shape[len(shape)-2], shape[len(shape)-1], nil
		}
	}
	return 0, 0, errors.New("sample carries no value with a spatial size")
}
