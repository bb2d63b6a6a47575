package transforms

import (
	"github.com/pkg/errors"

	"github.com/nbaohan713/vision/datapoint"
	"github.com/nbaohan713/vision/structure"
)

// Lambda applies a user function to every leaf, optionally restricted to a
// set of kinds. It is the escape hatch of the framework and deliberately
// skips the scope heuristic: with no kind restriction even Other leaves,
// strings and numbers included, reach the function.
type Lambda struct {
	fn    func(any) (any, error)
	kinds map[datapoint.Kind]bool
}

// NewLambda wraps fn. With no kinds listed the function sees every leaf;
// otherwise only leaves of the listed kinds, the rest passing by identity.
func NewLambda(fn func(any) (any, error), kinds ...datapoint.Kind) (*Lambda, error) {
	if fn == nil {
		return nil, errors.New("lambda function cannot be nil")
	}
	t := &Lambda{fn: fn}
	if len(kinds) > 0 {
		t.kinds = make(map[datapoint.Kind]bool, len(kinds))
		for _, k := range kinds {
			t.kinds[k] = true
		}
	}
	return t, nil
}

// Apply runs the function over the flattened leaves and rebuilds the sample.
func (t *Lambda) Apply(sample any) (any, error) {
	values, spec := structure.Flatten(sample)
	leaves := classifyLeaves(values)

	out := make([]any, len(leaves))
	for i, leaf := range leaves {
		if t.kinds != nil && !t.kinds[leaf.Kind] {
			out[i] = leaf.Value
			continue
		}
		next, err := t.fn(leaf.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "leaf %d (%s)", leaf.Index, leaf.Kind)
		}
		out[i] = next
	}
	return structure.Unflatten(spec, out)
}
