package transforms

import (
	"github.com/pkg/errors"

	"github.com/nbaohan713/vision/sampling"
)

// callableSequence validates the transforms argument the container
// constructors share: a sequence of callables, as []Transform or []any whose
// elements all implement Transform. Anything else is a construction error.
func callableSequence(transforms any) ([]Transform, error) {
	switch ts := transforms.(type) {
	case []Transform:
		for i, t := range ts {
			if t == nil {
				return nil, errors.Errorf("argument transforms should be a sequence of callables, element %d is nil", i)
			}
		}
		return ts, nil
	case []any:
		out := make([]Transform, len(ts))
		for i, v := range ts {
			t, ok := v.(Transform)
			if !ok || t == nil {
				return nil, errors.Errorf("argument transforms should be a sequence of callables, element %d is %T", i, v)
			}
			out[i] = t
		}
		return out, nil
	default:
		return nil, errors.Errorf("argument transforms should be a sequence of callables, got %T", transforms)
	}
}

// Compose chains transforms: the output of each child feeds the next.
type Compose struct {
	transforms []Transform
}

// NewCompose builds a chain from a sequence of callables.
func NewCompose(transforms any) (*Compose, error) {
	ts, err := callableSequence(transforms)
	if err != nil {
		return nil, err
	}
	return &Compose{transforms: ts}, nil
}

// Apply runs every child in order.
func (c *Compose) Apply(sample any) (any, error) {
	out := sample
	for i, t := range c.transforms {
		next, err := t.Apply(out)
		if err != nil {
			return nil, errors.Wrapf(err, "compose step %d", i)
		}
		out = next
	}
	return out, nil
}

// RandomApply runs its wrapped sub-sequence with probability P and otherwise
// passes the sample through untouched. The coin is flipped fresh per call.
type RandomApply struct {
	transforms []Transform
	P          float64
	RNG        *sampling.Source
}

// NewRandomApply wraps a single transform or a sequence of callables.
func NewRandomApply(transforms any, p float64) (*RandomApply, error) {
	if p < 0 || p > 1 {
		return nil, errors.Errorf("probability must be within [0, 1], got %v", p)
	}
	if t, ok := transforms.(Transform); ok && t != nil {
		return &RandomApply{transforms: []Transform{t}, P: p}, nil
	}
	ts, err := callableSequence(transforms)
	if err != nil {
		return nil, err
	}
	return &RandomApply{transforms: ts, P: p}, nil
}

// Apply flips the coin and either runs the whole sub-sequence or returns the
// sample by identity.
func (r *RandomApply) Apply(sample any) (any, error) {
	if !source(r.RNG).Bernoulli(r.P) {
		return sample, nil
	}
	out := sample
	for i, t := range r.transforms {
		next, err := t.Apply(out)
		if err != nil {
			return nil, errors.Wrapf(err, "random apply step %d", i)
		}
		out = next
	}
	return out, nil
}

// RandomChoice runs exactly one child per call, selected by weighted
// sampling. Weights default to uniform.
type RandomChoice struct {
	transforms []Transform
	weights    []float64
	RNG        *sampling.Source
}

// NewRandomChoice builds a weighted selector. p may be nil for a uniform
// choice; otherwise its length must match the number of transforms and its
// entries must be non-negative with a positive sum.
func NewRandomChoice(transforms any, p []float64) (*RandomChoice, error) {
	ts, err := callableSequence(transforms)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = make([]float64, len(ts))
		for i := range p {
			p[i] = 1
		}
	}
	if len(p) != len(ts) {
		return nil, errors.Errorf("length of p doesn't match the number of transforms: %d vs %d", len(p), len(ts))
	}
	var total float64
	for i, w := range p {
		if w < 0 {
			return nil, errors.Errorf("probability %d must be non-negative, got %v", i, w)
		}
		total += w
	}
	if total <= 0 {
		return nil, errors.New("probabilities must have a positive sum")
	}
	return &RandomChoice{transforms: ts, weights: p}, nil
}

// Apply selects one child and runs it.
func (r *RandomChoice) Apply(sample any) (any, error) {
	idx, err := source(r.RNG).Choice(r.weights)
	if err != nil {
		return nil, err
	}
	return r.transforms[idx].Apply(sample)
}

// RandomOrder runs all children once each in a uniformly random permutation
// per call.
type RandomOrder struct {
	transforms []Transform
	RNG        *sampling.Source
}

// NewRandomOrder builds the permuting container from a sequence of
// callables.
func NewRandomOrder(transforms any) (*RandomOrder, error) {
	ts, err := callableSequence(transforms)
	if err != nil {
		return nil, err
	}
	return &RandomOrder{transforms: ts}, nil
}

// Apply draws a permutation and runs every child in that order.
func (r *RandomOrder) Apply(sample any) (any, error) {
	out := sample
	for _, idx := range source(r.RNG).Perm(len(r.transforms)) {
		next, err := r.transforms[idx].Apply(out)
		if err != nil {
			return nil, errors.Wrapf(err, "random order step %d", idx)
		}
		out = next
	}
	return out, nil
}
