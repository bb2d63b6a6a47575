package transforms

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nbaohan713/vision/datapoint"
	"github.com/nbaohan713/vision/kernels"
	"github.com/nbaohan713/vision/sampling"
)

// RandomHorizontalFlip mirrors the sample left to right with probability P.
type RandomHorizontalFlip struct {
	P   float64
	RNG *sampling.Source
}

// NewRandomHorizontalFlip builds the flip with the given probability.
func NewRandomHorizontalFlip(p float64) (*RandomHorizontalFlip, error) {
	if p < 0 || p > 1 {
		return nil, errors.Errorf("probability must be within [0, 1], got %v", p)
	}
	return &RandomHorizontalFlip{P: p}, nil
}

// Apply runs the flip through the dispatch loop.
func (t *RandomHorizontalFlip) Apply(sample any) (any, error) {
	return dispatch(t, source(t.RNG), sample)
}

func (t *RandomHorizontalFlip) getParams(src *sampling.Source, _ []Leaf) (Params, error) {
	if !src.Bernoulli(t.P) {
		return nil, nil
	}
	return Params{"flip": true}, nil
}

func (t *RandomHorizontalFlip) transformLeaf(leaf Leaf, _ Params) (any, error) {
	switch v := leaf.Value.(type) {
	case *datapoint.Image:
		d, err := kernels.HorizontalFlip(v.Data)
		if err != nil {
			return nil, err
		}
		return &datapoint.Image{Data: d}, nil
	case *datapoint.Video:
		d, err := kernels.HorizontalFlip(v.Data)
		if err != nil {
			return nil, err
		}
		return &datapoint.Video{Data: d}, nil
	case *datapoint.Mask:
		d, err := kernels.HorizontalFlip(v.Data)
		if err != nil {
			return nil, err
		}
		return &datapoint.Mask{Data: d}, nil
	case *datapoint.BoundingBoxes:
		return kernels.FlipBoxesHorizontal(v), nil
	case *tensor.Dense:
		return kernels.HorizontalFlip(v)
	default:
		return nil, errors.Errorf("cannot flip %T", leaf.Value)
	}
}

// RandomVerticalFlip mirrors the sample top to bottom with probability P.
type RandomVerticalFlip struct {
	P   float64
	RNG *sampling.Source
}

// NewRandomVerticalFlip builds the flip with the given probability.
func NewRandomVerticalFlip(p float64) (*RandomVerticalFlip, error) {
	if p < 0 || p > 1 {
		return nil, errors.Errorf("probability must be within [0, 1], got %v", p)
	}
	return &RandomVerticalFlip{P: p}, nil
}

// Apply runs the flip through the dispatch loop.
func (t *RandomVerticalFlip) Apply(sample any) (any, error) {
	return dispatch(t, source(t.RNG), sample)
}

func (t *RandomVerticalFlip) getParams(src *sampling.Source, _ []Leaf) (Params, error) {
	if !src.Bernoulli(t.P) {
		return nil, nil
	}
	return Params{"flip": true}, nil
}

func (t *RandomVerticalFlip) transformLeaf(leaf Leaf, _ Params) (any, error) {
	switch v := leaf.Value.(type) {
	case *datapoint.Image:
		d, err := kernels.VerticalFlip(v.Data)
		if err != nil {
			return nil, err
		}
		return &datapoint.Image{Data: d}, nil
	case *datapoint.Video:
		d, err := kernels.VerticalFlip(v.Data)
		if err != nil {
			return nil, err
		}
		return &datapoint.Video{Data: d}, nil
	case *datapoint.Mask:
		d, err := kernels.VerticalFlip(v.Data)
		if err != nil {
			return nil, err
		}
		return &datapoint.Mask{Data: d}, nil
	case *datapoint.BoundingBoxes:
		return kernels.FlipBoxesVertical(v), nil
	case *tensor.Dense:
		return kernels.VerticalFlip(v)
	default:
		return nil, errors.Errorf("cannot flip %T", leaf.Value)
	}
}
