package transforms

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nbaohan713/vision/datapoint"
	"github.com/nbaohan713/vision/kernels"
	"github.com/nbaohan713/vision/sampling"
)

// Pad grows the canvas by fixed margins. Fill values are chosen per kind so
// padded mask pixels can stay at the background label while image pixels get
// a gray, mirroring how detection pipelines pad heterogeneous targets.
type Pad struct {
	Left, Top, Right, Bottom int
	// Fill maps a kind to its padding value; kinds without an entry fill
	// with zero.
	Fill map[datapoint.Kind]float64
}

// NewPad builds the padding transform with non-negative margins.
func NewPad(left, top, right, bottom int, fill map[datapoint.Kind]float64) (*Pad, error) {
	if left < 0 || top < 0 || right < 0 || bottom < 0 {
		return nil, errors.Errorf("padding must be non-negative, got (%d, %d, %d, %d)", left, top, right, bottom)
	}
	return &Pad{Left: left, Top: top, Right: right, Bottom: bottom, Fill: fill}, nil
}

// Apply runs the padding through the dispatch loop.
func (t *Pad) Apply(sample any) (any, error) {
	return dispatch(t, source(nil), sample)
}

func (t *Pad) getParams(_ *sampling.Source, _ []Leaf) (Params, error) {
	return Params{"left": t.Left, "top": t.Top, "right": t.Right, "bottom": t.Bottom}, nil
}

func (t *Pad) fillFor(kind datapoint.Kind) float64 {
	if t.Fill == nil {
		return 0
	}
	return t.Fill[kind]
}

func (t *Pad) transformLeaf(leaf Leaf, _ Params) (any, error) {
	switch v := leaf.Value.(type) {
	case *datapoint.Image:
		d, err := kernels.Pad(v.Data, t.Left, t.Top, t.Right, t.Bottom, t.fillFor(datapoint.KindImage))
		if err != nil {
			return nil, err
		}
		return &datapoint.Image{Data: d}, nil
	case *datapoint.Video:
		d, err := kernels.Pad(v.Data, t.Left, t.Top, t.Right, t.Bottom, t.fillFor(datapoint.KindVideo))
		if err != nil {
			return nil, err
		}
		return &datapoint.Video{Data: d}, nil
	case *datapoint.Mask:
		d, err := kernels.Pad(v.Data, t.Left, t.Top, t.Right, t.Bottom, t.fillFor(datapoint.KindMask))
		if err != nil {
			return nil, err
		}
		return &datapoint.Mask{Data: d}, nil
	case *datapoint.BoundingBoxes:
		return kernels.PadBoxes(v, t.Left, t.Top, t.Right, t.Bottom), nil
	case *tensor.Dense:
		return kernels.Pad(v, t.Left, t.Top, t.Right, t.Bottom, t.fillFor(datapoint.KindPlain))
	default:
		return nil, errors.Errorf("cannot pad %T", leaf.Value)
	}
}
