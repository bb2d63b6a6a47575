package transforms

import (
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nbaohan713/vision/datapoint"
	"github.com/nbaohan713/vision/kernels"
	"github.com/nbaohan713/vision/sampling"
)

// resizeLeaf rewrites one leaf to the target spatial size: bilinear for
// pixels, nearest-neighbor for masks, coordinate scaling for boxes.
func resizeLeaf(leaf Leaf, height, width int) (any, error) {
	switch v := leaf.Value.(type) {
	case *datapoint.Image:
		d, err := kernels.Resize(v.Data, height, width)
		if err != nil {
			return nil, err
		}
		return &datapoint.Image{Data: d}, nil
	case *datapoint.Video:
		d, err := kernels.Resize(v.Data, height, width)
		if err != nil {
			return nil, err
		}
		return &datapoint.Video{Data: d}, nil
	case *datapoint.Mask:
		d, err := kernels.ResizeNearest(v.Data, height, width)
		if err != nil {
			return nil, err
		}
		return &datapoint.Mask{Data: d}, nil
	case *datapoint.BoundingBoxes:
		return kernels.ResizeBoxes(v, height, width)
	case *tensor.Dense:
		return kernels.Resize(v, height, width)
	default:
		return nil, errors.Errorf("cannot resize %T", leaf.Value)
	}
}

// Resize rescales the sample to a fixed (Height, Width).
type Resize struct {
	Height int
	Width  int
}

// NewResize builds the fixed-size rescale.
func NewResize(height, width int) (*Resize, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.Errorf("target dimensions must be positive, got (%d, %d)", height, width)
	}
	return &Resize{Height: height, Width: width}, nil
}

// Apply runs the rescale through the dispatch loop.
func (t *Resize) Apply(sample any) (any, error) {
	return dispatch(t, source(nil), sample)
}

func (t *Resize) getParams(_ *sampling.Source, _ []Leaf) (Params, error) {
	return Params{"height": t.Height, "width": t.Width}, nil
}

func (t *Resize) transformLeaf(leaf Leaf, params Params) (any, error) {
	return resizeLeaf(leaf, params["height"].(int), params["width"].(int))
}

// RandomResize draws one side length uniformly from [MinSize, MaxSize) per
// call and rescales every leaf so its short side matches it, preserving
// aspect ratio.
type RandomResize struct {
	MinSize int
	MaxSize int
	RNG     *sampling.Source
}

// NewRandomResize builds the randomized rescale.
func NewRandomResize(minSize, maxSize int) (*RandomResize, error) {
	if minSize <= 0 || maxSize <= minSize {
		return nil, errors.Errorf("size range must satisfy 0 < min < max, got [%d, %d)", minSize, maxSize)
	}
	return &RandomResize{MinSize: minSize, MaxSize: maxSize}, nil
}

// Apply runs the rescale through the dispatch loop.
func (t *RandomResize) Apply(sample any) (any, error) {
	return dispatch(t, source(t.RNG), sample)
}

func (t *RandomResize) getParams(src *sampling.Source, _ []Leaf) (Params, error) {
	return Params{"size": src.IntRange(t.MinSize, t.MaxSize)}, nil
}

func (t *RandomResize) transformLeaf(leaf Leaf, params Params) (any, error) {
	h, w, err := queryCanvas([]Leaf{leaf})
	if err != nil {
		return nil, err
	}
	nh, nw := shortSideTarget(h, w, params["size"].(int))
	return resizeLeaf(leaf, nh, nw)
}

// shortSideTarget scales (h, w) so the shorter side equals size.
func shortSideTarget(h, w, size int) (nh, nw int) {
	if h <= w {
		return size, int(math.Round(float64(w) * float64(size) / float64(h)))
	}
	return int(math.Round(float64(h) * float64(size) / float64(w))), size
}

// RandomShortestSize picks one of MinSizes per call and rescales the sample
// so its short side matches it, capped so the long side stays within
// MaxSize. MaxSize of zero disables the cap.
type RandomShortestSize struct {
	MinSizes []int
	MaxSize  int
	RNG      *sampling.Source
}

// NewRandomShortestSize builds the multiscale rescale.
func NewRandomShortestSize(minSizes []int, maxSize int) (*RandomShortestSize, error) {
	if len(minSizes) == 0 {
		return nil, errors.New("min sizes cannot be empty")
	}
	for i, s := range minSizes {
		if s <= 0 {
			return nil, errors.Errorf("min size %d must be positive, got %d", i, s)
		}
	}
	if maxSize < 0 {
		return nil, errors.Errorf("max size must be non-negative, got %d", maxSize)
	}
	return &RandomShortestSize{MinSizes: minSizes, MaxSize: maxSize}, nil
}

// Apply runs the rescale through the dispatch loop.
func (t *RandomShortestSize) Apply(sample any) (any, error) {
	return dispatch(t, source(t.RNG), sample)
}

func (t *RandomShortestSize) getParams(src *sampling.Source, scoped []Leaf) (Params, error) {
	h, w, err := queryCanvas(scoped)
	if err != nil {
		return nil, err
	}
	target := t.MinSizes[src.Intn(len(t.MinSizes))]
	scale := float64(target) / math.Min(float64(h), float64(w))
	if t.MaxSize > 0 {
		scale = math.Min(scale, float64(t.MaxSize)/math.Max(float64(h), float64(w)))
	}
	return Params{
		"height": int(float64(h) * scale),
		"width":  int(float64(w) * scale),
	}, nil
}

func (t *RandomShortestSize) transformLeaf(leaf Leaf, params Params) (any, error) {
	return resizeLeaf(leaf, params["height"].(int), params["width"].(int))
}
